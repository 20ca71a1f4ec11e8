package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/tickseq/internal/engine"
	"github.com/roach88/tickseq/internal/harness"
	"github.com/roach88/tickseq/internal/metrics"
	"github.com/roach88/tickseq/internal/sequencer"
	"github.com/roach88/tickseq/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database            string
	Ticks               uint64
	Realtime            bool
	TickInterval        time.Duration
	MetricsAddr         string
	RetryLimit          int
	StarvationThreshold time.Duration

	// RunTokens overrides the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunTokens engine.RunTokenGenerator
}

// RunSummary is the result of the run command.
type RunSummary struct {
	RunID    string             `json:"run_id"`
	Scenario string             `json:"scenario"`
	Pass     bool               `json:"pass"`
	Ticks    uint64             `json:"ticks"`
	Steps    int                `json:"steps"`
	Vars     map[string]float64 `json:"vars"`
	Events   []string           `json:"events"`
	Errors   []string           `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario through the engine",
		Long: `Run one scenario file (YAML or CUE) through the engine.

By default the engine steps a fixed-step clock back to back, so the run
is deterministic. --realtime drives the ticker loop on a wall clock
instead; stop it with Ctrl-C.

Flags default from the environment (TICKSEQ_DB, TICKSEQ_TICK_INTERVAL,
TICKSEQ_METRICS_ADDR, TICKSEQ_RETRY_LIMIT, TICKSEQ_STARVATION_THRESHOLD).

Examples:
  tickseq run ./scenarios/ramp.yaml
  tickseq run --db ./tickseq.db --ticks 100 ./scenarios/ramp.yaml
  tickseq run --realtime --tick-interval 16ms --metrics-addr :9090 ./scenarios/fan_out.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunDefaults(opts, cmd)
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (optional)")
	cmd.Flags().Uint64Var(&opts.Ticks, "ticks", 0, "override the scenario tick count (0 keeps the scenario's)")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "drive ticks from a wall-clock ticker")
	cmd.Flags().DurationVar(&opts.TickInterval, "tick-interval", 16*time.Millisecond, "real-time tick period")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().IntVar(&opts.RetryLimit, "retry-limit", 0, "cap Pending retries per step (0 = unlimited)")
	cmd.Flags().DurationVar(&opts.StarvationThreshold, "starvation-threshold", 0, "warn when no tick completes for this long (realtime only)")

	return cmd
}

// applyRunDefaults fills every flag the user did not set from the
// environment configuration.
func applyRunDefaults(opts *RunOptions, cmd *cobra.Command) {
	cfg := opts.Config
	flags := cmd.Flags()
	if !flags.Changed("db") {
		opts.Database = cfg.DB
	}
	if !flags.Changed("tick-interval") && cfg.TickInterval > 0 {
		opts.TickInterval = cfg.TickInterval
	}
	if !flags.Changed("metrics-addr") {
		opts.MetricsAddr = cfg.MetricsAddr
	}
	if !flags.Changed("retry-limit") {
		opts.RetryLimit = cfg.RetryLimit
	}
	if !flags.Changed("starvation-threshold") {
		opts.StarvationThreshold = cfg.StarvationThreshold
	}
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if opts.Ticks > 0 {
		scenario.Ticks = opts.Ticks
	}
	if opts.RetryLimit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("retry limit must not be negative, got %d", opts.RetryLimit))
	}

	collector := metrics.New()
	tokens := opts.RunTokens
	if tokens == nil {
		tokens = engine.UUIDv7Generator{}
	}
	hopts := []harness.Option{
		harness.WithLogger(slog.Default()),
		harness.WithRunTokens(tokens),
		harness.WithDriverOptions(
			sequencer.WithRetryLimit(opts.RetryLimit),
			sequencer.WithObserver(collector),
		),
		harness.WithEngineOptions(engine.WithTickObserver(collector)),
	}
	if opts.Realtime {
		hopts = append(hopts, harness.WithRealtime(opts.TickInterval))
		if opts.StarvationThreshold > 0 {
			hopts = append(hopts, harness.WithEngineOptions(
				engine.WithStarvationThreshold(opts.StarvationThreshold, collector.AddStarvation),
			))
		}
	}

	if opts.Database != "" {
		slog.Debug("opening journal", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		hopts = append(hopts, harness.WithStore(st))
	}

	runner, err := harness.NewRunner(scenario, hopts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile scenario", err)
	}
	formatter.VerboseLog("run %s: scenario %q, %d owner(s)", runner.RunID(), scenario.Name, len(scenario.Owners))

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runWithMetrics(ctx, runner, collector, opts.MetricsAddr)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("run interrupted", "run_id", runner.RunID(), "tick", runner.Engine().Tick())
			return nil
		}
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	summary := summarize(scenario.Name, result)
	if err := outputRunSummary(formatter, summary); err != nil {
		return err
	}
	if !summary.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed", scenario.Name))
	}
	return nil
}

// runWithMetrics runs the scenario and, when addr is set, serves metrics
// until the run ends. A failing metrics server cancels the run.
func runWithMetrics(ctx context.Context, runner *harness.Runner, collector *metrics.Collector, addr string) (*harness.Result, error) {
	g, gctx := errgroup.WithContext(ctx)

	var srv *http.Server
	if addr != "" {
		srv = collector.NewServer(addr)
		g.Go(func() error {
			return metrics.Serve(srv, slog.Default())
		})
	}

	var result *harness.Result
	g.Go(func() error {
		if srv != nil {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					slog.Error("metrics server shutdown failed", "error", err)
				}
			}()
		}
		r, err := runner.Run(gctx)
		result = r
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func summarize(name string, result *harness.Result) RunSummary {
	events := make([]string, len(result.Events))
	for i, ev := range result.Events {
		events[i] = ev.Name
	}
	return RunSummary{
		RunID:    result.RunID,
		Scenario: name,
		Pass:     result.Pass,
		Ticks:    result.Ticks,
		Steps:    len(result.Steps),
		Vars:     result.FinalVars(),
		Events:   events,
		Errors:   result.Errors,
	}
}

func outputRunSummary(f *OutputFormatter, s RunSummary) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: s, RunID: s.RunID})
	}

	w := f.Writer
	status := "passed"
	if !s.Pass {
		status = "failed"
	}
	fmt.Fprintf(w, "Run %s\n", s.RunID)
	fmt.Fprintf(w, "Scenario %q %s after %d tick(s), %d step(s)\n", s.Scenario, status, s.Ticks, s.Steps)

	names := make([]string, 0, len(s.Vars))
	for name := range s.Vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %s\n", name, formatFloat(s.Vars[name]))
	}
	if len(s.Events) > 0 {
		fmt.Fprintf(w, "  events: %v\n", s.Events)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	return nil
}
