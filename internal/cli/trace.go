package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tickseq/internal/ir"
	"github.com/roach88/tickseq/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Owner    uint64 // optional: filter to one owner entity
	Outcome  string
	Action   string
	FromTick uint64
	ToTick   uint64
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      ir.Run     `json:"run"`
	Timeline []ir.Step  `json:"timeline"`
	Stats    TraceStats `json:"stats"`
	Digest   string     `json:"digest"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Steps     int `json:"steps"`
	Yielded   int `json:"yielded"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Exhausted int `json:"exhausted_retries"`
	Retries   int `json:"retries"`
	Owners    int `json:"owners"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled steps of a run",
		Long: `Show the timeline of a journaled run.

Each line is one invocation of an owner's front action: the tick it ran
on, its outcome and how many Pending retries it took. Without --run the
journaled runs are listed.

Examples:
  tickseq trace --db ./tickseq.db
  tickseq trace --db ./tickseq.db --run 01890a5d-ac96-774b-bcce-b302099a8057
  tickseq trace --db ./tickseq.db --run <token> --owner 2 --format json
  tickseq trace --db ./tickseq.db --run <token> --outcome failed --from-tick 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("db") && opts.Config.DB != "" {
				opts.Database = opts.Config.DB
			}
			if opts.Database == "" {
				return NewExitError(ExitCommandError, "required flag \"db\" not set")
			}
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required unless TICKSEQ_DB is set)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run token to trace")
	cmd.Flags().Uint64Var(&opts.Owner, "owner", 0, "filter to one owner entity")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "filter by outcome (yielded|completed|failed|exhausted_retries)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter by action name")
	cmd.Flags().Uint64Var(&opts.FromTick, "from-tick", 0, "first tick to show")
	cmd.Flags().Uint64Var(&opts.ToTick, "to-tick", 0, "last tick to show")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	outcome := ir.Outcome(opts.Outcome)
	if outcome != "" && !outcome.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown outcome %q", opts.Outcome))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		return outputRuns(formatter, runs)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		if store.IsNotFound(err) {
			if formatter.JSON() {
				_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			}
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	timeline, err := st.QuerySteps(ctx, store.StepQuery{
		RunID:    opts.RunID,
		Owner:    opts.Owner,
		Outcome:  outcome,
		Action:   opts.Action,
		FromTick: opts.FromTick,
		ToTick:   opts.ToTick,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}
	digest, err := ir.StepsDigest(timeline)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest steps", err)
	}

	result := TraceResult{
		Run:      run,
		Timeline: timeline,
		Stats:    traceStats(timeline),
		Digest:   digest,
	}
	if formatter.JSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}
	return outputTraceText(formatter.Writer, result, opts.Verbose)
}

func traceStats(steps []ir.Step) TraceStats {
	stats := TraceStats{Steps: len(steps)}
	owners := make(map[uint64]struct{})
	for _, s := range steps {
		owners[s.Owner] = struct{}{}
		stats.Retries += s.Retries
		switch s.Outcome {
		case ir.OutcomeYielded:
			stats.Yielded++
		case ir.OutcomeCompleted:
			stats.Completed++
		case ir.OutcomeFailed:
			stats.Failed++
		case ir.OutcomeExhausted:
			stats.Exhausted++
		}
	}
	stats.Owners = len(owners)
	return stats
}

func outputRuns(f *OutputFormatter, runs []ir.Run) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: runs})
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs journaled.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(f.Writer, "%s  %-9s  %6d ticks  %s\n", r.ID, r.Status, r.Ticks, r.Scenario)
	}
	return nil
}

func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Run: %s\n", result.Run.ID)
	fmt.Fprintf(w, "Scenario: %s\n", result.Run.Scenario)
	fmt.Fprintf(w, "Status: %s after %d tick(s)\n", result.Run.Status, result.Run.Ticks)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no steps)")
	}
	for _, s := range result.Timeline {
		formatStep(w, s, verbose)
	}
	fmt.Fprintln(w)

	st := result.Stats
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Steps:     %d\n", st.Steps)
	fmt.Fprintf(w, "  Yielded:   %d\n", st.Yielded)
	fmt.Fprintf(w, "  Completed: %d\n", st.Completed)
	fmt.Fprintf(w, "  Failed:    %d\n", st.Failed)
	fmt.Fprintf(w, "  Exhausted: %d\n", st.Exhausted)
	fmt.Fprintf(w, "  Retries:   %d\n", st.Retries)
	fmt.Fprintf(w, "  Owners:    %d\n", st.Owners)
	if verbose {
		fmt.Fprintf(w, "  Digest:    %s\n", result.Digest)
	}
	return nil
}

// formatStep writes one timeline line. Verbose adds the handle and the
// retry count.
func formatStep(w io.Writer, s ir.Step, verbose bool) {
	fmt.Fprintf(w, "  [%d] tick %d owner %d %s %s\n", s.Seq, s.Tick, s.Owner, outcomeMark(s.Outcome), s.Action)
	if verbose {
		fmt.Fprintf(w, "       handle %d, %d retries\n", s.Handle, s.Retries)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "       error: %s\n", s.Error)
	}
}

func outcomeMark(o ir.Outcome) string {
	switch o {
	case ir.OutcomeYielded:
		return "YIELD"
	case ir.OutcomeCompleted:
		return "DONE "
	case ir.OutcomeFailed:
		return "FAIL "
	case ir.OutcomeExhausted:
		return "STALL"
	default:
		return string(o)
	}
}
