package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/tickseq/internal/bridge"
	"github.com/roach88/tickseq/internal/engine"
	"github.com/roach88/tickseq/internal/ir"
	"github.com/roach88/tickseq/internal/script"
	"github.com/roach88/tickseq/internal/sequencer"
	"github.com/roach88/tickseq/internal/store"
	"github.com/roach88/tickseq/internal/testutil"
	"github.com/roach88/tickseq/internal/world"
)

// System names the runner registers around the sequencer driver.
const (
	SystemPush     = "scenario.push"
	SystemSnapshot = "scenario.snapshot"
)

// Option configures a Runner.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	store      *store.Store
	tokens     engine.RunTokenGenerator
	realtime   time.Duration
	engineOpts []engine.EngineOption
	driverOpts []sequencer.DriverOption
}

// WithLogger sets the logger of the engine and driver.
// Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStore journals the run and its steps to s.
func WithStore(s *store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithRunTokens overrides the scenario's fixed run token.
func WithRunTokens(g engine.RunTokenGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.tokens = g
		}
	}
}

// WithRealtime runs the engine's ticker loop at interval on a wall clock
// instead of stepping a fixed-step clock back to back. Results are no
// longer deterministic.
func WithRealtime(interval time.Duration) Option {
	return func(o *options) { o.realtime = interval }
}

// WithEngineOptions passes extra options to the engine.
func WithEngineOptions(opts ...engine.EngineOption) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

// WithDriverOptions passes extra options to the sequencer driver.
func WithDriverOptions(opts ...sequencer.DriverOption) Option {
	return func(o *options) { o.driverOpts = append(o.driverOpts, opts...) }
}

type owner struct {
	name    string
	entity  world.Entity
	atTick  uint64
	actions []bridge.AnyAction
	pushed  bool
}

// Runner executes one scenario.
//
// A Runner is single use: build it with NewRunner and call Run once.
type Runner struct {
	scenario *Scenario
	opts     options

	engine   *engine.Engine
	world    *world.World
	vars     *script.Vars
	events   *script.Events
	owners   []*owner
	recorder *sequencer.Recorder
	journal  *store.Journal
	runID    string

	result *Result
}

// NewRunner compiles every owner's actions and wires a fresh world,
// engine and sequencer driver for s.
func NewRunner(s *Scenario, opts ...Option) (*Runner, error) {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tokens == nil {
		o.tokens = testutil.NewFixedRunGenerator(s.RunToken)
	}

	r := &Runner{
		scenario: s,
		opts:     o,
		world:    world.New(),
		recorder: &sequencer.Recorder{},
		runID:    o.tokens.Generate(),
		result:   NewResult(),
	}
	r.result.RunID = r.runID

	for i, decl := range s.Owners {
		actions, err := script.CompileAll(decl.Actions)
		if err != nil {
			return nil, fmt.Errorf("owners[%d] %q: %w", i, decl.Name, err)
		}
		r.owners = append(r.owners, &owner{
			name:    decl.Name,
			atTick:  decl.AtTick,
			actions: actions,
		})
	}

	var source engine.TimeSource = engine.FixedStep(s.StepDuration())
	interval := s.StepDuration()
	if o.realtime > 0 {
		source = engine.NewWallClock()
		interval = o.realtime
	}
	engineOpts := []engine.EngineOption{
		engine.WithTimeSource(source),
		engine.WithTickInterval(interval),
		engine.WithLogger(o.logger),
		engine.WithTickObserver(r),
	}
	r.engine = engine.New(r.world, append(engineOpts, o.engineOpts...)...)

	r.vars, r.events = script.Install(r.world)
	for name, v := range s.Vars {
		r.vars.Set(name, v)
	}
	for _, ow := range r.owners {
		ow.entity = r.world.Spawn()
		sequencer.Attach(r.world, ow.entity)
		r.result.Owners[ow.name] = uint64(ow.entity)
	}

	driverOpts := []sequencer.DriverOption{
		sequencer.WithRunID(r.runID),
		sequencer.WithLogger(o.logger),
		sequencer.WithObserver(r.recorder),
	}
	if o.store != nil {
		r.journal = store.NewJournal(o.store, o.logger)
		driverOpts = append(driverOpts, sequencer.WithObserver(r.journal))
	}

	r.engine.AddSystem(SystemPush, r.pushDue)
	r.engine.AddPlugins(sequencer.Plugin{Options: append(driverOpts, o.driverOpts...)})
	r.engine.AddSystem(SystemSnapshot, r.snapshot)
	return r, nil
}

// Engine returns the engine driving the scenario.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// RunID returns the run token stamped on every step.
func (r *Runner) RunID() string {
	return r.runID
}

// pushDue pushes the actions of every owner whose start tick has come.
func (r *Runner) pushDue(_ context.Context, w *world.World) error {
	tick := r.engine.Tick()
	for _, ow := range r.owners {
		if ow.pushed || max(ow.atTick, 1) > tick {
			continue
		}
		seq, ok := world.Get[sequencer.Sequencer](w, ow.entity)
		if !ok {
			return fmt.Errorf("owner %q has no sequencer", ow.name)
		}
		for _, a := range ow.actions {
			seq.Push(a)
		}
		ow.pushed = true
	}
	return nil
}

// snapshot records the vars after the tick and stops a realtime run once
// the scenario is finished.
func (r *Runner) snapshot(_ context.Context, _ *world.World) error {
	r.result.Trace = append(r.result.Trace, TickSnapshot{
		Tick: r.engine.Tick(),
		Vars: r.vars.Snapshot(),
	})
	if r.opts.realtime > 0 && (r.finished() || r.engine.Tick() >= r.scenario.TickLimit()) {
		r.engine.Stop()
	}
	return nil
}

// ObserveTick implements engine.TickObserver.
func (r *Runner) ObserveTick(tick uint64, _ time.Duration, err error) {
	if err != nil {
		r.result.AddError(fmt.Sprintf("tick %d: %v", tick, err))
	}
}

// finished reports whether the scenario has nothing left to run.
func (r *Runner) finished() bool {
	if r.scenario.Ticks > 0 {
		return r.engine.Tick() >= r.scenario.Ticks
	}
	for _, ow := range r.owners {
		if !ow.pushed {
			return false
		}
		seq, ok := world.Get[sequencer.Sequencer](r.world, ow.entity)
		if ok && !seq.Idle() {
			return false
		}
	}
	return true
}

// Run executes the scenario, evaluates its assertions and, with a store,
// journals the run.
//
// Tick failures and assertion failures are reported in the result. The
// error is for failures of the harness itself.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if st := r.opts.store; st != nil {
		run := ir.Run{ID: r.runID, Scenario: r.scenario.Name, Status: ir.RunRunning}
		if err := st.BeginRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to begin run: %w", err)
		}
	}

	if err := r.drive(ctx); err != nil {
		return nil, err
	}
	if r.scenario.Ticks == 0 && !r.finished() {
		r.result.AddError(fmt.Sprintf("scenario not finished after %d ticks", r.engine.Tick()))
	}

	r.collect()
	for _, msg := range EvaluateAssertions(r.result, r.scenario.Assertions) {
		r.result.AddError(msg)
	}

	if r.journal != nil {
		if err := r.journal.Err(); err != nil {
			return nil, fmt.Errorf("failed to journal steps: %w", err)
		}
		status := ir.RunCompleted
		if !r.result.Pass {
			status = ir.RunFailed
		}
		if err := r.opts.store.FinishRun(ctx, r.runID, r.result.Ticks, status); err != nil {
			return nil, fmt.Errorf("failed to finish run: %w", err)
		}
	}
	return r.result, nil
}

func (r *Runner) drive(ctx context.Context) error {
	if r.opts.realtime > 0 {
		if err := r.engine.Run(ctx); err != nil {
			return fmt.Errorf("realtime run: %w", err)
		}
		return nil
	}

	limit := r.scenario.TickLimit()
	for !r.finished() && r.engine.Tick() < limit {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Failures reach the result through ObserveTick.
		_ = r.engine.Step(ctx)
	}
	return nil
}

func (r *Runner) collect() {
	r.result.Ticks = r.engine.Tick()
	r.result.Steps = append(r.result.Steps, r.recorder.Steps...)
	r.result.Events = append(r.result.Events, r.events.All()...)
	for _, ow := range r.owners {
		seq, ok := world.Get[sequencer.Sequencer](r.world, ow.entity)
		r.result.Idle[ow.name] = !ok || seq.Idle()
	}
}

// Run executes a scenario deterministically and returns the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context and options.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	r, err := NewRunner(scenario, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}
