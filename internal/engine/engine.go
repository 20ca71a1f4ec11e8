package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tickseq/internal/world"
)

// DefaultTickInterval is the real-time tick period used by Run.
const DefaultTickInterval = 16 * time.Millisecond

// System is work the engine runs once per tick with exclusive access to
// the World.
type System func(ctx context.Context, w *world.World) error

// Plugin registers systems with an engine.
type Plugin interface {
	Build(e *Engine)
}

// TickObserver is notified after every tick with its wall duration and the
// combined error of its systems.
type TickObserver interface {
	ObserveTick(tick uint64, took time.Duration, err error)
}

type namedSystem struct {
	name string
	run  System
}

// Engine is the single-writer tick loop.
//
// Thread-safety model:
//   - AddSystem, AddPlugins: before the first tick only
//   - Step, RunTicks, Run: from exactly one goroutine
//   - Stop: safe from any goroutine
type Engine struct {
	world    *world.World
	time     *world.Time
	source   TimeSource
	systems  []namedSystem
	tick     uint64
	interval time.Duration
	logger   *slog.Logger

	starvationThreshold time.Duration
	onStarved           func(time.Duration)
	observers           []TickObserver

	stopOnce sync.Once
	stop     chan struct{}
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithTimeSource sets how tick numbers map to elapsed time.
// Default: FixedStep(DefaultTickInterval).
func WithTimeSource(ts TimeSource) EngineOption {
	return func(e *Engine) {
		if ts != nil {
			e.source = ts
		}
	}
}

// WithTickInterval sets the real-time period of Run.
func WithTickInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStarvationThreshold enables the starvation watchdog during Run.
// onStarved, if non-nil, receives the time since the last completed tick.
func WithStarvationThreshold(d time.Duration, onStarved func(time.Duration)) EngineOption {
	return func(e *Engine) {
		e.starvationThreshold = d
		e.onStarved = onStarved
	}
}

// WithTickObserver registers an observer for every tick.
func WithTickObserver(o TickObserver) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// New creates an engine over w and installs the world.Time resource.
func New(w *world.World, opts ...EngineOption) *Engine {
	e := &Engine{
		world:    w,
		time:     &world.Time{},
		interval: DefaultTickInterval,
		logger:   slog.Default(),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		e.source = FixedStep(e.interval)
	}
	world.SetResource(w, e.time)
	return e
}

// World returns the world the engine drives.
func (e *Engine) World() *world.World {
	return e.world
}

// Tick returns the number of the last completed tick.
func (e *Engine) Tick() uint64 {
	return e.tick
}

// AddSystem appends a system. Systems run in registration order.
func (e *Engine) AddSystem(name string, s System) {
	e.systems = append(e.systems, namedSystem{name: name, run: s})
}

// AddPlugins lets each plugin register its systems.
func (e *Engine) AddPlugins(plugins ...Plugin) {
	for _, p := range plugins {
		p.Build(e)
	}
}

// Systems returns the registered system names in run order.
func (e *Engine) Systems() []string {
	names := make([]string, len(e.systems))
	for i, s := range e.systems {
		names[i] = s.name
	}
	return names
}

// Step runs one tick: it advances time and runs every system once.
//
// A failing system does not prevent later systems from running. The
// returned error joins one RuntimeError per failing system.
func (e *Engine) Step(ctx context.Context) error {
	start := time.Now()

	e.tick++
	e.time.Advance(e.tick, e.source.Elapsed(e.tick))
	// Reinstall in case a system removed or replaced the resource.
	world.SetResource(e.world, e.time)

	var errs []error
	for _, s := range e.systems {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.runSystem(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)

	took := time.Since(start)
	for _, o := range e.observers {
		o.ObserveTick(e.tick, took, err)
	}
	return err
}

func (e *Engine) runSystem(ctx context.Context, s namedSystem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPanicError(s.name, e.tick, r)
		}
	}()
	if serr := s.run(ctx, e.world); serr != nil {
		return NewSystemError(s.name, e.tick, serr)
	}
	return nil
}

// RunTicks runs n ticks back to back, without waiting between them.
// Errors are logged and do not stop the run; the last one is returned.
func (e *Engine) RunTicks(ctx context.Context, n int) error {
	var last error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(ctx); err != nil {
			e.logTickError(err)
			last = err
		}
	}
	return last
}

// RunUntil runs ticks until done reports true or max ticks have run.
// It returns the number of ticks run.
func (e *Engine) RunUntil(ctx context.Context, max int, done func(*world.World) bool) (int, error) {
	for i := 0; i < max; i++ {
		if done(e.world) {
			return i, nil
		}
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := e.Step(ctx); err != nil {
			e.logTickError(err)
		}
	}
	if done(e.world) {
		return max, nil
	}
	return max, fmt.Errorf("not done after %d ticks", max)
}

// Run ticks at the configured interval until ctx is cancelled or Stop is
// called.
//
// ERROR HANDLING: On tick failure, the error is logged and the loop
// continues ("log and continue").
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "interval", e.interval, "systems", e.Systems())

	if e.starvationThreshold > 0 {
		poll := max(e.starvationThreshold/2, time.Millisecond)
		checker := NewStarvationChecker(e.starvationThreshold, poll, e.onStarved, e.logger)
		defer checker.Stop()
		e.observers = append(e.observers, touchObserver{checker})
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled", "tick", e.tick)
			return ctx.Err()

		case <-e.stop:
			e.logger.Info("engine stopping", "tick", e.tick)
			return nil

		case <-ticker.C:
			// A system may have called Stop during the previous tick.
			if e.stopped() {
				e.logger.Info("engine stopping", "tick", e.tick)
				return nil
			}
			start := time.Now()
			if err := e.Step(ctx); err != nil {
				e.logTickError(err)
			}

			cycle := time.Since(start)
			if cycle > e.interval {
				e.logger.Warn("tick took longer than tick interval", "tick", e.tick, "took", cycle)
				if cycle > 2*e.interval {
					e.logger.Error("tick took longer than twice the tick interval", "tick", e.tick, "took", cycle)
				}
			}
		}
	}
}

// Stop makes Run return after the current tick.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

func (e *Engine) stopped() bool {
	select {
	case <-e.stop:
		return true
	default:
		return false
	}
}

func (e *Engine) logTickError(err error) {
	var re *RuntimeError
	if errors.As(err, &re) {
		e.logger.Error("tick failed",
			"tick", e.tick,
			"code", re.Code,
			"system", re.System,
			"error", err)
		return
	}
	e.logger.Error("tick failed", "tick", e.tick, "error", err)
}

type touchObserver struct {
	checker *StarvationChecker
}

func (t touchObserver) ObserveTick(uint64, time.Duration, error) {
	t.checker.Touch()
}
