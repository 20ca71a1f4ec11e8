package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/tickseq/internal/action"
	"github.com/roach88/tickseq/internal/bridge"
	"github.com/roach88/tickseq/internal/engine"
	"github.com/roach88/tickseq/internal/ir"
	"github.com/roach88/tickseq/internal/world"
)

// cancelCheckInterval is how many Pending retries pass between checks of
// the tick context.
const cancelCheckInterval = 256

// Driver advances every Sequencer in the world by one step per tick.
type Driver struct {
	logger     *slog.Logger
	clock      *engine.Clock
	runID      string
	retryLimit int
	observers  []Observer
	nextHandle int64
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithRetryLimit caps the Pending retries of one step. Zero, the default,
// means unlimited.
func WithRetryLimit(limit int) DriverOption {
	return func(d *Driver) {
		if limit > 0 {
			d.retryLimit = limit
		}
	}
}

// WithObserver registers an observer for every step. May be repeated.
func WithObserver(o Observer) DriverOption {
	return func(d *Driver) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

// WithLogger sets the driver logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRunID stamps every step record with id.
func WithRunID(id string) DriverOption {
	return func(d *Driver) { d.runID = id }
}

// WithClock sets the clock step sequence numbers are drawn from.
func WithClock(c *engine.Clock) DriverOption {
	return func(d *Driver) {
		if c != nil {
			d.clock = c
		}
	}
}

// NewDriver creates a driver.
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{
		logger: slog.Default(),
		clock:  engine.NewClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run is the per-tick system. For every owner carrying a Sequencer, in
// spawn order, it promotes the waiting actions and invokes the front
// handle once.
//
// Errors of individual owners do not stop the others, and neither does a
// panicking action; they are joined and returned after every owner has
// been visited.
func (d *Driver) Run(ctx context.Context, w *world.World) error {
	var tick uint64
	if t, ok := world.Resource[world.Time](w); ok {
		tick = t.Tick()
	}

	var errs []error
	for _, owner := range world.With[Sequencer](w) {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		// An earlier owner's action may have despawned this one.
		seq, ok := world.Get[Sequencer](w, owner)
		if !ok {
			continue
		}
		d.promote(seq, owner)
		if err := d.step(ctx, w, owner, tick); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// promote moves every waiting action to the back of running.
func (d *Driver) promote(seq *Sequencer, owner world.Entity) {
	for a, ok := seq.waiting.pop(); ok; a, ok = seq.waiting.pop() {
		d.nextHandle++
		h := &handle{
			id:     d.nextHandle,
			owner:  owner,
			action: a,
			label:  bridge.Label(a),
		}
		seq.running.push(h)
		d.logger.Debug("action promoted",
			"owner", owner,
			"handle", h.id,
			"action", h.label,
			"position", seq.running.len())
	}
}

// step invokes the front handle of owner until it yields or completes.
//
// A panic inside the action is confined to this owner: it is recorded as a
// failed step and returned as an ActionPanicError. The handle stays at the
// front.
func (d *Driver) step(ctx context.Context, w *world.World, owner world.Entity, tick uint64) (stepErr error) {
	seq, ok := world.Get[Sequencer](w, owner)
	if !ok {
		return nil
	}
	h, ok := seq.running.front()
	if !ok {
		return nil
	}

	budget := newRetryBudget(d.retryLimit)
	defer func() {
		if r := recover(); r != nil {
			perr := &ActionPanicError{
				Owner:  owner,
				Action: h.label,
				Tick:   tick,
				Value:  r,
			}
			d.record(h, tick, ir.OutcomeFailed, budget.retries, perr)
			d.logger.Error("action panicked",
				"owner", owner,
				"handle", h.id,
				"action", h.label,
				"panic", r)
			stepErr = perr
		}
	}()

	for {
		p, err := h.action.PerformAny(w)
		if err != nil {
			d.record(h, tick, ir.OutcomeFailed, budget.retries, err)
			d.logger.Error("action context resolution failed",
				"owner", owner,
				"handle", h.id,
				"action", h.label,
				"error", err)
			return fmt.Errorf("owner %d: %w", owner, err)
		}

		switch p.State() {
		case action.StateReady:
			d.record(h, tick, ir.OutcomeYielded, budget.retries, nil)
			return nil

		case action.StateDone:
			d.pop(w, owner, h)
			d.record(h, tick, ir.OutcomeCompleted, budget.retries, nil)
			d.logger.Debug("action completed",
				"owner", owner,
				"handle", h.id,
				"action", h.label)
			return nil

		case action.StatePending:
			if !budget.retry() {
				err := &RetryLimitError{
					Owner:   owner,
					Action:  h.label,
					Tick:    tick,
					Retries: budget.retries,
					Limit:   budget.limit,
				}
				d.record(h, tick, ir.OutcomeExhausted, budget.retries, err)
				d.logger.Error("action exceeded retry limit",
					"owner", owner,
					"handle", h.id,
					"action", h.label,
					"retries", budget.retries)
				return err
			}
			if budget.retries%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("owner %d action %s returned invalid poll %s", owner, h.label, p)
		}
	}
}

// pop removes h from owner's running queue.
//
// The component is fetched again because the action may have cleared,
// replaced or removed the Sequencer while it ran; in that case h is no
// longer at the front and nothing is popped.
func (d *Driver) pop(w *world.World, owner world.Entity, h *handle) {
	seq, ok := world.Get[Sequencer](w, owner)
	if !ok {
		return
	}
	if front, ok := seq.running.front(); ok && front == h {
		seq.running.pop()
	}
}

func (d *Driver) record(h *handle, tick uint64, outcome ir.Outcome, retries int, err error) {
	if len(d.observers) == 0 {
		return
	}
	step := ir.Step{
		RunID:   d.runID,
		Seq:     d.clock.Next(),
		Tick:    tick,
		Owner:   uint64(h.owner),
		Handle:  h.id,
		Action:  h.label,
		Outcome: outcome,
		Retries: retries,
	}
	if err != nil {
		step.Error = err.Error()
	}
	for _, o := range d.observers {
		o.ObserveStep(step)
	}
}
