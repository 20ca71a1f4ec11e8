package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tickseq/internal/world"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type tickLog struct {
	ticks []uint64
	errs  []error
}

func (l *tickLog) ObserveTick(tick uint64, _ time.Duration, err error) {
	l.ticks = append(l.ticks, tick)
	l.errs = append(l.errs, err)
}

func TestEngine_StepAdvancesTime(t *testing.T) {
	w := world.New()
	e := New(w, WithTimeSource(FixedStep(time.Second)), WithLogger(quietLogger()))

	var seen []time.Duration
	e.AddSystem("probe", func(_ context.Context, w *world.World) error {
		tm, ok := world.Resource[world.Time](w)
		require.True(t, ok)
		seen = append(seen, tm.Elapsed(), tm.Delta())
		return nil
	})

	require.NoError(t, e.Step(context.Background()))
	require.NoError(t, e.Step(context.Background()))

	assert.Equal(t, uint64(2), e.Tick())
	assert.Equal(t, []time.Duration{time.Second, time.Second, 2 * time.Second, time.Second}, seen)
}

func TestEngine_SystemsRunInOrder(t *testing.T) {
	e := New(world.New(), WithLogger(quietLogger()))
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		e.AddSystem(name, func(context.Context, *world.World) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, e.Step(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, []string{"a", "b", "c"}, e.Systems())
}

func TestEngine_FailingSystemDoesNotStopOthers(t *testing.T) {
	e := New(world.New(), WithLogger(quietLogger()))
	boom := errors.New("boom")
	ran := false
	e.AddSystem("bad", func(context.Context, *world.World) error { return boom })
	e.AddSystem("good", func(context.Context, *world.World) error {
		ran = true
		return nil
	})

	err := e.Step(context.Background())

	require.Error(t, err)
	assert.True(t, ran)
	assert.True(t, IsSystemError(err))
	assert.ErrorIs(t, err, boom)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeSystemFailed, re.Code)
	assert.Equal(t, "bad", re.System)
	assert.Equal(t, uint64(1), re.Tick)
}

func TestEngine_PanickingSystemIsReported(t *testing.T) {
	e := New(world.New(), WithLogger(quietLogger()))
	e.AddSystem("panics", func(context.Context, *world.World) error { panic("nope") })

	err := e.Step(context.Background())

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeSystemPanicked, re.Code)
	assert.Contains(t, re.Error(), "nope")
}

type countPlugin struct{ n *int }

func (p countPlugin) Build(e *Engine) {
	e.AddSystem("count", func(context.Context, *world.World) error {
		*p.n++
		return nil
	})
}

func TestEngine_PluginsAndRunTicks(t *testing.T) {
	n := 0
	log := &tickLog{}
	e := New(world.New(), WithLogger(quietLogger()), WithTickObserver(log))
	e.AddPlugins(countPlugin{n: &n})

	require.NoError(t, e.RunTicks(context.Background(), 3))

	assert.Equal(t, 3, n)
	assert.Equal(t, []uint64{1, 2, 3}, log.ticks)
}

func TestEngine_RunTicksReturnsLastError(t *testing.T) {
	e := New(world.New(), WithLogger(quietLogger()))
	calls := 0
	e.AddSystem("flaky", func(context.Context, *world.World) error {
		calls++
		if calls == 1 {
			return errors.New("first")
		}
		return nil
	})

	err := e.RunTicks(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, 2, calls, "errors are logged and the run continues")
}

func TestEngine_RunUntil(t *testing.T) {
	e := New(world.New(), WithLogger(quietLogger()))

	n, err := e.RunUntil(context.Background(), 10, func(w *world.World) bool {
		tm, _ := world.Resource[world.Time](w)
		return tm.Tick() == 4
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = e.RunUntil(context.Background(), 2, func(*world.World) bool { return false })
	assert.Error(t, err)
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	var ticks atomic.Int64
	e := New(world.New(), WithLogger(quietLogger()), WithTickInterval(time.Millisecond))
	e.AddSystem("count", func(context.Context, *world.World) error {
		ticks.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := e.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, ticks.Load())
}

func TestEngine_Stop(t *testing.T) {
	e := New(world.New(), WithLogger(quietLogger()), WithTickInterval(time.Millisecond))
	e.AddSystem("stopper", func(context.Context, *world.World) error {
		e.Stop()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	// Stop is idempotent.
	e.Stop()
	assert.Equal(t, uint64(1), e.Tick(), "no tick runs after the one that called Stop")
}

func TestEngine_CancelledContextSkipsSystems(t *testing.T) {
	e := New(world.New(), WithLogger(quietLogger()))
	ran := false
	e.AddSystem("never", func(context.Context, *world.World) error {
		ran = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Step(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}
