package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StarvationChecker watches the tick loop from a background goroutine and
// reports periods in which no tick completed.
//
// A tick stalls when the front action of some owner never stops returning
// Pending. The sequencer does not recover from that; the checker only makes
// it visible through logs and the onStarved callback (wired to metrics).
type StarvationChecker struct {
	threshold time.Duration
	interval  time.Duration
	onStarved func(time.Duration)
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	lastTick time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStarvationChecker starts a checker that fires when more than threshold
// passes between ticks. It polls every interval. Stop must be called.
func NewStarvationChecker(threshold, interval time.Duration, onStarved func(time.Duration), logger *slog.Logger) *StarvationChecker {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &StarvationChecker{
		threshold: threshold,
		interval:  interval,
		onStarved: onStarved,
		logger:    logger,
		now:       time.Now,
		cancel:    cancel,
	}
	s.lastTick = s.now()

	s.wg.Add(1)
	go s.loop(ctx)

	logger.Info("starvation checker started", "threshold", threshold)
	return s
}

func (s *StarvationChecker) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *StarvationChecker) check() {
	s.mu.RLock()
	since := s.now().Sub(s.lastTick)
	s.mu.RUnlock()

	if since <= s.threshold {
		return
	}
	s.logger.Warn("tick loop starvation detected", "since_last_tick", since)
	if s.onStarved != nil {
		s.onStarved(since)
	}
}

// Touch marks that a tick just completed.
func (s *StarvationChecker) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = s.now()
}

// LastTick returns when Touch was last called.
func (s *StarvationChecker) LastTick() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// Stop terminates the background goroutine and waits for it.
func (s *StarvationChecker) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("starvation checker stopped")
}
