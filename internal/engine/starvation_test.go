package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStarvationChecker_FiresWhenNoTicks(t *testing.T) {
	var fired atomic.Int64
	s := NewStarvationChecker(5*time.Millisecond, time.Millisecond, func(time.Duration) {
		fired.Add(1)
	}, quietLogger())
	defer s.Stop()

	assert.Eventually(t, func() bool { return fired.Load() > 0 }, time.Second, time.Millisecond)
}

func TestStarvationChecker_QuietWhileTouched(t *testing.T) {
	var fired atomic.Int64
	s := NewStarvationChecker(time.Hour, time.Millisecond, func(time.Duration) {
		fired.Add(1)
	}, quietLogger())

	before := s.LastTick()
	time.Sleep(5 * time.Millisecond)
	s.Touch()
	s.Stop()

	assert.True(t, s.LastTick().After(before))
	assert.Equal(t, int64(0), fired.Load())
}
