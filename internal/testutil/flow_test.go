package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunGenerator_ReturnsSameToken(t *testing.T) {
	gen := NewFixedRunGenerator("test-run-123")

	assert.Equal(t, "test-run-123", gen.Generate())
	assert.Equal(t, "test-run-123", gen.Generate())
	assert.Equal(t, "test-run-123", gen.Generate())
}

func TestFixedRunGenerator_EmptyTokenDefault(t *testing.T) {
	gen := NewFixedRunGenerator("")

	assert.Equal(t, "test-run-default", gen.Generate())
}

func TestFixedRunGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedRunGenerator("thread-safe-token")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe-token", gen.Generate())
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
