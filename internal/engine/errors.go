package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while running a tick.
//
// It carries structured fields for diagnostics; the underlying system error
// is available through errors.Unwrap.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// System names the failing system.
	System string

	// Tick is the tick the failure happened in.
	Tick uint64

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying error.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeSystemFailed indicates a registered system returned an error.
	ErrCodeSystemFailed RuntimeErrorCode = "SYSTEM_FAILED"

	// ErrCodeSystemPanicked indicates a registered system panicked.
	ErrCodeSystemPanicked RuntimeErrorCode = "SYSTEM_PANICKED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.System != "" {
		return fmt.Sprintf("%s: %s (system=%s, tick=%d)", e.Code, e.Message, e.System, e.Tick)
	}
	return fmt.Sprintf("%s: %s (tick=%d)", e.Code, e.Message, e.Tick)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsSystemError returns true if err is a RuntimeError from a failing or
// panicking system. Uses errors.As to handle wrapped errors.
func IsSystemError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeSystemFailed || re.Code == ErrCodeSystemPanicked
	}
	return false
}

// NewSystemError wraps err returned by system at tick.
func NewSystemError(system string, tick uint64, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeSystemFailed,
		Message: err.Error(),
		System:  system,
		Tick:    tick,
		Err:     err,
	}
}

// NewPanicError records a panic value recovered from system at tick.
func NewPanicError(system string, tick uint64, v any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeSystemPanicked,
		Message: fmt.Sprintf("panic: %v", v),
		System:  system,
		Tick:    tick,
		Details: map[string]string{
			"panic_type": fmt.Sprintf("%T", v),
		},
	}
}
