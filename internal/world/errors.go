package world

import (
	"errors"
	"fmt"
)

// MissingResourceError is returned when a Param needs a resource the world
// does not hold.
type MissingResourceError struct {
	Type string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing resource %s", e.Type)
}

// MissingComponentError is returned when a Param needs a component that is
// absent, or when Single finds more than one match.
type MissingComponentError struct {
	Type  string
	Found int
}

func (e *MissingComponentError) Error() string {
	if e.Found > 1 {
		return fmt.Sprintf("expected exactly one %s, found %d", e.Type, e.Found)
	}
	return fmt.Sprintf("missing component %s", e.Type)
}

// IsResolveError reports whether err is a context resolution failure.
// Uses errors.As to handle wrapped errors.
func IsResolveError(err error) bool {
	var mr *MissingResourceError
	if errors.As(err, &mr) {
		return true
	}
	var mc *MissingComponentError
	return errors.As(err, &mc)
}
