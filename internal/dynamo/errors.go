package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for rig loading and evaluation.
var (
	// ErrInvalidRig indicates a rig description that cannot be simulated.
	ErrInvalidRig = errors.New("dynamo: invalid rig description")

	// ErrNotLoaded indicates an engine call made before a rig was parsed
	// or after it was released.
	ErrNotLoaded = errors.New("dynamo: no rig loaded")

	// ErrUnknownType indicates an input or output type tag other than X, Y or Angle.
	ErrUnknownType = errors.New("dynamo: unknown physics type tag")

	// ErrUnknownParameter indicates a parameter id the host model does not declare.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")
)

// RigError wraps a rig validation failure with its location.
type RigError struct {
	Setting int
	Field   string
	Wrapped error
}

func (e *RigError) Error() string {
	if e.Setting < 0 {
		return fmt.Sprintf("%s: %v", e.Field, e.Wrapped)
	}
	return fmt.Sprintf("setting %d: %s: %v", e.Setting, e.Field, e.Wrapped)
}

func (e *RigError) Unwrap() error {
	return e.Wrapped
}
