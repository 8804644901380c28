package state

import (
	"errors"
	"fmt"
)

// Sentinel errors for state store operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrUnknownParameter indicates a parameter name outside the MusicalState field set.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidValue indicates a payload that cannot be applied: wrong kind,
	// not finite, or an unknown key/scale name.
	ErrInvalidValue = errors.New("invalid parameter value")
)

// StateError reports a rejected mutation of the musical state.
type StateError struct {
	Parameter string
	Value     string
	Err       error
}

func (e *StateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("state: %s: %v", e.Parameter, e.Err)
	}
	return fmt.Sprintf("state: %s=%s: %v", e.Parameter, e.Value, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
