package dispatch

import (
	"errors"
	"fmt"

	"github.com/opd-ai/sonicloop/state"
)

// Sentinel errors for dispatch operations.
var (
	// ErrStateRejected indicates the store refused the decision; nothing was sent.
	ErrStateRejected = errors.New("decision rejected by state store")

	// ErrSendFailed indicates the outbound control message could not be sent.
	// The state change has already been applied.
	ErrSendFailed = errors.New("control message send failed")

	// ErrSinkClosed indicates a send on a closed sink.
	ErrSinkClosed = errors.New("sink closed")
)

// DispatchError reports a failed Execute for one parameter.
type DispatchError struct {
	Parameter state.Parameter
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Parameter, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
