package capture

import (
	"errors"
	"fmt"
)

// Sentinel errors for capture operations.
var (
	// ErrDeviceUnavailable indicates the input device could not be opened.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrNoDevices indicates the driver reported no input-capable devices.
	ErrNoDevices = errors.New("no input devices")

	// ErrSourceStopped indicates Start was called on a stopped source.
	ErrSourceStopped = errors.New("capture source stopped")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("capture source already started")
)

// CaptureError records why the source degraded to simulated input.
type CaptureError struct {
	Driver string
	Device string
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("capture: %s: %v", e.Driver, e.Err)
	}
	return fmt.Sprintf("capture: %s %q: %v", e.Driver, e.Device, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
