package scheduler

import "errors"

var (
	// ErrAlreadyRunning is returned when Start is called on a running scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrStopped is returned when Start is called after Stop.
	ErrStopped = errors.New("scheduler stopped")

	// ErrNoFrame marks a cycle that found no new audio.
	ErrNoFrame = errors.New("no audio frame available")

	// ErrCyclePanic marks a cycle that panicked and was recovered.
	ErrCyclePanic = errors.New("cycle panicked")
)
