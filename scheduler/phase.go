package scheduler

import "fmt"

// Phase is the loop's position in its state machine:
//
//	Idle → Sampling → Deciding → Filtering → Dispatching → Sleeping → Sampling ...
//
// Any failing cycle goes to ErrorBackoff instead of Sleeping. Stop leads to
// Stopped.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseSampling
	PhaseDeciding
	PhaseFiltering
	PhaseDispatching
	PhaseSleeping
	PhaseErrorBackoff
	PhaseStopped
)

var phaseNames = [...]string{
	PhaseIdle:         "idle",
	PhaseSampling:     "sampling",
	PhaseDeciding:     "deciding",
	PhaseFiltering:    "filtering",
	PhaseDispatching:  "dispatching",
	PhaseSleeping:     "sleeping",
	PhaseErrorBackoff: "error_backoff",
	PhaseStopped:      "stopped",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
