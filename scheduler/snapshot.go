package scheduler

import (
	"time"

	"github.com/opd-ai/sonicloop/decision"
	"github.com/opd-ai/sonicloop/state"
)

// Features is the subset of the latest analysis shown to operators.
type Features struct {
	Energy     float64   `json:"energy"`
	Brightness float64   `json:"brightness"`
	Rhythm     float64   `json:"rhythm"`
	Timestamp  time.Time `json:"timestamp"`
}

// Counters are cumulative since the scheduler was created.
type Counters struct {
	Cycles            uint64 `json:"cycles"`
	CycleErrors       uint64 `json:"cycle_errors"`
	ConsecutiveErrors uint64 `json:"consecutive_errors"`
	Dispatched        uint64 `json:"dispatched"`
	DispatchErrors    uint64 `json:"dispatch_errors"`
	SendFailures      uint64 `json:"send_failures"`
	DroppedBlocks     uint64 `json:"dropped_blocks"`
}

// Snapshot is a read-only view for introspection.
type Snapshot struct {
	Running         bool                `json:"running"`
	Phase           Phase               `json:"phase"`
	CaptureState    string              `json:"capture_state"`
	State           state.MusicalState  `json:"state"`
	RecentDecisions []decision.Decision `json:"recent_decisions"`
	LatestFeatures  *Features           `json:"latest_features,omitempty"`
	Counters        Counters            `json:"counters"`
}

// Snapshot gathers the current status. It never blocks on a running cycle.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		Running:         s.IsRunning(),
		Phase:           Phase(s.phase.Load()),
		CaptureState:    s.source.State().String(),
		State:           s.store.Get(),
		RecentDecisions: s.dispatcher.History().Recent(0),
		Counters: Counters{
			Cycles:            s.cycles.Load(),
			CycleErrors:       s.cycleErrors.Load(),
			ConsecutiveErrors: s.consecutive.Load(),
			Dispatched:        s.dispatched.Load(),
			DispatchErrors:    s.dispatchErrors.Load(),
			SendFailures:      s.dispatcher.Stats().SendFailures,
			DroppedBlocks:     s.source.Dropped(),
		},
	}
	if a, ok := s.extractor.History().Latest(); ok {
		snap.LatestFeatures = &Features{
			Energy:     a.RMSEnergy,
			Brightness: a.SpectralCentroid,
			Rhythm:     a.RhythmStrength,
			Timestamp:  a.Timestamp,
		}
	}
	return snap
}
