package state

import (
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store owns the session's MusicalState. All mutation goes through Apply,
// which validates and clamps before writing; readers receive copies.
//
// Store is safe for concurrent use. Writers are serialized and a reader never
// observes a partially applied change.
type Store struct {
	mu    sync.RWMutex
	state MusicalState
}

// NewStore creates a store holding the default state.
func NewStore() *Store {
	return NewStoreWithState(Default())
}

// NewStoreWithState creates a store holding initial, clamped to valid ranges.
func NewStoreWithState(initial MusicalState) *Store {
	s := &Store{state: Default()}
	for _, p := range AllParameters() {
		if _, err := s.Apply(p, initial.Value(p)); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":  "NewStoreWithState",
				"parameter": p.String(),
				"error":     err.Error(),
			}).Warn("Initial value rejected, keeping default")
		}
	}
	return s
}

// Get returns a snapshot of the current state.
func (s *Store) Get() MusicalState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Apply validates v for p, clamps numeric payloads to the parameter's range
// and writes the result. It returns the state after the write.
func (s *Store) Apply(p Parameter, v Value) (MusicalState, error) {
	if !p.Valid() {
		return s.Get(), &StateError{Parameter: p.String(), Value: v.String(), Err: ErrUnknownParameter}
	}
	if v.Kind != p.Kind() {
		return s.Get(), &StateError{Parameter: p.String(), Value: v.String(), Err: ErrInvalidValue}
	}

	var (
		num   float64
		key   Key
		scale Scale
	)
	switch p.Kind() {
	case KindNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return s.Get(), &StateError{Parameter: p.String(), Value: v.String(), Err: ErrInvalidValue}
		}
		num = p.Clamp(v.Number)
	case KindText:
		var err error
		if p == ParamKey {
			key, err = ParseKey(v.Text)
		} else {
			scale, err = ParseScale(v.Text)
		}
		if err != nil {
			return s.Get(), &StateError{Parameter: p.String(), Value: v.Text, Err: err}
		}
	}

	s.mu.Lock()
	switch p {
	case ParamBPM:
		s.state.BPM = num
	case ParamKey:
		s.state.Key = key
	case ParamScale:
		s.state.Scale = scale
	case ParamIntensity:
		s.state.Intensity = num
	case ParamCutoff:
		s.state.Cutoff = num
	case ParamReverb:
		s.state.Reverb = num
	case ParamEcho:
		s.state.Echo = num
	case ParamEnergyLevel:
		s.state.EnergyLevel = num
	case ParamComplexity:
		s.state.Complexity = num
	}
	snapshot := s.state
	s.mu.Unlock()

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":  "Store.Apply",
			"parameter": p.String(),
			"requested": v.String(),
			"stored":    snapshot.Value(p).String(),
		}).Debug("Musical state updated")
	}

	return snapshot, nil
}

// ApplyNamed resolves a wire parameter name and applies v. It serves callers
// that receive parameter names as text, such as externally supplied intents.
func (s *Store) ApplyNamed(name string, v Value) (MusicalState, error) {
	p, err := ParseParameter(name)
	if err != nil {
		return s.Get(), err
	}
	return s.Apply(p, v)
}
