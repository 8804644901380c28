package decision

import (
	"math/rand/v2"
	"sync"

	"github.com/opd-ai/sonicloop/state"
)

// Chooser returns an index in [0, n). n is always positive.
type Chooser func(n int) int

// NewRandomChooser returns a Chooser backed by a seeded PCG source. It is
// safe for concurrent use.
func NewRandomChooser(seed uint64) Chooser {
	var mu sync.Mutex
	rng := rand.New(rand.NewPCG(seed, seed^0x853c49e6748fea9b))
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.IntN(n)
	}
}

var (
	brightKeys = []state.Key{state.KeyG, state.KeyD, state.KeyA, state.KeyE, state.KeyB}
	darkKeys   = []state.Key{state.KeyF, state.KeyC, state.KeyD}

	// simplestScale is the starting point for escalation and the target of
	// de-escalation.
	simplestScale = state.ScaleMajor
	complexScales = []state.Scale{state.ScaleDorian, state.ScaleMixolydian, state.ScaleLydian, state.ScalePhrygian}
)

const (
	advisorConfidence = 0.5

	brightEnergy    = 0.8
	darkEnergy      = 0.3
	escalateLevel   = 0.7
	deescalateLevel = 0.3
)

// TheoryAdvisor proposes key and scale changes from the state's energy level
// and complexity.
type TheoryAdvisor struct {
	choose Chooser
}

// NewTheoryAdvisor creates an advisor. A nil chooser uses a random chooser
// seeded with 1.
func NewTheoryAdvisor(choose Chooser) *TheoryAdvisor {
	if choose == nil {
		choose = NewRandomChooser(1)
	}
	return &TheoryAdvisor{choose: choose}
}

// SuggestKey proposes a bright key at high energy and a dark key at low
// energy, never the current key.
func (a *TheoryAdvisor) SuggestKey(s state.MusicalState) (state.Key, string, bool) {
	var (
		set    []state.Key
		reason string
	)
	switch {
	case s.EnergyLevel > brightEnergy:
		set, reason = brightKeys, "high energy level suggests a brighter key"
	case s.EnergyLevel < darkEnergy:
		set, reason = darkKeys, "low energy level suggests a darker key"
	default:
		return 0, "", false
	}

	candidates := make([]state.Key, 0, len(set))
	for _, k := range set {
		if k != s.Key {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return 0, "", false
	}
	return candidates[a.pick(len(candidates))], reason, true
}

// SuggestScale escalates from the simplest scale when complexity is high and
// returns to it when complexity is low.
func (a *TheoryAdvisor) SuggestScale(s state.MusicalState) (state.Scale, string, bool) {
	switch {
	case s.Complexity > escalateLevel && s.Scale == simplestScale:
		return complexScales[a.pick(len(complexScales))], "high complexity calls for a richer scale", true
	case s.Complexity < deescalateLevel && s.Scale != simplestScale:
		return simplestScale, "low complexity calls for a simpler scale", true
	}
	return 0, "", false
}

func (a *TheoryAdvisor) pick(n int) int {
	i := a.choose(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
