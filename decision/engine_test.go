package decision

import (
	"testing"
	"time"

	"github.com/opd-ai/sonicloop/analysis"
	"github.com/opd-ai/sonicloop/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// neutral features fire no spectral rule.
func neutral() analysis.SpectralAnalysis {
	return analysis.SpectralAnalysis{RMSEnergy: 0.5, SpectralCentroid: 2000}
}

func firstChoice(int) int { return 0 }

func newTestEngine() *Engine {
	e := NewEngine(NewTheoryAdvisor(firstChoice))
	e.SetClock(func() time.Time { return time.Unix(100, 0) })
	return e
}

func find(ds []Decision, p state.Parameter) (Decision, bool) {
	for _, d := range ds {
		if d.Parameter == p {
			return d, true
		}
	}
	return Decision{}, false
}

func TestDecideIntensity(t *testing.T) {
	tests := []struct {
		name      string
		rms       float64
		intensity float64
		want      float64
		fires     bool
	}{
		{"loud raises", 0.9, 5, 6, true},
		{"loud at ceiling", 0.9, 8, 0, false},
		{"loud just below ceiling", 0.9, 7.9, 8.9, true},
		{"quiet lowers", 0.1, 5, 4, true},
		{"quiet at floor", 0.1, 3, 0, false},
		{"boundary rms 0.8", 0.8, 5, 0, false},
		{"boundary rms 0.3", 0.3, 5, 0, false},
	}

	e := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := neutral()
			a.RMSEnergy = tt.rms
			s := state.Default()
			s.Intensity = tt.intensity

			d, ok := find(e.Decide(a, s), state.ParamIntensity)
			require.Equal(t, tt.fires, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.want, d.Value.Number, 1e-9)
			assert.Equal(t, 0.7, d.Confidence)
			assert.Equal(t, time.Unix(100, 0), d.Timestamp)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestDecideCutoff(t *testing.T) {
	tests := []struct {
		name     string
		centroid float64
		cutoff   float64
		want     float64
		fires    bool
	}{
		{"bright closes", 4000, 100, 90, true},
		{"bright floors at 50", 4000, 55, 50, true},
		{"bright gate", 4000, 80, 0, false},
		{"dark opens", 500, 100, 110, true},
		{"dark caps at 130", 500, 119, 129, true},
		{"dark gate", 500, 120, 0, false},
		{"mid spectrum", 2000, 100, 0, false},
	}

	e := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := neutral()
			a.SpectralCentroid = tt.centroid
			s := state.Default()
			s.Cutoff = tt.cutoff

			d, ok := find(e.Decide(a, s), state.ParamCutoff)
			require.Equal(t, tt.fires, ok)
			if ok {
				assert.InDelta(t, tt.want, d.Value.Number, 1e-9)
				assert.Equal(t, 0.6, d.Confidence)
			}
		})
	}
}

func TestDecideRuleOrder(t *testing.T) {
	e := newTestEngine()
	a := analysis.SpectralAnalysis{RMSEnergy: 0.95, SpectralCentroid: 5000}
	s := state.Default()
	s.EnergyLevel = 0.95
	s.Complexity = 0.9

	ds := e.Decide(a, s)
	require.Len(t, ds, 4)
	assert.Equal(t, state.ParamIntensity, ds[0].Parameter)
	assert.Equal(t, state.ParamCutoff, ds[1].Parameter)
	assert.Equal(t, state.ParamKey, ds[2].Parameter)
	assert.Equal(t, state.ParamScale, ds[3].Parameter)
}

func TestDecideNeutralIsQuiet(t *testing.T) {
	assert.Empty(t, newTestEngine().Decide(neutral(), state.Default()))
}

func TestAdvisorKeyExcludesCurrent(t *testing.T) {
	for _, current := range state.AllKeys() {
		for i := 0; i < 5; i++ {
			idx := i
			adv := NewTheoryAdvisor(func(n int) int { return idx % n })

			s := state.Default()
			s.Key = current
			s.EnergyLevel = 0.9
			key, _, ok := adv.SuggestKey(s)
			require.True(t, ok)
			assert.NotEqual(t, current, key)
			assert.Contains(t, brightKeys, key)

			s.EnergyLevel = 0.1
			key, _, ok = adv.SuggestKey(s)
			require.True(t, ok)
			assert.NotEqual(t, current, key)
			assert.Contains(t, darkKeys, key)
		}
	}
}

func TestAdvisorKeyMidEnergy(t *testing.T) {
	adv := NewTheoryAdvisor(firstChoice)
	s := state.Default()
	for _, level := range []float64{0.3, 0.5, 0.8} {
		s.EnergyLevel = level
		_, _, ok := adv.SuggestKey(s)
		assert.False(t, ok, "energy %v", level)
	}
}

func TestAdvisorScale(t *testing.T) {
	adv := NewTheoryAdvisor(func(n int) int { return n - 1 })

	s := state.Default()
	s.Complexity = 0.9
	scale, _, ok := adv.SuggestScale(s)
	require.True(t, ok)
	assert.Equal(t, state.ScalePhrygian, scale)

	s.Scale = state.ScaleDorian
	_, _, ok = adv.SuggestScale(s)
	assert.False(t, ok, "already escalated")

	s.Complexity = 0.1
	scale, _, ok = adv.SuggestScale(s)
	require.True(t, ok)
	assert.Equal(t, state.ScaleMajor, scale)

	s.Scale = state.ScaleMajor
	_, _, ok = adv.SuggestScale(s)
	assert.False(t, ok, "already simplest")
}

func TestAdvisorOutOfRangeChooser(t *testing.T) {
	adv := NewTheoryAdvisor(func(int) int { return 99 })
	s := state.Default()
	s.Complexity = 0.9
	scale, _, ok := adv.SuggestScale(s)
	require.True(t, ok)
	assert.Equal(t, state.ScaleDorian, scale)
}

func TestRandomChooserDeterministic(t *testing.T) {
	a, b := NewRandomChooser(9), NewRandomChooser(9)
	for i := 0; i < 20; i++ {
		x := a(5)
		assert.Equal(t, x, b(5))
		assert.True(t, x >= 0 && x < 5)
	}
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	for i := 0; i < 120; i++ {
		h.Append(Decision{Parameter: state.ParamBPM, Value: state.Number(float64(i))})
	}
	assert.Equal(t, 50, h.Len())

	all := h.Recent(0)
	require.Len(t, all, 50)
	assert.Equal(t, 70.0, all[0].Value.Number)
	assert.Equal(t, 119.0, all[49].Value.Number)

	last := h.Recent(3)
	require.Len(t, last, 3)
	assert.Equal(t, 117.0, last[0].Value.Number)
	assert.Equal(t, 119.0, last[2].Value.Number)
}
