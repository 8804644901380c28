package decision

import (
	"testing"

	"github.com/opd-ai/sonicloop/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretDirective(t *testing.T) {
	tests := []struct {
		text string
		want map[state.Parameter]float64
	}{
		{"faster", map[state.Parameter]float64{state.ParamBPM: 130}},
		{"Please SPEED UP a bit", map[state.Parameter]float64{state.ParamBPM: 130}},
		{"slow down", map[state.Parameter]float64{state.ParamBPM: 110}},
		{"make it heavy", map[state.Parameter]float64{state.ParamIntensity: 8, state.ParamEnergyLevel: 0.9}},
		{"something ambient", map[state.Parameter]float64{state.ParamIntensity: 3, state.ParamReverb: 0.5, state.ParamEnergyLevel: 0.2}},
		{"brighter and faster", map[state.Parameter]float64{state.ParamBPM: 130, state.ParamCutoff: 120}},
		{"darker", map[state.Parameter]float64{state.ParamCutoff: 80}},
		{"go experimental", map[state.Parameter]float64{state.ParamComplexity: 0.8}},
		{"keep it minimal", map[state.Parameter]float64{state.ParamComplexity: 0.2}},
		{"more echo please", map[state.Parameter]float64{state.ParamEcho: 0.4}},
		{"less echo", map[state.Parameter]float64{state.ParamEcho: 0}},
		{"software update", map[state.Parameter]float64{}},
		{"", map[state.Parameter]float64{}},
	}

	e := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ds := e.InterpretDirective(tt.text, state.Default())
			require.Len(t, ds, len(tt.want))
			for _, d := range ds {
				want, ok := tt.want[d.Parameter]
				require.True(t, ok, "unexpected decision %s", d)
				assert.InDelta(t, want, d.Value.Number, 1e-9, d.Parameter.String())
				assert.GreaterOrEqual(t, d.Confidence, 0.8)
				assert.LessOrEqual(t, d.Confidence, 0.95)
			}
		})
	}
}

func TestInterpretDirectiveClamps(t *testing.T) {
	e := newTestEngine()
	s := state.Default()
	s.BPM = 195
	s.Reverb = 0.9
	s.Cutoff = 125

	ds := e.InterpretDirective("faster", s)
	require.Len(t, ds, 1)
	assert.Equal(t, 200.0, ds[0].Value.Number)

	ds = e.InterpretDirective("chill", s)
	d, ok := find(ds, state.ParamReverb)
	require.True(t, ok)
	assert.Equal(t, 1.0, d.Value.Number)

	ds = e.InterpretDirective("brighter", s)
	require.Len(t, ds, 1)
	assert.Equal(t, 130.0, ds[0].Value.Number)

	s.BPM = 62
	ds = e.InterpretDirective("slower", s)
	require.Len(t, ds, 1)
	assert.Equal(t, 60.0, ds[0].Value.Number)
}

func TestFasterTwiceThroughStore(t *testing.T) {
	e := newTestEngine()
	store := state.NewStore()

	for i := 0; i < 2; i++ {
		for _, d := range e.InterpretDirective("faster", store.Get()) {
			_, err := store.Apply(d.Parameter, d.Value)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 140.0, store.Get().BPM)

	for i := 0; i < 10; i++ {
		for _, d := range e.InterpretDirective("faster", store.Get()) {
			_, err := store.Apply(d.Parameter, d.Value)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 200.0, store.Get().BPM)
}
