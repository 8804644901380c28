package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameterRoundTrip(t *testing.T) {
	for _, p := range AllParameters() {
		got, err := ParseParameter(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseParameter("  Energy_Level ")
	require.NoError(t, err)
	assert.Equal(t, ParamEnergyLevel, got)
}

func TestParameterRanges(t *testing.T) {
	min, max, ok := ParamCutoff.Range()
	require.True(t, ok)
	assert.Equal(t, 50.0, min)
	assert.Equal(t, 130.0, max)

	_, _, ok = ParamKey.Range()
	assert.False(t, ok, "text parameters have no numeric range")

	assert.Equal(t, KindText, ParamScale.Kind())
	assert.Equal(t, KindNumber, ParamBPM.Kind())
	assert.Equal(t, 200.0, ParamBPM.Clamp(250))
}

func TestKeyAndScaleNames(t *testing.T) {
	assert.Equal(t, "C", KeyC.String())
	assert.Equal(t, "B", KeyB.String())
	assert.Equal(t, "pentatonic", ScalePentatonic.String())
	assert.Len(t, AllKeys(), 7)
	assert.Len(t, AllScales(), 7)

	_, err := ParseKey("X")
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = ParseScale("chromatic")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestValueFormatting(t *testing.T) {
	assert.Equal(t, "110", Number(110).String())
	assert.Equal(t, "0.25", Number(0.25).String())
	assert.Equal(t, "dorian", Text("dorian").String())
	assert.True(t, Text("G").Equal(Text("g")))
	assert.False(t, Number(1).Equal(Text("1")))
}
