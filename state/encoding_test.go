package state

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMusicalStateJSONUsesNames(t *testing.T) {
	s := Default()
	s.Key = KeyA
	s.Scale = ScaleDorian

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"bpm": 120, "key": "A", "scale": "dorian", "intensity": 5, "cutoff": 100,
		"reverb": 0.3, "echo": 0.2, "energy_level": 0.5, "complexity": 0.5
	}`, string(data))

	var back MusicalState
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)
}

func TestEnumTextEncoding(t *testing.T) {
	for _, p := range AllParameters() {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var back Parameter
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}

	_, err := Parameter(99).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownParameter)
	_, err = Key(-1).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = Scale(42).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidValue)

	var k Key
	assert.ErrorIs(t, k.UnmarshalText([]byte("H")), ErrInvalidValue)
	var sc Scale
	require.NoError(t, sc.UnmarshalText([]byte("Lydian")))
	assert.Equal(t, ScaleLydian, sc)
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"number", Number(6), `6`},
		{"fraction", Number(0.25), `0.25`},
		{"text", Text("mixolydian"), `"mixolydian"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back Value
			require.NoError(t, json.Unmarshal(data, &back))
			assert.True(t, tt.value.Equal(back))
			assert.Equal(t, tt.value.Kind, back.Kind)
		})
	}

	_, err := json.Marshal(Number(math.NaN()))
	assert.Error(t, err, "NaN has no JSON form")

	var v Value
	assert.ErrorIs(t, json.Unmarshal([]byte(`true`), &v), ErrInvalidValue)
}
