package state

import (
	"fmt"
	"strings"
)

// Key is one of the seven natural letter-name keys.
type Key int

const (
	KeyC Key = iota
	KeyD
	KeyE
	KeyF
	KeyG
	KeyA
	KeyB
)

var keyNames = [...]string{"C", "D", "E", "F", "G", "A", "B"}

// AllKeys lists every key in enumeration order.
func AllKeys() []Key {
	return []Key{KeyC, KeyD, KeyE, KeyF, KeyG, KeyA, KeyB}
}

// String returns the letter name of the key.
func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// Valid reports whether k is one of the enumerated keys.
func (k Key) Valid() bool {
	return k >= KeyC && k <= KeyB
}

// ParseKey converts a letter name (case-insensitive) to a Key.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	for i, name := range keyNames {
		if strings.EqualFold(s, name) {
			return Key(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown key %q", ErrInvalidValue, s)
}

// Scale is one of the fixed set of supported modes.
type Scale int

const (
	ScaleMajor Scale = iota
	ScaleMinor
	ScaleDorian
	ScalePhrygian
	ScaleLydian
	ScaleMixolydian
	ScalePentatonic
)

var scaleNames = [...]string{"major", "minor", "dorian", "phrygian", "lydian", "mixolydian", "pentatonic"}

// AllScales lists every scale in enumeration order.
func AllScales() []Scale {
	return []Scale{ScaleMajor, ScaleMinor, ScaleDorian, ScalePhrygian, ScaleLydian, ScaleMixolydian, ScalePentatonic}
}

// String returns the lower-case scale name.
func (s Scale) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Scale(%d)", int(s))
	}
	return scaleNames[s]
}

// Valid reports whether s is one of the enumerated scales.
func (s Scale) Valid() bool {
	return s >= ScaleMajor && s <= ScalePentatonic
}

// ParseScale converts a scale name (case-insensitive) to a Scale.
func ParseScale(s string) (Scale, error) {
	s = strings.TrimSpace(s)
	for i, name := range scaleNames {
		if strings.EqualFold(s, name) {
			return Scale(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown scale %q", ErrInvalidValue, s)
}

// MusicalState is the current belief about the generator's musical parameters.
// Values are always within the ranges reported by Parameter.Range.
type MusicalState struct {
	BPM         float64 `json:"bpm"`
	Key         Key     `json:"key"`
	Scale       Scale   `json:"scale"`
	Intensity   float64 `json:"intensity"`
	Cutoff      float64 `json:"cutoff"`
	Reverb      float64 `json:"reverb"`
	Echo        float64 `json:"echo"`
	EnergyLevel float64 `json:"energy_level"`
	Complexity  float64 `json:"complexity"`
}

// Default returns the state a session starts with.
func Default() MusicalState {
	return MusicalState{
		BPM:         120,
		Key:         KeyC,
		Scale:       ScaleMajor,
		Intensity:   5,
		Cutoff:      100,
		Reverb:      0.3,
		Echo:        0.2,
		EnergyLevel: 0.5,
		Complexity:  0.5,
	}
}

// Value returns the current value of p.
func (s MusicalState) Value(p Parameter) Value {
	switch p {
	case ParamBPM:
		return Number(s.BPM)
	case ParamKey:
		return Text(s.Key.String())
	case ParamScale:
		return Text(s.Scale.String())
	case ParamIntensity:
		return Number(s.Intensity)
	case ParamCutoff:
		return Number(s.Cutoff)
	case ParamReverb:
		return Number(s.Reverb)
	case ParamEcho:
		return Number(s.Echo)
	case ParamEnergyLevel:
		return Number(s.EnergyLevel)
	case ParamComplexity:
		return Number(s.Complexity)
	}
	return Value{}
}
