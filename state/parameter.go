package state

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parameter identifies one field of MusicalState. The set is closed: every
// mutation names one of these constants and is dispatched by exhaustive switch.
type Parameter int

const (
	ParamBPM Parameter = iota
	ParamKey
	ParamScale
	ParamIntensity
	ParamCutoff
	ParamReverb
	ParamEcho
	ParamEnergyLevel
	ParamComplexity
)

// Kind distinguishes numeric parameters from enumerated text parameters.
type Kind int

const (
	KindNumber Kind = iota
	KindText
)

type paramDef struct {
	name     string
	kind     Kind
	min, max float64
}

var paramDefs = [...]paramDef{
	ParamBPM:         {name: "bpm", kind: KindNumber, min: 60, max: 200},
	ParamKey:         {name: "key", kind: KindText},
	ParamScale:       {name: "scale", kind: KindText},
	ParamIntensity:   {name: "intensity", kind: KindNumber, min: 0, max: 10},
	ParamCutoff:      {name: "cutoff", kind: KindNumber, min: 50, max: 130},
	ParamReverb:      {name: "reverb", kind: KindNumber, min: 0, max: 1},
	ParamEcho:        {name: "echo", kind: KindNumber, min: 0, max: 1},
	ParamEnergyLevel: {name: "energy_level", kind: KindNumber, min: 0, max: 1},
	ParamComplexity:  {name: "complexity", kind: KindNumber, min: 0, max: 1},
}

// AllParameters lists every parameter in declaration order.
func AllParameters() []Parameter {
	return []Parameter{
		ParamBPM, ParamKey, ParamScale, ParamIntensity, ParamCutoff,
		ParamReverb, ParamEcho, ParamEnergyLevel, ParamComplexity,
	}
}

// Valid reports whether p is a known parameter.
func (p Parameter) Valid() bool {
	return p >= ParamBPM && p <= ParamComplexity
}

// String returns the wire name used for the parameter ("bpm", "energy_level", ...).
func (p Parameter) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Parameter(%d)", int(p))
	}
	return paramDefs[p].name
}

// Kind returns whether p carries a number or a text payload.
func (p Parameter) Kind() Kind {
	if !p.Valid() {
		return KindNumber
	}
	return paramDefs[p].kind
}

// Range returns the inclusive clamp range of a numeric parameter.
// ok is false for text parameters and unknown parameters.
func (p Parameter) Range() (min, max float64, ok bool) {
	if !p.Valid() || paramDefs[p].kind != KindNumber {
		return 0, 0, false
	}
	return paramDefs[p].min, paramDefs[p].max, true
}

// Clamp limits v to the parameter's range. Text parameters return v unchanged.
func (p Parameter) Clamp(v float64) float64 {
	min, max, ok := p.Range()
	if !ok {
		return v
	}
	return math.Max(min, math.Min(max, v))
}

// ParseParameter converts a wire name to a Parameter.
func ParseParameter(name string) (Parameter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, def := range paramDefs {
		if def.name == name {
			return Parameter(i), nil
		}
	}
	return 0, &StateError{Parameter: name, Err: ErrUnknownParameter}
}

// Value is a parameter payload: a number for numeric parameters or a name for
// key and scale.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
}

// Number wraps a numeric payload.
func Number(v float64) Value {
	return Value{Kind: KindNumber, Number: v}
}

// Text wraps a text payload.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// String formats the payload for logs and diagnostics.
func (v Value) String() string {
	if v.Kind == KindText {
		return v.Text
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// Equal reports whether two values carry the same payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == KindText {
		return strings.EqualFold(v.Text, o.Text)
	}
	return v.Number == o.Number
}
