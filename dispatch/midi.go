package dispatch

import (
	"context"
	"math"

	"github.com/opd-ai/sonicloop/state"
	"gitlab.com/gomidi/midi/v2"
)

// ControllerMap assigns a MIDI CC number to each parameter.
type ControllerMap map[state.Parameter]uint8

// DefaultControllers uses the General MIDI effect controllers where one
// exists (74 brightness, 91 reverb, 94 effects depth) and undefined CCs
// otherwise.
func DefaultControllers() ControllerMap {
	return ControllerMap{
		state.ParamBPM:         20,
		state.ParamKey:         21,
		state.ParamScale:       22,
		state.ParamIntensity:   23,
		state.ParamCutoff:      74,
		state.ParamReverb:      91,
		state.ParamEcho:        94,
		state.ParamEnergyLevel: 24,
		state.ParamComplexity:  25,
	}
}

// MIDISink mirrors changes as Control Change messages. Numeric values are
// scaled from the parameter range into 0..127; key and scale send their
// index.
type MIDISink struct {
	send        func(midi.Message) error
	channel     uint8
	controllers ControllerMap
}

// NewMIDISink creates a sink writing through send, typically the function
// returned by midi.SendTo for an open output port.
func NewMIDISink(send func(midi.Message) error, channel uint8, controllers ControllerMap) *MIDISink {
	if controllers == nil {
		controllers = DefaultControllers()
	}
	return &MIDISink{send: send, channel: channel & 0x0F, controllers: controllers}
}

// Send writes one CC message. Parameters without a controller are skipped.
func (m *MIDISink) Send(_ context.Context, p state.Parameter, v state.Value) error {
	cc, ok := m.controllers[p]
	if !ok {
		return nil
	}
	return m.send(midi.ControlChange(m.channel, cc, ControllerValue(p, v)))
}

// ControllerValue maps a parameter value onto 0..127.
func ControllerValue(p state.Parameter, v state.Value) uint8 {
	switch p {
	case state.ParamKey:
		if k, err := state.ParseKey(v.Text); err == nil {
			return uint8(k)
		}
		return 0
	case state.ParamScale:
		if s, err := state.ParseScale(v.Text); err == nil {
			return uint8(s)
		}
		return 0
	}

	min, max, ok := p.Range()
	if !ok || max <= min {
		return 0
	}
	norm := (p.Clamp(v.Number) - min) / (max - min)
	return uint8(math.Round(norm * 127))
}
