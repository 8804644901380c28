//go:build !cgo

package main

import (
	"errors"

	"github.com/opd-ai/sonicloop/dispatch"
)

// midiOut has no implementation without cgo; rtmidi is a C library.
type midiOut struct{}

func openMIDIOut(string) (*midiOut, error) {
	return nil, errors.New("MIDI output requires a cgo build")
}

func (m *midiOut) sink(uint8) dispatch.Sink { return dispatch.NopSink{} }

func (m *midiOut) Close() error { return nil }
