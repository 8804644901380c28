//go:build cgo

package main

import (
	"fmt"
	"strings"

	"github.com/opd-ai/sonicloop/dispatch"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// midiOut is an open rtmidi output port.
type midiOut struct {
	drv  *rtmididrv.Driver
	port drivers.Out
	send func(midi.Message) error
}

func openMIDIOut(pattern string) (*midiOut, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}

	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("list MIDI outputs: %w", err)
	}
	names := make([]string, len(outs))
	for i, o := range outs {
		names[i] = o.String()
	}

	idx := matchPort(names, pattern)
	if idx < 0 {
		drv.Close()
		return nil, fmt.Errorf("no MIDI output matches %q (have %s)", pattern, strings.Join(names, ", "))
	}

	port := outs[idx]
	if err := port.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("open MIDI output %q: %w", port.String(), err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		port.Close()
		drv.Close()
		return nil, fmt.Errorf("MIDI output %q: %w", port.String(), err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "openMIDIOut",
		"port":     port.String(),
	}).Info("MIDI mirror enabled")

	return &midiOut{drv: drv, port: port, send: send}, nil
}

func (m *midiOut) sink(channel uint8) dispatch.Sink {
	return dispatch.NewMIDISink(m.send, channel, dispatch.DefaultControllers())
}

func (m *midiOut) Close() error {
	err := m.port.Close()
	m.drv.Close()
	return err
}
