package capture

import (
	"context"
	"fmt"
	"strings"
)

// DeviceInfo describes one input device offered by a Driver.
type DeviceInfo struct {
	Index            int
	Name             string
	MaxInputChannels int
	IsDefault        bool
}

// String formats the device for logs and device listings.
func (d DeviceInfo) String() string {
	def := ""
	if d.IsDefault {
		def = " (default)"
	}
	return fmt.Sprintf("[%d] %s, %d in%s", d.Index, d.Name, d.MaxInputChannels, def)
}

// StreamConfig is the format requested from, and reported by, a driver.
type StreamConfig struct {
	SampleRate uint32
	Channels   int
	BlockSize  int
}

// DataCallback receives one buffer of interleaved float32 samples. It runs on
// the driver's real-time context and must return quickly; the slice is only
// valid for the duration of the call.
type DataCallback func(samples []float32)

// Stream is an open capture stream.
type Stream interface {
	// Config reports the format actually delivered, which may differ from
	// the request (for example fewer channels).
	Config() StreamConfig
	// Close stops delivery. No callback runs after Close returns.
	Close() error
}

// Driver abstracts an audio input backend.
type Driver interface {
	// Name identifies the backend in logs.
	Name() string
	// Devices enumerates the available input devices.
	Devices() ([]DeviceInfo, error)
	// Open starts delivering buffers from device to onData.
	Open(ctx context.Context, device DeviceInfo, cfg StreamConfig, onData DataCallback) (Stream, error)
}

// SelectDevice picks the capture device. A device whose name contains
// preferred (case-insensitive) wins; otherwise the driver's default input;
// otherwise the first device with input channels.
func SelectDevice(devices []DeviceInfo, preferred string) (DeviceInfo, error) {
	var inputs []DeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, d)
		}
	}
	if len(inputs) == 0 {
		return DeviceInfo{}, ErrNoDevices
	}

	if preferred != "" {
		for _, d := range inputs {
			if containsCI(d.Name, preferred) {
				return d, nil
			}
		}
	}
	for _, d := range inputs {
		if d.IsDefault {
			return d, nil
		}
	}
	return inputs[0], nil
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// NullDriver offers no devices. A Source using it always runs Simulated.
type NullDriver struct{}

// Name returns "null".
func (NullDriver) Name() string { return "null" }

// Devices returns no devices.
func (NullDriver) Devices() ([]DeviceInfo, error) { return nil, nil }

// Open always fails with ErrDeviceUnavailable.
func (NullDriver) Open(context.Context, DeviceInfo, StreamConfig, DataCallback) (Stream, error) {
	return nil, ErrDeviceUnavailable
}
