//go:build cgo

// Package malgodrv is a capture.Driver for local audio devices through
// miniaudio (github.com/gen2brain/malgo). It requires cgo.
package malgodrv

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/opd-ai/sonicloop/capture"
	"github.com/sirupsen/logrus"
)

// Driver enumerates and opens capture devices. The miniaudio context is
// created on first use and released by Close.
type Driver struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
	ids map[int]malgo.DeviceID
}

// New creates a driver. No backend is touched until Devices or Open.
func New() *Driver {
	return &Driver{ids: make(map[int]malgo.DeviceID)}
}

// Name returns "malgo".
func (d *Driver) Name() string { return "malgo" }

func (d *Driver) context() (*malgo.AllocatedContext, error) {
	if d.ctx != nil {
		return d.ctx, nil
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logrus.WithFields(logrus.Fields{
			"function": "malgo",
			"message":  message,
		}).Debug("miniaudio")
	})
	if err != nil {
		return nil, fmt.Errorf("init miniaudio context: %w", err)
	}
	d.ctx = ctx
	return ctx, nil
}

// Devices lists capture devices with their maximum channel counts.
func (d *Driver) Devices() ([]capture.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, err := d.context()
	if err != nil {
		return nil, err
	}
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate capture devices: %w", err)
	}

	devices := make([]capture.DeviceInfo, 0, len(infos))
	for i, info := range infos {
		channels := 0
		if full, err := ctx.DeviceInfo(malgo.Capture, info.ID, malgo.Shared); err == nil {
			counts := make([]uint32, 0, full.FormatCount)
			for f := 0; f < int(full.FormatCount) && f < len(full.Formats); f++ {
				counts = append(counts, full.Formats[f].Channels)
			}
			channels = maxChannels(counts)
		}
		d.ids[i] = info.ID
		devices = append(devices, capture.DeviceInfo{
			Index:            i,
			Name:             info.Name(),
			MaxInputChannels: channels,
			IsDefault:        info.IsDefault != 0,
		})
	}
	return devices, nil
}

// maxChannels returns the largest channel count among native formats. A
// device reporting no formats, or only "any channel count" (0), is assumed
// to be stereo.
func maxChannels(counts []uint32) int {
	best := 0
	for _, c := range counts {
		if int(c) > best {
			best = int(c)
		}
	}
	if best == 0 {
		return 2
	}
	return best
}

// Open starts an F32 capture stream on device.
func (d *Driver) Open(_ context.Context, device capture.DeviceInfo, cfg capture.StreamConfig, onData capture.DataCallback) (capture.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, err := d.context()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
	}
	id, ok := d.ids[device.Index]
	if !ok {
		return nil, fmt.Errorf("%w: unknown device index %d", capture.ErrDeviceUnavailable, device.Index)
	}

	s := &Stream{
		id:  id,
		cfg: cfg,
		buf: make([]float32, cfg.BlockSize*cfg.Channels),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.Capture.DeviceID = s.id.Pointer()
	deviceConfig.SampleRate = cfg.SampleRate
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BlockSize)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			s.buf = decodeF32(s.buf, input)
			onData(s.buf)
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: init %q: %v", capture.ErrDeviceUnavailable, device.Name, err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return nil, fmt.Errorf("%w: start %q: %v", capture.ErrDeviceUnavailable, device.Name, err)
	}
	s.dev = dev

	logrus.WithFields(logrus.Fields{
		"function":    "Driver.Open",
		"device":      device.Name,
		"sample_rate": cfg.SampleRate,
		"channels":    cfg.Channels,
		"period":      cfg.BlockSize,
	}).Info("Opened capture device")

	return s, nil
}

// Close releases the miniaudio context. Streams must be closed first.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		return nil
	}
	err := d.ctx.Uninit()
	d.ctx.Free()
	d.ctx = nil
	return err
}

// Stream is an open miniaudio capture device.
type Stream struct {
	id   malgo.DeviceID
	cfg  capture.StreamConfig
	buf  []float32
	dev  *malgo.Device
	once sync.Once
}

// Config reports the requested format; miniaudio converts to it.
func (s *Stream) Config() capture.StreamConfig { return s.cfg }

// Close stops and releases the device.
func (s *Stream) Close() error {
	s.once.Do(func() {
		if s.dev != nil {
			_ = s.dev.Stop()
			s.dev.Uninit()
		}
	})
	return nil
}

// decodeF32 converts little-endian float32 bytes into dst, growing it if
// needed.
func decodeF32(dst []float32, src []byte) []float32 {
	n := len(src) / 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return dst
}
