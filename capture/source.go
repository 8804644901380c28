package capture

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the lifecycle state of a Source.
type State int32

const (
	StateUninitialized State = iota
	StateDiscovering
	StateStreaming
	StateSimulated
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDiscovering:
		return "discovering"
	case StateStreaming:
		return "streaming"
	case StateSimulated:
		return "simulated"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Config configures a Source.
type Config struct {
	// DeviceName is matched case-insensitively against device names; a match
	// is preferred over the default input. Typically a virtual routing device.
	DeviceName string
	SampleRate uint32
	Channels   int
	// BlockSize is the number of sample frames per driver buffer.
	BlockSize int
	// RingCapacity is the number of recent blocks retained.
	RingCapacity int
	// AnalysisBlocks is how many of the newest blocks LatestFrame joins.
	AnalysisBlocks int
	// Seed drives the simulated generator.
	Seed uint64
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		DeviceName:     "BlackHole",
		SampleRate:     44100,
		Channels:       2,
		BlockSize:      2048,
		RingCapacity:   100,
		AnalysisBlocks: 4,
		Seed:           1,
	}
}

// Source acquires audio from a Driver and hands the newest blocks to the
// analysis side without ever blocking the driver callback. When no device can
// be opened it degrades to a simulated generator so the loop keeps running.
//
// States: Uninitialized → Discovering → Streaming | Simulated → Stopped.
// Stopped is terminal; a new Source is required to capture again.
type Source struct {
	cfg    Config
	driver Driver
	now    func() time.Time

	state atomic.Int32
	ring  *RingBuffer

	mu        sync.Mutex
	stream    Stream
	format    StreamConfig
	device    DeviceInfo
	devices   []DeviceInfo
	sim       *Generator
	degradeBy error
}

// NewSource creates a source for driver. A nil driver behaves as NullDriver.
func NewSource(driver Driver, cfg Config) *Source {
	if driver == nil {
		driver = NullDriver{}
	}
	def := DefaultConfig()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = def.Channels
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = def.BlockSize
	}
	if cfg.RingCapacity <= 0 {
		cfg.RingCapacity = def.RingCapacity
	}
	if cfg.AnalysisBlocks <= 0 {
		cfg.AnalysisBlocks = def.AnalysisBlocks
	}

	return &Source{
		cfg:    cfg,
		driver: driver,
		now:    time.Now,
		ring:   NewRingBuffer(cfg.RingCapacity, cfg.BlockSize*cfg.Channels),
		format: StreamConfig{SampleRate: cfg.SampleRate, Channels: cfg.Channels, BlockSize: cfg.BlockSize},
	}
}

// SetClock replaces the timestamp source. Intended for tests.
func (s *Source) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Start discovers and opens the capture device. Device failures are logged
// once and degrade the source to Simulated; they are not returned.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch State(s.state.Load()) {
	case StateStopped:
		return ErrSourceStopped
	case StateUninitialized:
	default:
		return ErrAlreadyStarted
	}
	s.state.Store(int32(StateDiscovering))

	logrus.WithFields(logrus.Fields{
		"function":       "Source.Start",
		"driver":         s.driver.Name(),
		"preferred_name": s.cfg.DeviceName,
	}).Info("Discovering capture devices")

	devices, err := s.driver.Devices()
	if err != nil {
		s.degrade(&CaptureError{Driver: s.driver.Name(), Err: err})
		return nil
	}
	s.devices = devices

	device, err := SelectDevice(devices, s.cfg.DeviceName)
	if err != nil {
		s.degrade(&CaptureError{Driver: s.driver.Name(), Err: err})
		return nil
	}

	request := StreamConfig{SampleRate: s.cfg.SampleRate, Channels: s.cfg.Channels, BlockSize: s.cfg.BlockSize}
	if device.MaxInputChannels < request.Channels {
		request.Channels = device.MaxInputChannels
	}

	stream, err := s.driver.Open(ctx, device, request, s.onData)
	if err != nil {
		s.degrade(&CaptureError{Driver: s.driver.Name(), Device: device.Name, Err: err})
		return nil
	}

	s.stream = stream
	s.device = device
	s.format = stream.Config()
	if s.format.SampleRate == 0 {
		s.format.SampleRate = request.SampleRate
	}
	if s.format.Channels <= 0 {
		s.format.Channels = request.Channels
	}
	s.state.Store(int32(StateStreaming))

	logrus.WithFields(logrus.Fields{
		"function":    "Source.Start",
		"driver":      s.driver.Name(),
		"device":      device.Name,
		"sample_rate": s.format.SampleRate,
		"channels":    s.format.Channels,
		"block_size":  s.format.BlockSize,
	}).Info("Capture streaming")

	return nil
}

// degrade switches to simulated input. Callers hold s.mu.
func (s *Source) degrade(err error) {
	s.degradeBy = err
	s.sim = NewGenerator(s.cfg.SampleRate, s.cfg.Channels, s.cfg.Seed)
	s.format = StreamConfig{SampleRate: s.cfg.SampleRate, Channels: s.cfg.Channels, BlockSize: s.cfg.BlockSize}
	s.state.Store(int32(StateSimulated))

	logrus.WithFields(logrus.Fields{
		"function": "Source.Start",
		"driver":   s.driver.Name(),
		"error":    err.Error(),
	}).Warn("Capture device unavailable, using simulated input")
}

// onData is the driver callback: copy into the ring and return.
func (s *Source) onData(samples []float32) {
	if State(s.state.Load()) != StateStreaming {
		return
	}
	s.ring.Push(samples, s.now())
}

// LatestFrame returns the newest captured audio, joining up to AnalysisBlocks
// of the most recent blocks. Blocks are consumed; ok is false when nothing
// new arrived since the previous call or the source is not running.
func (s *Source) LatestFrame() (AudioFrame, bool) {
	switch State(s.state.Load()) {
	case StateStreaming:
		return s.drainFrame()
	case StateSimulated:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.sim == nil {
			return AudioFrame{}, false
		}
		return s.sim.Next(s.cfg.AnalysisBlocks*s.cfg.BlockSize, s.now()), true
	}
	return AudioFrame{}, false
}

func (s *Source) drainFrame() (AudioFrame, bool) {
	blocks := s.ring.Drain(s.cfg.AnalysisBlocks)
	if len(blocks) == 0 {
		return AudioFrame{}, false
	}

	total := 0
	for _, b := range blocks {
		total += len(b.Samples)
	}
	samples := make([]float32, 0, total)
	for _, b := range blocks {
		samples = append(samples, b.Samples...)
	}

	s.mu.Lock()
	format := s.format
	s.mu.Unlock()

	return AudioFrame{
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Samples:    samples,
		Timestamp:  blocks[len(blocks)-1].Timestamp,
	}, true
}

// Stop closes the device and moves to Stopped. Calling Stop again is a no-op.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if State(s.state.Load()) == StateStopped {
		return nil
	}
	s.state.Store(int32(StateStopped))

	var err error
	if s.stream != nil {
		err = s.stream.Close()
		s.stream = nil
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Source.Stop",
		"driver":         s.driver.Name(),
		"dropped_blocks": s.ring.Dropped(),
	}).Info("Capture stopped")

	return err
}

// State returns the current lifecycle state.
func (s *Source) State() State {
	return State(s.state.Load())
}

// Devices returns the devices seen during discovery.
func (s *Source) Devices() []DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DeviceInfo, len(s.devices))
	copy(out, s.devices)
	return out
}

// Device returns the open device; zero when not streaming.
func (s *Source) Device() DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// DegradeReason returns why the source fell back to simulated input, if it did.
func (s *Source) DegradeReason() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degradeBy
}

// Dropped returns how many captured blocks were evicted unread.
func (s *Source) Dropped() uint64 {
	return s.ring.Dropped()
}

// Ring exposes the capture ring for inspection.
func (s *Source) Ring() *RingBuffer {
	return s.ring
}
