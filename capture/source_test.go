package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	cfg    StreamConfig
	mu     sync.Mutex
	closed bool
}

func (s *fakeStream) Config() StreamConfig { return s.cfg }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeDriver struct {
	devices    []DeviceInfo
	devicesErr error
	openErr    error

	opened   DeviceInfo
	request  StreamConfig
	callback DataCallback
	stream   *fakeStream
}

func (d *fakeDriver) Name() string { return "fake" }

func (d *fakeDriver) Devices() ([]DeviceInfo, error) { return d.devices, d.devicesErr }

func (d *fakeDriver) Open(_ context.Context, device DeviceInfo, cfg StreamConfig, onData DataCallback) (Stream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened = device
	d.request = cfg
	d.callback = onData
	d.stream = &fakeStream{cfg: cfg}
	return d.stream, nil
}

func testDevices() []DeviceInfo {
	return []DeviceInfo{
		{Index: 0, Name: "Built-in Output", MaxInputChannels: 0},
		{Index: 1, Name: "MacBook Microphone", MaxInputChannels: 1, IsDefault: true},
		{Index: 2, Name: "BlackHole 2ch", MaxInputChannels: 2},
	}
}

func TestSelectDevice(t *testing.T) {
	tests := []struct {
		name      string
		devices   []DeviceInfo
		preferred string
		wantIndex int
		wantErr   error
	}{
		{"substring match ignores case", testDevices(), "blackhole", 2, nil},
		{"falls back to default input", testDevices(), "Loopback", 1, nil},
		{"empty preference uses default", testDevices(), "", 1, nil},
		{"output-only match is skipped", testDevices(), "Built-in", 1, nil},
		{"first input when no default", []DeviceInfo{
			{Index: 4, Name: "Out", MaxInputChannels: 0},
			{Index: 5, Name: "Line In", MaxInputChannels: 2},
		}, "", 5, nil},
		{"no inputs", []DeviceInfo{{Index: 0, Name: "Out"}}, "", 0, ErrNoDevices},
		{"no devices", nil, "BlackHole", 0, ErrNoDevices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectDevice(tt.devices, tt.preferred)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, got.Index)
		})
	}
}

func smallConfig() Config {
	return Config{
		DeviceName:     "BlackHole",
		SampleRate:     48000,
		Channels:       2,
		BlockSize:      64,
		RingCapacity:   8,
		AnalysisBlocks: 2,
		Seed:           7,
	}
}

func TestSourceStreamsFromPreferredDevice(t *testing.T) {
	driver := &fakeDriver{devices: testDevices()}
	src := NewSource(driver, smallConfig())
	assert.Equal(t, StateUninitialized, src.State())

	require.NoError(t, src.Start(context.Background()))
	assert.Equal(t, StateStreaming, src.State())
	assert.Equal(t, "BlackHole 2ch", driver.opened.Name)
	assert.Equal(t, 2, driver.request.Channels)
	assert.Len(t, src.Devices(), 3)

	_, ok := src.LatestFrame()
	assert.False(t, ok, "no blocks captured yet")

	for i := 0; i < 5; i++ {
		driver.callback(block(float32(i), 128))
	}

	frame, ok := src.LatestFrame()
	require.True(t, ok)
	assert.Equal(t, uint32(48000), frame.SampleRate)
	assert.Equal(t, 2, frame.Channels)
	assert.Len(t, frame.Samples, 256, "two newest blocks of 128 samples")
	assert.Equal(t, float32(3), frame.Samples[0])
	assert.Equal(t, float32(4), frame.Samples[255])
	assert.Equal(t, 128, frame.Frames())

	_, ok = src.LatestFrame()
	assert.False(t, ok, "frames are consumed once")

	require.NoError(t, src.Stop())
	assert.True(t, driver.stream.closed)
}

func TestSourceLimitsChannelsToDevice(t *testing.T) {
	driver := &fakeDriver{devices: []DeviceInfo{{Index: 0, Name: "Mono Mic", MaxInputChannels: 1, IsDefault: true}}}
	src := NewSource(driver, smallConfig())
	require.NoError(t, src.Start(context.Background()))
	assert.Equal(t, 1, driver.request.Channels)

	driver.callback(block(0.25, 64))
	frame, ok := src.LatestFrame()
	require.True(t, ok)
	assert.Equal(t, 1, frame.Channels)
}

func TestSourceDegradesToSimulated(t *testing.T) {
	tests := []struct {
		name   string
		driver Driver
	}{
		{"open fails", &fakeDriver{devices: testDevices(), openErr: errors.New("device busy")}},
		{"enumeration fails", &fakeDriver{devicesErr: errors.New("backend missing")}},
		{"no devices", &fakeDriver{}},
		{"null driver", NullDriver{}},
		{"nil driver", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource(tt.driver, smallConfig())
			require.NoError(t, src.Start(context.Background()), "device failures are not fatal")
			assert.Equal(t, StateSimulated, src.State())

			var captureErr *CaptureError
			assert.True(t, errors.As(src.DegradeReason(), &captureErr))

			frame, ok := src.LatestFrame()
			require.True(t, ok)
			assert.Equal(t, 2*64, frame.Frames())
			assert.Equal(t, 2, frame.Channels)

			frame2, ok := src.LatestFrame()
			require.True(t, ok, "simulated input always produces a frame")
			assert.Len(t, frame2.Samples, len(frame.Samples))
		})
	}
}

func TestSourceLifecycle(t *testing.T) {
	driver := &fakeDriver{devices: testDevices()}
	src := NewSource(driver, smallConfig())

	require.NoError(t, src.Start(context.Background()))
	assert.ErrorIs(t, src.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, src.Stop())
	require.NoError(t, src.Stop(), "second stop is a no-op")
	assert.Equal(t, StateStopped, src.State())
	assert.ErrorIs(t, src.Start(context.Background()), ErrSourceStopped)

	_, ok := src.LatestFrame()
	assert.False(t, ok)

	driver.callback(block(1, 64))
	assert.Equal(t, 0, src.Ring().Len(), "callbacks after stop are ignored")
}

func TestSourceTimestampsBlocks(t *testing.T) {
	driver := &fakeDriver{devices: testDevices()}
	src := NewSource(driver, smallConfig())
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src.SetClock(func() time.Time { return stamp })
	require.NoError(t, src.Start(context.Background()))

	driver.callback(block(0.1, 128))
	frame, ok := src.LatestFrame()
	require.True(t, ok)
	assert.Equal(t, stamp, frame.Timestamp)
}

func TestSourceReportsDroppedBlocks(t *testing.T) {
	driver := &fakeDriver{devices: testDevices()}
	src := NewSource(driver, smallConfig())
	require.NoError(t, src.Start(context.Background()))

	for i := 0; i < 20; i++ {
		driver.callback(block(float32(i), 128))
	}
	assert.Equal(t, uint64(12), src.Dropped())
}

func TestAudioFrameMono(t *testing.T) {
	frame := AudioFrame{
		SampleRate: 8000,
		Channels:   2,
		Samples:    []float32{1, 0, 0.5, 0.5, -1, 1},
	}
	assert.Equal(t, []float64{0.5, 0.5, 0}, frame.Mono())
	assert.Equal(t, 3, frame.Frames())
	assert.Equal(t, 375*time.Microsecond, frame.Duration())
}

func TestGeneratorDeterministic(t *testing.T) {
	ts := time.Unix(0, 0)
	a := NewGenerator(44100, 2, 42).Next(1024, ts)
	b := NewGenerator(44100, 2, 42).Next(1024, ts)
	c := NewGenerator(44100, 2, 43).Next(1024, ts)

	assert.Equal(t, a.Samples, b.Samples)
	assert.NotEqual(t, a.Samples, c.Samples)
	for _, s := range a.Samples {
		assert.True(t, s >= -1 && s <= 1)
	}
}
