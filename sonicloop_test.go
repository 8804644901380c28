package sonicloop

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/opd-ai/sonicloop/capture"
	"github.com/opd-ai/sonicloop/capture/rtpopus"
	"github.com/opd-ai/sonicloop/config"
	"github.com/opd-ai/sonicloop/dispatch"
	"github.com/opd-ai/sonicloop/scheduler"
	"github.com/opd-ai/sonicloop/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simulatedConfig(t *testing.T, oscPort int) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Capture.Backend = config.BackendSimulated
	cfg.Capture.BlockSize = 512
	cfg.Scheduler.Period = 5 * time.Millisecond
	cfg.Scheduler.BackoffPeriod = 10 * time.Millisecond
	cfg.Control.OSCPort = oscPort
	return cfg
}

func TestNewDriver(t *testing.T) {
	cfg := config.Default().Capture

	cfg.Backend = config.BackendSimulated
	assert.IsType(t, capture.NullDriver{}, NewDriver(cfg))

	cfg.Backend = config.BackendRTP
	assert.IsType(t, &rtpopus.Driver{}, NewDriver(cfg))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scheduler.MinConfidence = 2
	_, err := New(cfg, &Options{DisableOSC: true})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoopEndToEnd(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	cfg := simulatedConfig(t, pc.LocalAddr().(*net.UDPAddr).Port)
	loop, err := New(cfg, nil)
	require.NoError(t, err)

	require.NoError(t, loop.Start(context.Background()))
	assert.Equal(t, capture.StateSimulated, loop.Source().State())

	require.Eventually(t, func() bool {
		return loop.Snapshot().Counters.Cycles >= 2
	}, 5*time.Second, 5*time.Millisecond)

	snap := loop.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, "simulated", snap.CaptureState)
	require.NotNil(t, snap.LatestFeatures)
	assert.Zero(t, snap.Counters.CycleErrors, "simulated capture always yields a frame")

	_, err = loop.ApplyDirective(context.Background(), "faster")
	require.NoError(t, err)
	assert.Equal(t, 130.0, loop.Store().Get().BPM)

	require.NoError(t, loop.Stop())
	require.NoError(t, loop.Stop())
	assert.Equal(t, scheduler.PhaseStopped, loop.Snapshot().Phase)

	// The bpm change was announced over OSC; autonomous decisions may have
	// been sent before it.
	buf := make([]byte, 1024)
	found := false
	for !found {
		require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, err := pc.ReadFrom(buf)
		require.NoError(t, err, "no /bpm message received")
		packet, err := osc.ParsePacket(string(buf[:n]))
		require.NoError(t, err)
		if msg, ok := packet.(*osc.Message); ok && msg.Address == "/bpm" {
			assert.Equal(t, []interface{}{float32(130)}, msg.Arguments)
			found = true
		}
	}
}

func TestLoopInitialStateAndExtraSinks(t *testing.T) {
	initial := state.Default()
	initial.Cutoff = 500
	initial.Key = state.KeyA

	var sent []state.Parameter
	cfg := simulatedConfig(t, 9)
	loop, err := New(cfg, &Options{
		DisableOSC: true,
		Initial:    &initial,
		Sinks: []dispatch.Sink{dispatch.SinkFunc(func(_ context.Context, p state.Parameter, _ state.Value) error {
			sent = append(sent, p)
			return nil
		})},
	})
	require.NoError(t, err)
	defer loop.Stop()

	assert.Equal(t, 130.0, loop.Store().Get().Cutoff, "initial values are clamped")
	assert.Equal(t, state.KeyA, loop.Store().Get().Key)

	_, err = loop.ApplyDirective(context.Background(), "less echo")
	require.NoError(t, err)
	assert.Equal(t, []state.Parameter{state.ParamEcho}, sent)
}
