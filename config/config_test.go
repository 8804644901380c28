package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/sonicloop/limits"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendDevice, cfg.Capture.Backend)
	assert.Equal(t, 2*time.Second, cfg.Scheduler.Period)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.BackoffPeriod)
	assert.Equal(t, 2, cfg.Scheduler.MaxDecisionsPerCycle)
	assert.Equal(t, 0.6, cfg.Scheduler.MinConfidence)
	assert.Equal(t, 57120, cfg.Control.OSCPort)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
capture:
  backend: rtp
  rtp_listen: 0.0.0.0:6000
scheduler:
  period: 500ms
  backoff_period: 3s
control:
  osc_port: 9000
  midi_port: IAC
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, BackendRTP, cfg.Capture.Backend)
	assert.Equal(t, "0.0.0.0:6000", cfg.Capture.RTPListen)
	assert.Equal(t, "BlackHole", cfg.Capture.DeviceName, "unset keys keep defaults")
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.Period)
	assert.Equal(t, 3*time.Second, cfg.Scheduler.BackoffPeriod)
	assert.Equal(t, 9000, cfg.Control.OSCPort)
	assert.Equal(t, "127.0.0.1", cfg.Control.OSCHost)
	assert.Equal(t, "IAC", cfg.Control.MIDIPort)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "capture:\n  colour: blue\n"},
		{"bad backend", "capture:\n  backend: jack\n"},
		{"block size not power of two", "capture:\n  block_size: 1000\n"},
		{"ring too large", "capture:\n  ring_capacity: 5000\n"},
		{"analysis blocks exceed ring", "capture:\n  ring_capacity: 4\n  analysis_blocks: 8\n"},
		{"backoff shorter than period", "scheduler:\n  period: 10s\n  backoff_period: 1s\n"},
		{"confidence out of range", "scheduler:\n  min_confidence: 1.5\n"},
		{"zero decisions", "scheduler:\n  max_decisions_per_cycle: 0\n"},
		{"port out of range", "control:\n  osc_port: 70000\n"},
		{"midi channel", "control:\n  midi_channel: 16\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"log format", "logging:\n  format: xml\n"},
		{"malformed yaml", "capture: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidateWrapsLimitErrors(t *testing.T) {
	cfg := Default()
	cfg.Capture.SampleRate = 100
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, limits.ErrOutOfRange)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "sonicloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture:\n  backend: simulated\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSimulated, cfg.Capture.Backend)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoggingApply(t *testing.T) {
	prevLevel, prevFormatter := logrus.GetLevel(), logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})

	require.NoError(t, LoggingConfig{Level: "warn", Format: "json"}.Apply())
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	assert.ErrorIs(t, LoggingConfig{Level: "nope"}.Apply(), ErrInvalidConfig)
}
