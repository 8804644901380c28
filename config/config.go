package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/opd-ai/sonicloop/limits"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Backend selects the capture driver.
type Backend string

const (
	BackendDevice    Backend = "device"
	BackendRTP       Backend = "rtp"
	BackendSimulated Backend = "simulated"
)

// Config is the complete runtime configuration.
type Config struct {
	Capture   CaptureConfig   `yaml:"capture"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Control   ControlConfig   `yaml:"control"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CaptureConfig configures audio acquisition.
type CaptureConfig struct {
	Backend        Backend `yaml:"backend"`
	DeviceName     string  `yaml:"device_name"`
	SampleRate     int     `yaml:"sample_rate"`
	Channels       int     `yaml:"channels"`
	BlockSize      int     `yaml:"block_size"`
	RingCapacity   int     `yaml:"ring_capacity"`
	AnalysisBlocks int     `yaml:"analysis_blocks"`
	RTPListen      string  `yaml:"rtp_listen"`
	Seed           uint64  `yaml:"seed"`
}

// SchedulerConfig configures loop cadence and gating.
type SchedulerConfig struct {
	Period               time.Duration `yaml:"period"`
	BackoffPeriod        time.Duration `yaml:"backoff_period"`
	MaxDecisionsPerCycle int           `yaml:"max_decisions_per_cycle"`
	MinConfidence        float64       `yaml:"min_confidence"`
	DecisionHistory      int           `yaml:"decision_history"`
	AnalysisHistory      int           `yaml:"analysis_history"`
	AdvisorSeed          uint64        `yaml:"advisor_seed"`
}

// ControlConfig addresses the outbound control sinks.
type ControlConfig struct {
	OSCHost string `yaml:"osc_host"`
	OSCPort int    `yaml:"osc_port"`
	// MIDIPort enables the MIDI mirror when non-empty; matched as a
	// case-insensitive substring of the output port name.
	MIDIPort    string `yaml:"midi_port"`
	MIDIChannel int    `yaml:"midi_channel"`
}

// LoggingConfig configures logrus.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Capture: CaptureConfig{
			Backend:        BackendDevice,
			DeviceName:     "BlackHole",
			SampleRate:     44100,
			Channels:       2,
			BlockSize:      limits.DefaultBlockSize,
			RingCapacity:   limits.DefaultRingCapacity,
			AnalysisBlocks: 4,
			RTPListen:      "127.0.0.1:5004",
			Seed:           1,
		},
		Scheduler: SchedulerConfig{
			Period:               2 * time.Second,
			BackoffPeriod:        5 * time.Second,
			MaxDecisionsPerCycle: 2,
			MinConfidence:        0.6,
			DecisionHistory:      limits.DefaultDecisionHistory,
			AnalysisHistory:      limits.DefaultAnalysisHistory,
			AdvisorSeed:          1,
		},
		Control: ControlConfig{
			OSCHost: "127.0.0.1",
			OSCPort: 57120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML file. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Validate checks every field. All problems are reported together.
func (c Config) Validate() error {
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Capture.Backend {
	case BackendDevice, BackendRTP, BackendSimulated:
	default:
		check(fmt.Errorf("capture.backend %q: want device, rtp or simulated", c.Capture.Backend))
	}
	check(limits.ValidateSampleRate(c.Capture.SampleRate))
	check(limits.ValidateChannels(c.Capture.Channels))
	check(limits.ValidateBlockSize(c.Capture.BlockSize))
	check(limits.ValidateRingCapacity(c.Capture.RingCapacity))
	check(limits.ValidateRange("capture.analysis_blocks", c.Capture.AnalysisBlocks, 1, c.Capture.RingCapacity))
	if c.Capture.Backend == BackendRTP && c.Capture.RTPListen == "" {
		check(errors.New("capture.rtp_listen is required for the rtp backend"))
	}

	if c.Scheduler.Period <= 0 {
		check(errors.New("scheduler.period must be positive"))
	}
	if c.Scheduler.BackoffPeriod < c.Scheduler.Period {
		check(errors.New("scheduler.backoff_period must not be shorter than scheduler.period"))
	}
	check(limits.ValidateRange("scheduler.max_decisions_per_cycle", c.Scheduler.MaxDecisionsPerCycle, 1, 100))
	if c.Scheduler.MinConfidence < 0 || c.Scheduler.MinConfidence >= 1 {
		check(fmt.Errorf("scheduler.min_confidence %v: want [0,1)", c.Scheduler.MinConfidence))
	}
	check(limits.ValidateHistory("scheduler.decision_history", c.Scheduler.DecisionHistory))
	check(limits.ValidateHistory("scheduler.analysis_history", c.Scheduler.AnalysisHistory))

	if c.Control.OSCHost == "" {
		check(errors.New("control.osc_host is required"))
	}
	check(limits.ValidateRange("control.osc_port", c.Control.OSCPort, 1, 65535))
	check(limits.ValidateRange("control.midi_channel", c.Control.MIDIChannel, 0, 15))

	if _, err := parseLevel(c.Logging.Level); err != nil {
		check(err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		check(fmt.Errorf("logging.format %q: want text or json", c.Logging.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
