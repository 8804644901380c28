package sonicloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/opd-ai/sonicloop/capture"
	"github.com/opd-ai/sonicloop/capture/rtpopus"
	"github.com/opd-ai/sonicloop/config"
	"github.com/opd-ai/sonicloop/decision"
	"github.com/opd-ai/sonicloop/dispatch"
	"github.com/opd-ai/sonicloop/scheduler"
	"github.com/opd-ai/sonicloop/state"
	"github.com/sirupsen/logrus"
)

// Options overrides parts of the assembly. The zero value builds everything
// from the configuration.
type Options struct {
	// Driver replaces the driver selected by capture.backend.
	Driver capture.Driver
	// Sinks are added after the OSC sink, for example a MIDI mirror.
	Sinks []dispatch.Sink
	// DisableOSC skips the OSC sink.
	DisableOSC bool
	// Clock replaces the scheduler's time source.
	Clock scheduler.TimeProvider
	// Initial is the starting musical state; nil uses state.Default.
	Initial *state.MusicalState
}

// Loop is an assembled feedback loop.
type Loop struct {
	cfg        config.Config
	driver     capture.Driver
	source     *capture.Source
	store      *state.Store
	engine     *decision.Engine
	dispatcher *dispatch.Dispatcher
	sinks      dispatch.MultiSink
	scheduler  *scheduler.Scheduler

	closeOnce sync.Once
}

// NewDriver returns the capture driver for the configured backend. Without
// cgo the device backend has no driver and the loop runs on simulated input.
func NewDriver(cfg config.CaptureConfig) capture.Driver {
	switch cfg.Backend {
	case config.BackendRTP:
		return rtpopus.New(cfg.RTPListen)
	case config.BackendSimulated:
		return capture.NullDriver{}
	default:
		return newDeviceDriver()
	}
}

// New validates cfg and wires capture, analysis, decisions, dispatch and
// scheduling together. Nothing runs until Start.
func New(cfg config.Config, opts *Options) (*Loop, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driver := opts.Driver
	if driver == nil {
		driver = NewDriver(cfg.Capture)
	}

	var sinks dispatch.MultiSink
	if !opts.DisableOSC {
		osc, err := dispatch.NewOSCSink(cfg.Control.OSCHost, cfg.Control.OSCPort)
		if err != nil {
			return nil, fmt.Errorf("create OSC sink: %w", err)
		}
		sinks = append(sinks, osc)
	}
	sinks = append(sinks, opts.Sinks...)

	initial := state.Default()
	if opts.Initial != nil {
		initial = *opts.Initial
	}
	store := state.NewStoreWithState(initial)

	clock := opts.Clock
	if clock == nil {
		clock = scheduler.RealTimeProvider{}
	}

	source := capture.NewSource(driver, capture.Config{
		DeviceName:     cfg.Capture.DeviceName,
		SampleRate:     uint32(cfg.Capture.SampleRate),
		Channels:       cfg.Capture.Channels,
		BlockSize:      cfg.Capture.BlockSize,
		RingCapacity:   cfg.Capture.RingCapacity,
		AnalysisBlocks: cfg.Capture.AnalysisBlocks,
		Seed:           cfg.Capture.Seed,
	})
	source.SetClock(clock.Now)

	engine := decision.NewEngine(decision.NewTheoryAdvisor(decision.NewRandomChooser(cfg.Scheduler.AdvisorSeed)))
	engine.SetClock(clock.Now)

	dispatcher := dispatch.NewDispatcher(store, decision.NewHistory(cfg.Scheduler.DecisionHistory), sinks)

	sched := scheduler.New(scheduler.Config{
		Period:               cfg.Scheduler.Period,
		BackoffPeriod:        cfg.Scheduler.BackoffPeriod,
		MaxDecisionsPerCycle: cfg.Scheduler.MaxDecisionsPerCycle,
		MinConfidence:        cfg.Scheduler.MinConfidence,
		AnalysisHistory:      cfg.Scheduler.AnalysisHistory,
	}, source, store, engine, dispatcher, clock)

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"backend":  string(cfg.Capture.Backend),
		"driver":   driver.Name(),
		"osc":      !opts.DisableOSC,
		"sinks":    len(sinks),
	}).Info("Feedback loop assembled")

	return &Loop{
		cfg:        cfg,
		driver:     driver,
		source:     source,
		store:      store,
		engine:     engine,
		dispatcher: dispatcher,
		sinks:      sinks,
		scheduler:  sched,
	}, nil
}

// Start begins capture and the periodic loop.
func (l *Loop) Start(ctx context.Context) error {
	return l.scheduler.Start(ctx)
}

// Stop finishes the current cycle, stops capture and releases sinks and the
// driver. It is safe to call more than once.
func (l *Loop) Stop() error {
	var errs []error
	if err := l.scheduler.Stop(); err != nil {
		errs = append(errs, err)
	}
	l.closeOnce.Do(func() {
		if err := l.sinks.Close(); err != nil {
			errs = append(errs, err)
		}
		if c, ok := l.driver.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// ApplyDirective interprets text and applies the result immediately.
func (l *Loop) ApplyDirective(ctx context.Context, text string) ([]decision.Decision, error) {
	return l.scheduler.ApplyDirective(ctx, text)
}

// Snapshot returns the introspection view.
func (l *Loop) Snapshot() scheduler.Snapshot {
	return l.scheduler.Snapshot()
}

// Store exposes the musical state for external intent handlers.
func (l *Loop) Store() *state.Store {
	return l.store
}

// Scheduler exposes the underlying scheduler.
func (l *Loop) Scheduler() *scheduler.Scheduler {
	return l.scheduler
}

// Source exposes the capture source.
func (l *Loop) Source() *capture.Source {
	return l.source
}

// Config returns the configuration the loop was built with.
func (l *Loop) Config() config.Config {
	return l.cfg
}

// ListDevices enumerates the input devices of the configured backend.
func ListDevices(cfg config.CaptureConfig) ([]capture.DeviceInfo, error) {
	driver := NewDriver(cfg)
	if c, ok := driver.(io.Closer); ok {
		defer c.Close()
	}
	return driver.Devices()
}
