package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/sonicloop/analysis"
	"github.com/opd-ai/sonicloop/capture"
	"github.com/opd-ai/sonicloop/decision"
	"github.com/opd-ai/sonicloop/dispatch"
	"github.com/opd-ai/sonicloop/limits"
	"github.com/opd-ai/sonicloop/state"
	"github.com/sirupsen/logrus"
)

// Source provides audio frames. *capture.Source implements it.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	LatestFrame() (capture.AudioFrame, bool)
	State() capture.State
	Dropped() uint64
}

// Decider proposes parameter changes. *decision.Engine implements it.
type Decider interface {
	Decide(a analysis.SpectralAnalysis, s state.MusicalState) []decision.Decision
	InterpretDirective(text string, s state.MusicalState) []decision.Decision
}

// Config controls cadence and gating.
type Config struct {
	// Period is the sleep between a completed cycle and the next.
	Period time.Duration
	// BackoffPeriod replaces Period after a failed cycle.
	BackoffPeriod time.Duration
	// MaxDecisionsPerCycle caps how many proposals are considered per cycle,
	// taken in the order the decider returned them.
	MaxDecisionsPerCycle int
	// MinConfidence is the exclusive lower bound for dispatch.
	MinConfidence float64
	// AnalysisHistory is the number of analyses retained.
	AnalysisHistory int
}

// DefaultConfig returns the standard cadence: a 2 s period, 5 s backoff, at
// most 2 decisions per cycle, confidence above 0.6.
func DefaultConfig() Config {
	return Config{
		Period:               2 * time.Second,
		BackoffPeriod:        5 * time.Second,
		MaxDecisionsPerCycle: 2,
		MinConfidence:        0.6,
		AnalysisHistory:      limits.DefaultAnalysisHistory,
	}
}

// CycleReport describes one completed cycle.
type CycleReport struct {
	Started     time.Time
	Analysis    analysis.SpectralAnalysis
	HasAnalysis bool
	Proposed    []decision.Decision
	Accepted    []decision.Decision
	Dispatched  int
	// DispatchErrors are per-decision failures; they do not fail the cycle.
	DispatchErrors []error
	// Err is set when the cycle failed and the loop should back off.
	Err error
}

// Scheduler runs the sense→decide→act loop at a fixed cadence.
type Scheduler struct {
	cfg        Config
	source     Source
	store      *state.Store
	decider    Decider
	dispatcher *dispatch.Dispatcher
	extractor  *analysis.Extractor
	clock      TimeProvider

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	// cycleMu serializes cycles and directives. Both read the state and
	// write changes relative to it, so each must see the other's result.
	cycleMu sync.Mutex

	phase          atomic.Int32
	cycles         atomic.Uint64
	cycleErrors    atomic.Uint64
	consecutive    atomic.Uint64
	dispatched     atomic.Uint64
	dispatchErrors atomic.Uint64
}

// New assembles a scheduler. Zero durations, counts and history sizes take
// their defaults and a nil clock uses the system clock. MinConfidence is used
// as given: zero admits every proposal with positive confidence, so start from
// DefaultConfig to keep the standard 0.6 gate.
func New(cfg Config, source Source, store *state.Store, decider Decider, dispatcher *dispatch.Dispatcher, clock TimeProvider) *Scheduler {
	def := DefaultConfig()
	if cfg.Period <= 0 {
		cfg.Period = def.Period
	}
	if cfg.BackoffPeriod <= 0 {
		cfg.BackoffPeriod = def.BackoffPeriod
	}
	if cfg.MaxDecisionsPerCycle <= 0 {
		cfg.MaxDecisionsPerCycle = def.MaxDecisionsPerCycle
	}
	if cfg.AnalysisHistory <= 0 {
		cfg.AnalysisHistory = def.AnalysisHistory
	}
	if clock == nil {
		clock = RealTimeProvider{}
	}

	return &Scheduler{
		cfg:        cfg,
		source:     source,
		store:      store,
		decider:    decider,
		dispatcher: dispatcher,
		extractor:  analysis.NewExtractor(cfg.AnalysisHistory),
		clock:      clock,
	}
}

// Filter takes the first max decisions in order and keeps those whose
// confidence exceeds minConfidence.
func Filter(ds []decision.Decision, max int, minConfidence float64) []decision.Decision {
	if len(ds) > max {
		ds = ds[:max]
	}
	out := make([]decision.Decision, 0, len(ds))
	for _, d := range ds {
		if d.Confidence > minConfidence {
			out = append(out, d)
		}
	}
	return out
}

// Start starts the capture source and the loop goroutine. ctx governs only
// capture startup; the loop runs until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.running {
		return ErrAlreadyRunning
	}

	if err := s.source.Start(ctx); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	logrus.WithFields(logrus.Fields{
		"function":       "Scheduler.Start",
		"period":         s.cfg.Period.String(),
		"backoff_period": s.cfg.BackoffPeriod.String(),
		"max_decisions":  s.cfg.MaxDecisionsPerCycle,
		"min_confidence": s.cfg.MinConfidence,
		"capture_state":  s.source.State().String(),
	}).Info("Feedback loop started")

	go s.run(loopCtx, s.done)
	return nil
}

// Stop lets an in-flight cycle finish, halts the loop and stops capture.
// Stop is terminal; a second call is a no-op.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	wasRunning := s.running
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if wasRunning {
		cancel()
		<-done
	}
	err := s.source.Stop()
	s.phase.Store(int32(PhaseStopped))

	logrus.WithFields(logrus.Fields{
		"function":     "Scheduler.Stop",
		"cycles":       s.cycles.Load(),
		"cycle_errors": s.cycleErrors.Load(),
		"dispatched":   s.dispatched.Load(),
	}).Info("Feedback loop stopped")

	return err
}

// settlePhase leaves a cycle run outside the loop in Idle, or Stopped after
// Stop. The loop sets its own Sleeping or ErrorBackoff phase.
func (s *Scheduler) settlePhase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.stopped:
		s.phase.Store(int32(PhaseStopped))
	case !s.running:
		s.phase.Store(int32(PhaseIdle))
	}
}

// Config returns the effective configuration after defaults.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// IsRunning reports whether the loop goroutine is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		// Cycles are not interrupted by Stop.
		report := s.RunOnce(context.WithoutCancel(ctx))

		wait := s.cfg.Period
		next := PhaseSleeping
		if report.Err != nil {
			wait = s.cfg.BackoffPeriod
			next = PhaseErrorBackoff
			logrus.WithFields(logrus.Fields{
				"function":           "Scheduler.run",
				"error":              report.Err.Error(),
				"consecutive_errors": s.consecutive.Load(),
				"backoff":            wait.String(),
			}).Warn("Cycle failed, backing off")
		}
		s.phase.Store(int32(next))

		timer := s.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce executes one Sampling → Deciding → Filtering → Dispatching pass.
// Concurrent calls are serialized.
func (s *Scheduler) RunOnce(ctx context.Context) (report CycleReport) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	report.Started = s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("%w: %v", ErrCyclePanic, r)
			logrus.WithFields(logrus.Fields{
				"function": "Scheduler.RunOnce",
				"panic":    fmt.Sprint(r),
			}).Error("Recovered from panic in cycle")
		}
		s.settlePhase()
		s.cycles.Add(1)
		if report.Err != nil {
			s.cycleErrors.Add(1)
			s.consecutive.Add(1)
		} else {
			s.consecutive.Store(0)
		}
	}()

	s.phase.Store(int32(PhaseSampling))
	frame, ok := s.source.LatestFrame()
	if !ok {
		report.Err = ErrNoFrame
		return report
	}
	report.Analysis = s.extractor.Process(frame.Mono(), frame.SampleRate, frame.Timestamp)
	report.HasAnalysis = true

	s.phase.Store(int32(PhaseDeciding))
	report.Proposed = s.decider.Decide(report.Analysis, s.store.Get())

	s.phase.Store(int32(PhaseFiltering))
	report.Accepted = Filter(report.Proposed, s.cfg.MaxDecisionsPerCycle, s.cfg.MinConfidence)

	s.phase.Store(int32(PhaseDispatching))
	for _, d := range report.Accepted {
		if err := s.dispatcher.Execute(ctx, d); err != nil {
			s.dispatchErrors.Add(1)
			report.DispatchErrors = append(report.DispatchErrors, err)
			continue
		}
		s.dispatched.Add(1)
		report.Dispatched++
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":   "Scheduler.RunOnce",
			"rms":        report.Analysis.RMSEnergy,
			"centroid":   report.Analysis.SpectralCentroid,
			"rhythm":     report.Analysis.RhythmStrength,
			"proposed":   len(report.Proposed),
			"accepted":   len(report.Accepted),
			"dispatched": report.Dispatched,
		}).Debug("Cycle complete")
	}

	return report
}

// ApplyDirective interprets free text and dispatches the resulting decisions
// immediately, bypassing cadence and confidence gating. It waits for an
// in-flight cycle so relative changes build on the latest state. Text must be
// non-empty valid UTF-8 within limits.MaxDirectiveLength.
func (s *Scheduler) ApplyDirective(ctx context.Context, text string) ([]decision.Decision, error) {
	if err := limits.ValidateDirective(text); err != nil {
		return nil, err
	}

	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	ds := s.decider.InterpretDirective(text, s.store.Get())
	var errs []error
	for _, d := range ds {
		if err := s.dispatcher.Execute(ctx, d); err != nil {
			s.dispatchErrors.Add(1)
			errs = append(errs, err)
			continue
		}
		s.dispatched.Add(1)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Scheduler.ApplyDirective",
		"directive": text,
		"decisions": len(ds),
		"failed":    len(errs),
	}).Info("Directive applied")

	return ds, errors.Join(errs...)
}
