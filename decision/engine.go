package decision

import (
	"fmt"
	"math"
	"time"

	"github.com/opd-ai/sonicloop/analysis"
	"github.com/opd-ai/sonicloop/state"
	"github.com/sirupsen/logrus"
)

// Rule thresholds. These define observable behavior and are not tunable.
const (
	loudRMS        = 0.8
	quietRMS       = 0.3
	intensityCeil  = 8.0
	intensityFloor = 3.0
	intensityStep  = 1.0
	intensityConf  = 0.7

	brightCentroid = 3000.0
	darkCentroid   = 1000.0
	cutoffHighGate = 80.0
	cutoffLowGate  = 120.0
	cutoffStep     = 10.0
	cutoffMin      = 50.0
	cutoffMax      = 130.0
	cutoffConf     = 0.6
)

// Engine maps a feature snapshot and the current state to proposed changes.
// Decide has no side effects beyond the advisor's chooser.
type Engine struct {
	advisor *TheoryAdvisor
	now     func() time.Time
}

// NewEngine creates an engine. A nil advisor uses NewTheoryAdvisor(nil).
func NewEngine(advisor *TheoryAdvisor) *Engine {
	if advisor == nil {
		advisor = NewTheoryAdvisor(nil)
	}
	return &Engine{advisor: advisor, now: time.Now}
}

// SetClock replaces the decision timestamp source.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Decide evaluates every rule independently and returns the decisions that
// fire, in rule order: intensity, cutoff, key, scale.
func (e *Engine) Decide(a analysis.SpectralAnalysis, s state.MusicalState) []Decision {
	ts := e.now()
	var out []Decision

	switch {
	case a.RMSEnergy > loudRMS && s.Intensity < intensityCeil:
		out = append(out, Decision{
			Parameter:  state.ParamIntensity,
			Value:      state.Number(s.Intensity + intensityStep),
			Reason:     fmt.Sprintf("high energy (rms %.2f) supports more intensity", a.RMSEnergy),
			Confidence: intensityConf,
			Timestamp:  ts,
		})
	case a.RMSEnergy < quietRMS && s.Intensity > intensityFloor:
		out = append(out, Decision{
			Parameter:  state.ParamIntensity,
			Value:      state.Number(s.Intensity - intensityStep),
			Reason:     fmt.Sprintf("low energy (rms %.2f) calls for less intensity", a.RMSEnergy),
			Confidence: intensityConf,
			Timestamp:  ts,
		})
	}

	switch {
	case a.SpectralCentroid > brightCentroid && s.Cutoff > cutoffHighGate:
		out = append(out, Decision{
			Parameter:  state.ParamCutoff,
			Value:      state.Number(math.Max(s.Cutoff-cutoffStep, cutoffMin)),
			Reason:     fmt.Sprintf("bright spectrum (centroid %.0f Hz), closing filter", a.SpectralCentroid),
			Confidence: cutoffConf,
			Timestamp:  ts,
		})
	case a.SpectralCentroid < darkCentroid && s.Cutoff < cutoffLowGate:
		out = append(out, Decision{
			Parameter:  state.ParamCutoff,
			Value:      state.Number(math.Min(s.Cutoff+cutoffStep, cutoffMax)),
			Reason:     fmt.Sprintf("dark spectrum (centroid %.0f Hz), opening filter", a.SpectralCentroid),
			Confidence: cutoffConf,
			Timestamp:  ts,
		})
	}

	if key, reason, ok := e.advisor.SuggestKey(s); ok {
		out = append(out, Decision{
			Parameter:  state.ParamKey,
			Value:      state.Text(key.String()),
			Reason:     reason,
			Confidence: advisorConfidence,
			Timestamp:  ts,
		})
	}
	if scale, reason, ok := e.advisor.SuggestScale(s); ok {
		out = append(out, Decision{
			Parameter:  state.ParamScale,
			Value:      state.Text(scale.String()),
			Reason:     reason,
			Confidence: advisorConfidence,
			Timestamp:  ts,
		})
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":  "Engine.Decide",
			"rms":       a.RMSEnergy,
			"centroid":  a.SpectralCentroid,
			"decisions": len(out),
		}).Debug("Evaluated decision rules")
	}

	return out
}
