package analysis

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"
	"github.com/sirupsen/logrus"
)

// Analyze computes the feature snapshot of a mono block sampled at sampleRate.
//
// It is a pure function of its input. Non-finite samples are treated as
// silence, and empty or silent blocks produce Silent rather than NaN or Inf.
// The returned Timestamp is zero; Extractor stamps it with the capture time.
func Analyze(samples []float64, sampleRate uint32) SpectralAnalysis {
	a, _ := AnalyzeChecked(samples, sampleRate)
	return a
}

// AnalyzeChecked is Analyze that also reports degenerate input. The analysis
// is always usable; err wraps ErrDegenerateInput when the block was empty,
// too short, had a zero sample rate or carried no energy.
func AnalyzeChecked(samples []float64, sampleRate uint32) (SpectralAnalysis, error) {
	n := len(samples)
	if n < 2 || sampleRate == 0 {
		return Silent(time.Time{}), degenerate(n, sampleRate, "block too short or sample rate zero")
	}

	x := sanitize(samples)

	result := SpectralAnalysis{
		RMSEnergy:        rootMeanSquare(x),
		ZeroCrossingRate: zeroCrossingRate(x),
		RhythmStrength:   rhythmStrength(x),
		TempoEstimate:    PlaceholderTempo,
	}

	mags := magnitudeSpectrum(x)
	binWidth := float64(sampleRate) / float64(n)

	var total, weighted float64
	for k, m := range mags {
		total += m
		weighted += float64(k) * binWidth * m
	}

	result.SpectralCentroid = weighted / math.Max(total, epsilon)
	result.SpectralRolloff = rolloff(mags, total, binWidth)
	result.DominantFrequency = dominantFrequency(mags, total, binWidth)
	result.HarmonicContent = harmonicContent(mags, result.DominantFrequency, binWidth)

	if result.RMSEnergy == 0 {
		return result, degenerate(n, sampleRate, "block carries no energy")
	}
	return result, nil
}

// sanitize copies samples, replacing NaN and Inf with zero.
func sanitize(samples []float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		out[i] = s
	}
	return out
}

func rootMeanSquare(x []float64) float64 {
	var sum float64
	for _, s := range x {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(x)))
}

// zeroCrossingRate sums |sign(x[i]) - sign(x[i-1])| and divides by 2(N-1), so
// a full polarity flip counts once and a touch of zero counts half.
func zeroCrossingRate(x []float64) float64 {
	var changes float64
	prev := sign(x[0])
	for _, s := range x[1:] {
		cur := sign(s)
		changes += math.Abs(cur - prev)
		prev = cur
	}
	return changes / (2 * float64(len(x)-1))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// magnitudeSpectrum returns |X[k]| for k in [0, N/2] of the real input.
func magnitudeSpectrum(x []float64) []float64 {
	spectrum := fft.FFTReal(x)
	half := len(x)/2 + 1
	mags := make([]float64, half)
	for k := 0; k < half; k++ {
		m := cmplx.Abs(spectrum[k])
		if math.IsNaN(m) || math.IsInf(m, 0) {
			m = 0
		}
		mags[k] = m
	}
	return mags
}

func rolloff(mags []float64, total, binWidth float64) float64 {
	if total < epsilon {
		return 0
	}
	target := RolloffFraction * total
	var cumulative float64
	for k, m := range mags {
		cumulative += m
		if cumulative >= target {
			return float64(k) * binWidth
		}
	}
	return float64(len(mags)-1) * binWidth
}

func dominantFrequency(mags []float64, total, binWidth float64) float64 {
	if total < silenceThreshold || len(mags) < 2 {
		return FallbackDominantFrequency
	}
	peak := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[peak] {
			peak = k
		}
	}
	return float64(peak) * binWidth
}

func harmonicContent(mags []float64, dominant, binWidth float64) [HarmonicCount]float64 {
	var out [HarmonicCount]float64
	for h := 1; h <= HarmonicCount; h++ {
		k := int(math.Round(dominant * float64(h) / binWidth))
		if k >= 0 && k < len(mags) {
			out[h-1] = mags[k]
		}
	}
	return out
}

// rhythmStrength is stddev(diff(|x|)) / (mean(|x|) + epsilon), clamped to [0, 1].
func rhythmStrength(x []float64) float64 {
	var envMean float64
	for _, s := range x {
		envMean += math.Abs(s)
	}
	envMean /= float64(len(x))

	diffs := len(x) - 1
	var diffMean float64
	for i := 1; i < len(x); i++ {
		diffMean += math.Abs(x[i]) - math.Abs(x[i-1])
	}
	diffMean /= float64(diffs)

	var variance float64
	for i := 1; i < len(x); i++ {
		d := math.Abs(x[i]) - math.Abs(x[i-1]) - diffMean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(diffs))

	return clamp(std/(envMean+epsilon), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Extractor applies Analyze to captured blocks, stamps each result with the
// capture time and records it in a bounded History.
type Extractor struct {
	history *History
}

// NewExtractor creates an extractor keeping the last historySize analyses.
func NewExtractor(historySize int) *Extractor {
	return &Extractor{history: NewHistory(historySize)}
}

// Process analyzes one mono block and records the result.
func (e *Extractor) Process(samples []float64, sampleRate uint32, captured time.Time) SpectralAnalysis {
	a, err := AnalyzeChecked(samples, sampleRate)
	a.Timestamp = captured
	if err != nil && logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":    "Extractor.Process",
			"samples":     len(samples),
			"sample_rate": sampleRate,
			"error":       err.Error(),
		}).Debug("Degenerate block, using safe defaults")
	}
	e.history.Append(a)
	return a
}

// History returns the extractor's analysis history.
func (e *Extractor) History() *History {
	return e.history
}
