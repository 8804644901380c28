package analysis

import "time"

const (
	// HarmonicCount is the number of integer multiples of the dominant
	// frequency sampled into HarmonicContent.
	HarmonicCount = 5

	// RolloffFraction is the share of cumulative magnitude that defines
	// the spectral rolloff frequency.
	RolloffFraction = 0.85

	// FallbackDominantFrequency is reported when the block carries no
	// measurable spectral magnitude.
	FallbackDominantFrequency = 500.0

	// PlaceholderTempo is the constant tempo estimate. No onset tracker is
	// implemented; the value is present and finite but not a measurement.
	PlaceholderTempo = 120.0

	// epsilon floors denominators (total magnitude, mean envelope).
	epsilon = 1e-10

	// silenceThreshold is the total magnitude below which the spectrum is
	// treated as empty for dominant-frequency selection.
	silenceThreshold = 1e-6
)

// SpectralAnalysis is the feature snapshot computed from one audio block.
// All fields are finite.
type SpectralAnalysis struct {
	// RMSEnergy is the root-mean-square amplitude, a loudness proxy.
	RMSEnergy float64 `json:"rms_energy"`
	// SpectralCentroid is the magnitude-weighted mean frequency in Hz.
	SpectralCentroid float64 `json:"spectral_centroid"`
	// SpectralRolloff is the frequency in Hz below which 85% of the
	// cumulative magnitude lies.
	SpectralRolloff float64 `json:"spectral_rolloff"`
	// ZeroCrossingRate is the sign-change density in [0, 1].
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
	// DominantFrequency is the strongest non-DC bin frequency in Hz.
	DominantFrequency float64 `json:"dominant_frequency"`
	// HarmonicContent holds magnitudes at 1..5 times DominantFrequency.
	HarmonicContent [HarmonicCount]float64 `json:"harmonic_content"`
	// RhythmStrength is the normalized variability of the amplitude
	// envelope's first difference, clamped to [0, 1].
	RhythmStrength float64 `json:"rhythm_strength"`
	// TempoEstimate is PlaceholderTempo.
	TempoEstimate float64 `json:"tempo_estimate"`
	// Timestamp is the capture time of the source block.
	Timestamp time.Time `json:"timestamp"`
}

// Silent returns the safe-default analysis used for degenerate input.
func Silent(ts time.Time) SpectralAnalysis {
	return SpectralAnalysis{
		DominantFrequency: FallbackDominantFrequency,
		TempoEstimate:     PlaceholderTempo,
		Timestamp:         ts,
	}
}
