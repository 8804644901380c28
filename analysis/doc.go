// Package analysis extracts perceptual features from audio blocks.
//
// Analyze is a pure function from a mono block and its sample rate to a
// SpectralAnalysis:
//
//	RMS → zero-crossing rate → |FFT| → centroid → 85% rolloff →
//	dominant bin (DC excluded) → first five harmonics → envelope rhythm
//
// The magnitude spectrum comes from github.com/mjibson/go-dsp/fft, which
// accepts any block length. Bins are spaced sampleRate/N Hz apart.
//
// Every denominator is floored, so silent or malformed blocks yield the
// Silent defaults (zero energy, centroid and rolloff, 500 Hz dominant
// frequency) instead of NaN. TempoEstimate is a constant placeholder; no
// onset tracking is performed.
//
// Extractor wraps Analyze for the feedback loop, stamping each result with
// the capture time and keeping a bounded History for introspection:
//
//	ex := analysis.NewExtractor(100)
//	features := ex.Process(frame.Mono(), frame.SampleRate, frame.Timestamp)
package analysis
