package capture

import "time"

// AudioFrame is an immutable block of interleaved float32 samples.
//
// SampleRate and Channels are fixed for a session. Timestamp is the capture
// time of the newest block contributing to the frame.
type AudioFrame struct {
	SampleRate uint32
	Channels   int
	Samples    []float32
	Timestamp  time.Time
}

// Frames returns the number of sample frames (samples per channel).
func (f AudioFrame) Frames() int {
	if f.Channels <= 0 {
		return 0
	}
	return len(f.Samples) / f.Channels
}

// Duration returns the playback length of the frame.
func (f AudioFrame) Duration() time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	return time.Duration(f.Frames()) * time.Second / time.Duration(f.SampleRate)
}

// Mono averages the interleaved channels into a new mono block.
func (f AudioFrame) Mono() []float64 {
	channels := f.Channels
	if channels <= 0 {
		channels = 1
	}
	frames := len(f.Samples) / channels
	out := make([]float64, frames)
	scale := 1.0 / float64(channels)
	for i := 0; i < frames; i++ {
		var sum float64
		base := i * channels
		for ch := 0; ch < channels; ch++ {
			sum += float64(f.Samples[base+ch])
		}
		out[i] = sum * scale
	}
	return out
}
