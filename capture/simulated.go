package capture

import (
	"math"
	"math/rand/v2"
	"time"
)

// Generator synthesizes plausible program material for the Simulated state:
// a tone that wanders between 110 and 880 Hz with its second harmonic, a slow
// swell in loudness and a little noise. Output is deterministic for a seed.
type Generator struct {
	sampleRate uint32
	channels   int
	rng        *rand.Rand

	freq     float64
	phase    float64
	lfoPhase float64
}

const (
	simMinFreq   = 110.0
	simMaxFreq   = 880.0
	simSwellHz   = 1.0 / 30.0
	simNoise     = 0.02
	simHarmonic  = 0.3
	simBaseLevel = 0.15
	simSwell     = 0.6
)

// NewGenerator creates a generator for the given format.
func NewGenerator(sampleRate uint32, channels int, seed uint64) *Generator {
	if channels < 1 {
		channels = 1
	}
	return &Generator{
		sampleRate: sampleRate,
		channels:   channels,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		freq:       220,
	}
}

// Next produces a frame of the requested number of sample frames.
func (g *Generator) Next(frames int, ts time.Time) AudioFrame {
	if frames < 0 {
		frames = 0
	}
	rate := float64(g.sampleRate)
	if rate <= 0 {
		rate = 44100
	}

	// Random walk in log-frequency, once per frame.
	g.freq *= math.Exp2(g.rng.NormFloat64() * 0.25)
	g.freq = math.Max(simMinFreq, math.Min(simMaxFreq, g.freq))

	samples := make([]float32, frames*g.channels)
	step := 2 * math.Pi * g.freq / rate
	lfoStep := 2 * math.Pi * simSwellHz / rate
	for i := 0; i < frames; i++ {
		level := simBaseLevel + simSwell*0.5*(1+math.Sin(g.lfoPhase))
		v := math.Sin(g.phase) + simHarmonic*math.Sin(2*g.phase)
		v = level*v/(1+simHarmonic) + simNoise*g.rng.NormFloat64()
		v = math.Max(-1, math.Min(1, v))

		for ch := 0; ch < g.channels; ch++ {
			samples[i*g.channels+ch] = float32(v)
		}

		g.phase = math.Mod(g.phase+step, 2*math.Pi)
		g.lfoPhase = math.Mod(g.lfoPhase+lfoStep, 2*math.Pi)
	}

	return AudioFrame{
		SampleRate: g.sampleRate,
		Channels:   g.channels,
		Samples:    samples,
		Timestamp:  ts,
	}
}
