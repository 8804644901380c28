package rtpopus

import "github.com/opd-ai/sonicloop/capture"

// Reblocker turns decoded PCM of any rate and channel count into fixed-size
// interleaved float32 blocks at the stream's format. Rate conversion is
// linear interpolation carried across calls.
type Reblocker struct {
	blockFrames int
	channels    int
	outRate     uint32
	emit        capture.DataCallback

	pending []float32
	frame   []float32 // scratch: one input frame after channel mapping

	// resampler state
	inRate uint32
	pos    float64   // next output position in input frames, relative to the current call
	prev   []float32 // last input frame of the previous call
}

// NewReblocker creates a reblocker emitting blocks of blockFrames frames with
// channels interleaved channels at outRate.
func NewReblocker(blockFrames, channels int, outRate uint32, emit capture.DataCallback) *Reblocker {
	if blockFrames < 1 {
		blockFrames = 1
	}
	if channels < 1 {
		channels = 1
	}
	return &Reblocker{
		blockFrames: blockFrames,
		channels:    channels,
		outRate:     outRate,
		emit:        emit,
		pending:     make([]float32, 0, 2*blockFrames*channels),
		frame:       make([]float32, channels),
	}
}

// Write queues pcm (interleaved with inChannels channels at inRate) and emits
// every complete block.
func (r *Reblocker) Write(pcm []int16, inChannels int, inRate uint32) {
	if inChannels < 1 || len(pcm) < inChannels {
		return
	}
	frames := len(pcm) / inChannels

	if inRate == 0 || inRate == r.outRate || r.outRate == 0 {
		for i := 0; i < frames; i++ {
			r.pending = append(r.pending, r.mapFrame(pcm[i*inChannels:(i+1)*inChannels])...)
		}
		r.flush()
		return
	}

	if inRate != r.inRate || r.prev == nil {
		r.inRate = inRate
		r.pos = 0
		r.prev = append(r.prev[:0], r.mapFrame(pcm[:inChannels])...)
	}

	step := float64(inRate) / float64(r.outRate)
	cur := make([]float32, r.channels)
	t := r.pos
	for t < float64(frames-1) {
		i := int(t)
		if t < 0 {
			i = -1
		}
		frac := float32(t - float64(i))

		var a []float32
		if i < 0 {
			a = r.prev
		} else {
			a = append(cur[:0], r.mapFrame(pcm[i*inChannels:(i+1)*inChannels])...)
		}
		b := r.mapFrame(pcm[(i+1)*inChannels : (i+2)*inChannels])
		for ch := 0; ch < r.channels; ch++ {
			r.pending = append(r.pending, a[ch]+(b[ch]-a[ch])*frac)
		}
		t += step
	}
	r.pos = t - float64(frames)
	r.prev = append(r.prev[:0], r.mapFrame(pcm[(frames-1)*inChannels:frames*inChannels])...)
	r.flush()
}

// mapFrame converts one input frame to the output channel layout. Downmixing
// averages; upmixing repeats the last input channel. The result aliases
// r.frame.
func (r *Reblocker) mapFrame(in []int16) []float32 {
	const scale = 1.0 / 32768.0
	if len(in) == r.channels {
		for ch, v := range in {
			r.frame[ch] = float32(v) * scale
		}
		return r.frame
	}
	if r.channels == 1 {
		var sum float32
		for _, v := range in {
			sum += float32(v) * scale
		}
		r.frame[0] = sum / float32(len(in))
		return r.frame
	}
	for ch := 0; ch < r.channels; ch++ {
		src := ch
		if src >= len(in) {
			src = len(in) - 1
		}
		r.frame[ch] = float32(in[src]) * scale
	}
	return r.frame
}

func (r *Reblocker) flush() {
	size := r.blockFrames * r.channels
	for len(r.pending) >= size {
		if r.emit != nil {
			r.emit(r.pending[:size])
		}
		r.pending = append(r.pending[:0], r.pending[size:]...)
	}
}

// Pending returns the number of buffered samples not yet emitted.
func (r *Reblocker) Pending() int {
	return len(r.pending)
}
