package rtpopus

import "errors"

// ErrBadTOC indicates an Opus packet whose table-of-contents byte cannot be
// interpreted.
var ErrBadTOC = errors.New("malformed Opus TOC")

// frameDurationMicros indexes the per-frame duration by TOC configuration
// number (RFC 6716 section 3.1).
var frameDurationMicros = [32]int{
	// SILK-only NB, MB, WB
	10000, 20000, 40000, 60000,
	10000, 20000, 40000, 60000,
	10000, 20000, 40000, 60000,
	// Hybrid SWB, FB
	10000, 20000,
	10000, 20000,
	// CELT-only NB, WB, SWB, FB
	2500, 5000, 10000, 20000,
	2500, 5000, 10000, 20000,
	2500, 5000, 10000, 20000,
	2500, 5000, 10000, 20000,
}

// packetSamples returns the number of samples per channel an Opus packet
// decodes to at sampleRate.
func packetSamples(packet []byte, sampleRate int) (int, error) {
	if len(packet) == 0 {
		return 0, ErrBadTOC
	}
	toc := packet[0]
	frames := 0
	switch toc & 0x03 {
	case 0:
		frames = 1
	case 1, 2:
		frames = 2
	case 3:
		if len(packet) < 2 {
			return 0, ErrBadTOC
		}
		frames = int(packet[1] & 0x3F)
	}
	if frames == 0 {
		return 0, ErrBadTOC
	}
	duration := frameDurationMicros[toc>>3] * frames
	if duration > 120000 {
		return 0, ErrBadTOC
	}
	return duration * sampleRate / 1000000, nil
}
