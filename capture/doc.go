// Package capture acquires raw audio for the feedback loop.
//
// # Architecture
//
//	Driver callback (real-time) ──copy──▶ RingBuffer ──Drain──▶ LatestFrame (scheduler)
//
// A Driver enumerates input devices and opens a stream that calls back with
// interleaved float32 buffers. The callback only copies into a RingBuffer of
// preallocated slots; when the ring is full the oldest block is evicted, so
// the driver is never blocked by a slow consumer.
//
// Source runs the lifecycle:
//
//	Uninitialized → Discovering → Streaming | Simulated → Stopped
//
// Device selection prefers a case-insensitive substring match on a
// configured name (typically a virtual routing device such as "BlackHole"),
// then the default input, then the first device with input channels.
//
// If no device can be opened the failure is logged once and the Source
// enters Simulated: LatestFrame then synthesizes a plausible frame from a
// seeded Generator, so analysis and decisions continue without audio.
//
// # Drivers
//
//   - capture/malgodrv: local devices through miniaudio (github.com/gen2brain/malgo); cgo builds only
//   - capture/rtpopus: RTP/Opus audio received over UDP (github.com/pion/rtp, github.com/pion/opus)
//   - NullDriver: no devices; always Simulated
//
// Example:
//
//	src := capture.NewSource(malgodrv.New(), capture.DefaultConfig())
//	if err := src.Start(ctx); err != nil {
//	    return err
//	}
//	defer src.Stop()
//
//	if frame, ok := src.LatestFrame(); ok {
//	    mono := frame.Mono()
//	    _ = mono
//	}
package capture
