// Package sonicloop listens to an audio signal and steers a downstream sound
// generator from what it hears.
//
// The loop closes sense, decide and act:
//
//	capture.Source ─▶ analysis.Extractor ─▶ decision.Engine ─▶ scheduler gate ─▶ dispatch.Dispatcher
//	      ▲                                                                          │
//	      └────────────── audio from the generator            state.Store ◀──────────┤
//	                                                         OSC / MIDI ◀─────────────┘
//
// Every period (2 s by default) the scheduler takes the newest captured
// audio, extracts spectral features, asks the engine for proposals and
// dispatches at most two whose confidence exceeds 0.6. Dispatched values are
// clamped into the musical state and sent to the synthesis engine as OSC
// messages "/<parameter>".
//
// Free-text directives ("faster", "more ambient") bypass the cadence and
// apply immediately through Loop.ApplyDirective.
//
// # Getting Started
//
//	cfg := config.Default()
//	cfg.Capture.Backend = config.BackendSimulated
//
//	loop, err := sonicloop.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := loop.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer loop.Stop()
//
//	loop.ApplyDirective(ctx, "a bit faster and brighter")
//	fmt.Printf("%+v\n", loop.Snapshot().State)
//
// # Capture backends
//
// The "device" backend opens a local input through miniaudio, preferring a
// device whose name contains capture.device_name (a loopback device such as
// BlackHole routes the generator's output back in). The "rtp" backend
// receives RTP/Opus over UDP. When no device can be opened the loop keeps
// running on simulated audio.
package sonicloop
