// Package dispatch applies accepted decisions to the musical state and
// announces them to the synthesis engine.
//
// Each Execute is three steps: Store.Apply (validate and clamp), append to
// the decision history, then Sink.Send with the value actually stored. A
// store rejection stops before sending; a send failure is counted. Neither
// is fatal to the caller's loop.
//
// Sinks:
//
//   - OSCSink: "/<parameter>" messages over UDP (github.com/hypebeast/go-osc)
//   - MIDISink: Control Change mirror (gitlab.com/gomidi/midi/v2)
//   - MultiSink: fan-out to several sinks
package dispatch
