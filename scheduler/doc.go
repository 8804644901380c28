// Package scheduler drives the feedback loop: every period it samples the
// newest audio, extracts features, asks the decision engine for proposals,
// gates them and dispatches the survivors.
//
// Gating takes the first MaxDecisionsPerCycle proposals in the order the
// engine returned them, then drops any whose confidence is not strictly
// above MinConfidence. With the defaults at most two decisions per cycle are
// dispatched, none at or below 0.6.
//
// A cycle that finds no audio, or panics, is counted and followed by the
// longer BackoffPeriod instead of Period. Dispatch failures are counted per
// decision but do not fail the cycle. Nothing here stops the loop except
// Stop, which lets the current cycle complete before stopping capture.
//
// Directives (ApplyDirective) bypass the cadence: they are interpreted and
// dispatched synchronously on the caller's goroutine.
package scheduler
