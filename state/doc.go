// Package state holds the musical parameters that the feedback loop reads and
// mutates.
//
// MusicalState is a plain value type. The Store owns the single live copy and
// is the only mutation path:
//
//	store := state.NewStore()
//	snapshot, err := store.Apply(state.ParamCutoff, state.Number(9999))
//	// snapshot.Cutoff == 130, the documented maximum
//
// Parameters form a closed set. Numeric parameters clamp to their range;
// key and scale accept only their enumerated names and otherwise fail with
// ErrInvalidValue. Unknown names passed to ParseParameter or ApplyNamed fail
// with ErrUnknownParameter.
package state
