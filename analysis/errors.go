package analysis

import (
	"errors"
	"fmt"
)

// ErrDegenerateInput indicates a block from which no meaningful features can
// be measured. Analysis still returns safe defaults for such blocks.
var ErrDegenerateInput = errors.New("degenerate audio input")

func degenerate(n int, sampleRate uint32, reason string) error {
	return fmt.Errorf("%w: %s (samples=%d, sample_rate=%d)", ErrDegenerateInput, reason, n, sampleRate)
}
