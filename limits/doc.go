// Package limits provides centralized size constants and validation functions
// for sonicloop. This package ensures consistent bound enforcement across the
// capture, analysis and scheduling components.
//
// # Bounds
//
//   - Block size (64 to 16384 frames, power of two): the length of each buffer
//     delivered by a capture driver. Powers of two keep the FFT on its fast path.
//
//   - Ring capacity (1 to 1024 blocks): how many recent blocks the capture ring
//     retains before evicting the oldest.
//
//   - History sizes: decision and analysis histories used for introspection.
//
//   - Directive length (1024 bytes): the largest free-text intent accepted.
//
// # Validation Functions
//
// Each validation function returns an error wrapping a package sentinel:
//
//	if err := limits.ValidateBlockSize(cfg.BlockSize); err != nil {
//	    // errors.Is(err, limits.ErrOutOfRange)
//	}
//
//	if err := limits.ValidateDirective(text); err != nil {
//	    // ErrDirectiveEmpty, ErrDirectiveTooLong or ErrDirectiveEncoding
//	}
package limits
