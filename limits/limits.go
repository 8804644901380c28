// Package limits provides centralized bounds for the sonicloop feedback loop.
// This ensures consistent validation across capture, analysis and the scheduler.
package limits

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MinBlockSize is the smallest capture block accepted (64 frames).
	MinBlockSize = 64

	// MaxBlockSize is the largest capture block accepted (16384 frames).
	MaxBlockSize = 16384

	// DefaultBlockSize is the capture block length used when none is configured.
	DefaultBlockSize = 2048

	// MaxRingCapacity bounds the number of blocks the capture ring may hold.
	MaxRingCapacity = 1024

	// DefaultRingCapacity is the number of recent blocks kept by the capture ring.
	DefaultRingCapacity = 100

	// DefaultDecisionHistory is the number of dispatched decisions kept for introspection.
	DefaultDecisionHistory = 50

	// DefaultAnalysisHistory is the number of feature snapshots kept for introspection.
	DefaultAnalysisHistory = 100

	// MaxHistory bounds any introspection history.
	MaxHistory = 10000

	// MinSampleRate and MaxSampleRate bound the session sample rate in Hz.
	MinSampleRate = 8000
	MaxSampleRate = 192000

	// MaxChannels bounds the number of interleaved capture channels.
	MaxChannels = 32

	// MaxDirectiveLength is the largest free-text directive accepted, in bytes.
	MaxDirectiveLength = 1024
)

var (
	// ErrOutOfRange indicates a numeric setting outside its permitted bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrDirectiveEmpty indicates an empty or whitespace-only directive.
	ErrDirectiveEmpty = errors.New("empty directive")

	// ErrDirectiveTooLong indicates a directive exceeding MaxDirectiveLength.
	ErrDirectiveTooLong = errors.New("directive too long")

	// ErrDirectiveEncoding indicates a directive that is not valid UTF-8.
	ErrDirectiveEncoding = errors.New("directive is not valid UTF-8")
)

// ValidateRange checks that value lies within [min, max].
// Returns an error with context naming the setting.
func ValidateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%w: %s %d not in [%d, %d]", ErrOutOfRange, name, value, min, max)
	}
	return nil
}

// ValidateBlockSize checks that the block size is a power of two within
// [MinBlockSize, MaxBlockSize].
func ValidateBlockSize(size int) error {
	if err := ValidateRange("block size", size, MinBlockSize, MaxBlockSize); err != nil {
		return err
	}
	if size&(size-1) != 0 {
		return fmt.Errorf("%w: block size %d is not a power of two", ErrOutOfRange, size)
	}
	return nil
}

// ValidateRingCapacity checks the number of blocks the capture ring may hold.
func ValidateRingCapacity(capacity int) error {
	return ValidateRange("ring capacity", capacity, 1, MaxRingCapacity)
}

// ValidateSampleRate checks the session sample rate.
func ValidateSampleRate(rate int) error {
	return ValidateRange("sample rate", rate, MinSampleRate, MaxSampleRate)
}

// ValidateChannels checks the interleaved channel count.
func ValidateChannels(channels int) error {
	return ValidateRange("channels", channels, 1, MaxChannels)
}

// ValidateHistory checks an introspection history size.
func ValidateHistory(name string, size int) error {
	return ValidateRange(name, size, 1, MaxHistory)
}

// ValidateDirective checks a free-text directive before interpretation.
// Directives must be non-empty UTF-8 no longer than MaxDirectiveLength bytes.
func ValidateDirective(text string) error {
	if len(text) > MaxDirectiveLength {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrDirectiveTooLong, len(text), MaxDirectiveLength)
	}
	if !utf8.ValidString(text) {
		return ErrDirectiveEncoding
	}
	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return nil
		}
	}
	return ErrDirectiveEmpty
}
