// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagwire

import (
	"errors"
	"fmt"
)

// The error kinds a Decoder can report, per spec §7. Each is a sentinel
// wrapped with an "expecting" description naming what was asked for and
// what the decoder actually holds, so both errors.Is and a readable
// message chain work, the way creachadair/binpack wraps its own errors.
var (
	ErrExpectedUnit      = errors.New("tagwire: expected unit")
	ErrExpectedBool      = errors.New("tagwire: expected bool")
	ErrExpectedChar      = errors.New("tagwire: expected char")
	ErrExpectedNumber    = errors.New("tagwire: expected number")
	ErrExpectedBytes     = errors.New("tagwire: expected bytes")
	ErrExpectedString    = errors.New("tagwire: expected string")
	ErrExpectedSequence  = errors.New("tagwire: expected sequence")
	ErrExpectedMap       = errors.New("tagwire: expected map")
	ErrExpectedVariant   = errors.New("tagwire: expected variant")
	ErrExpectedPack      = errors.New("tagwire: expected pack")
	ErrExpectedPackValue = errors.New("tagwire: pack ran out of elements")

	ErrInvalidType      = errors.New("tagwire: invalid type for decoder")
	ErrArrayOutOfBounds = errors.New("tagwire: array length mismatch")
	ErrIntegerOverflow  = errors.New("tagwire: integer overflow")
	ErrOverlongEncoding = errors.New("tagwire: overlong encoding")
	ErrInvalidUTF8      = errors.New("tagwire: invalid utf-8")
	ErrInvalidChar      = errors.New("tagwire: invalid unicode scalar value")
	ErrBadVisitorType   = errors.New("tagwire: visitor does not accept this representation")
)

// ExpectedError wraps one of the Err* sentinels above with the hint that
// was actually offered by the decoder, so the message names both sides of
// the mismatch.
type ExpectedError struct {
	Err  error
	Hint fmt.Stringer
}

func (e *ExpectedError) Error() string {
	return fmt.Sprintf("%s: got %s", e.Err, e.Hint)
}

func (e *ExpectedError) Unwrap() error { return e.Err }

// Expected constructs an ExpectedError pairing sentinel err with the hint
// the active decoder reported.
func Expected(err error, hint fmt.Stringer) error {
	return &ExpectedError{Err: err, Hint: hint}
}

// CustomError wraps a user-supplied message from a visitor or a reflective
// bind validator, corresponding to the Custom(message) kind in spec §7.
type CustomError struct {
	Message string
}

func (e *CustomError) Error() string { return e.Message }

// Custom constructs a CustomError with the given formatted message.
func Custom(format string, args ...interface{}) error {
	return &CustomError{Message: fmt.Sprintf(format, args...)}
}
