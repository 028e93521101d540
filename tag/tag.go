// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package tag implements the one-byte type discriminator used by the wire
// and storage codecs.
//
// A Tag packs a 3-bit Kind and a 5-bit data field into a single byte:
//
//	+-+-+-+-+-+-+-+-+
//	|k|k|k|d|d|d|d|d|
//	+-+-+-+-+-+-+-+-+
//
// The data field either embeds a small value or length directly (0..30), or
// carries the reserved sentinel 31, meaning "the real value or length
// follows using the codec configured for this message".
package tag

import "fmt"

// Kind identifies the broad shape of the value a Tag introduces.
type Kind byte

// The four kinds used by the wire format. Values 4-7 are reserved.
const (
	Byte         Kind = 0 // scalar that fits in a single byte
	Prefix       Kind = 1 // length-prefixed bytes or string
	Continuation Kind = 2 // a number whose payload follows
	Sequence     Kind = 3 // ordered items, options, and variants
)

func (k Kind) String() string {
	switch k {
	case Byte:
		return "Byte"
	case Prefix:
		return "Prefix"
	case Continuation:
		return "Continuation"
	case Sequence:
		return "Sequence"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// Max is the largest value that can be embedded in the data field.
const Max = 30

// Sentinel is the reserved data value signalling a continuation payload.
const Sentinel = 31

// Tag is a single wire-format discriminator byte.
type Tag byte

// New constructs a Tag from a kind and a data field. It panics if data
// exceeds the 5 bits available to it; callers that need to embed 0..30 or
// signal a continuation should use WithLen or WithByte instead.
func New(kind Kind, data byte) Tag {
	if data > Sentinel {
		panic(fmt.Sprintf("tag: data %d out of range", data))
	}
	return Tag(byte(kind)<<5 | data)
}

// WithLen returns a Tag for kind embedding n if n <= Max, and reports
// whether the length was embedded. If n > Max, the returned Tag carries the
// continuation sentinel and the caller must follow it with n encoded via
// the configured length codec.
func WithLen(kind Kind, n int) (Tag, bool) {
	if n >= 0 && n <= Max {
		return New(kind, byte(n)), true
	}
	return New(kind, Sentinel), false
}

// WithByte returns a Tag for kind embedding v if v <= Max, and reports
// whether the value was embedded. If v > Max, the returned Tag carries the
// continuation sentinel and the caller must follow it with the raw byte v.
func WithByte(kind Kind, v byte) (Tag, bool) {
	if v <= Max {
		return New(kind, v), true
	}
	return New(kind, Sentinel), false
}

// Byte returns the wire encoding of t.
func (t Tag) Byte() byte { return byte(t) }

// Kind returns the kind field of t.
func (t Tag) Kind() Kind { return Kind(byte(t) >> 5) }

// Data returns the data field of t.
func (t Tag) Data() byte { return byte(t) & 0x1f }

// IsContinuation reports whether t's data field is the reserved sentinel,
// meaning the real value or length follows in the configured codec.
func (t Tag) IsContinuation() bool { return t.Data() == Sentinel }

// Parse decodes a raw byte into a Tag.
func Parse(b byte) Tag { return Tag(b) }

func (t Tag) String() string {
	if t.IsContinuation() {
		return fmt.Sprintf("%s(continuation)", t.Kind())
	}
	return fmt.Sprintf("%s(%d)", t.Kind(), t.Data())
}
