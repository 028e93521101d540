// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package intcodec implements the pluggable integer and length encoding
// strategies the wire and storage codecs use for any payload that does not
// fit in a Tag's 5-bit data field: fixed-width little-endian, and a 7-bit
// continuation ("variable") scheme, both available in typed (tag-prefixed,
// for type-erased decoding) and untyped (bare payload, for packed runs)
// forms.
package intcodec

import (
	"errors"

	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/tag"
	"github.com/creachadair/tagwire/wireio"
)

// ErrOverlong is returned when a variable-length integer uses more bytes
// than its width permits.
var ErrOverlong = errors.New("intcodec: overlong variable-length encoding")

// ErrIntegerOverflow is returned when a decoded value does not fit the
// requested width, or a wire usize exceeds the host usize range.
var ErrIntegerOverflow = errors.New("intcodec: integer overflow")

// Unsigned is the set of unsigned integer widths the codec operates over.
type Unsigned interface {
	~uint16 | ~uint32 | ~uint64
}

// Codec is a strategy for encoding unsigned integers, their zig-zag signed
// counterparts, and usize-typed lengths.
type Codec interface {
	// EncodeUnsigned writes a type-erased (tag-prefixed) unsigned value.
	EncodeUnsigned(w wireio.Writer, width int, value uint64) error
	// DecodeUnsigned reads a value previously written by EncodeUnsigned,
	// returning an error if it overflows the requested width.
	DecodeUnsigned(r wireio.Reader, width int) (uint64, error)

	// EncodeUntypedUnsigned writes the bare payload, no tag prefix; used
	// inside pack bodies where the schema is already known.
	EncodeUntypedUnsigned(w wireio.Writer, width int, value uint64) error
	// DecodeUntypedUnsigned is the untyped counterpart of DecodeUnsigned.
	DecodeUntypedUnsigned(r wireio.Reader, width int) (uint64, error)

	// EncodeUsize writes a length prefix (never tag-prefixed; lengths
	// always follow a Tag that already announced a continuation).
	EncodeUsize(w wireio.Writer, value int) error
	// DecodeUsize reads a length prefix written by EncodeUsize.
	DecodeUsize(r wireio.Reader) (int, error)

	// EncodeTypedUsize writes a standalone usize scalar, tag-prefixed so a
	// type-erased decoder can recognize it; used when usize is encoded
	// directly rather than as an implicit length following a Tag.
	EncodeTypedUsize(w wireio.Writer, value int) error
	// DecodeTypedUsize is the counterpart of EncodeTypedUsize. Per spec §6,
	// usize is always a 64-bit unsigned value on the wire regardless of
	// host width; values that exceed the host int range are rejected.
	DecodeTypedUsize(r wireio.Reader) (int, error)

	// EncodeUint128 / DecodeUint128 handle the one width Go has no native
	// integer type for.
	EncodeUint128(w wireio.Writer, value num.Uint128, typed bool) error
	DecodeUint128(r wireio.Reader, typed bool) (num.Uint128, error)
}

// EncodeSigned zig-zag encodes value and writes it with c at the given
// width, following the same "(n<<1) ^ (n>>w-1)" scheme binpack.PackInt64
// uses for its own 64-bit signed values.
func EncodeSigned(c Codec, w wireio.Writer, width int, value int64) error {
	return c.EncodeUnsigned(w, width, zigzag(value))
}

// DecodeSigned inverts EncodeSigned.
func DecodeSigned(c Codec, r wireio.Reader, width int) (int64, error) {
	z, err := c.DecodeUnsigned(r, width)
	if err != nil {
		return 0, err
	}
	return unzigzag(z), nil
}

// EncodeUntypedSigned is the untyped counterpart of EncodeSigned.
func EncodeUntypedSigned(c Codec, w wireio.Writer, width int, value int64) error {
	return c.EncodeUntypedUnsigned(w, width, zigzag(value))
}

// DecodeUntypedSigned is the untyped counterpart of DecodeSigned.
func DecodeUntypedSigned(c Codec, r wireio.Reader, width int) (int64, error) {
	z, err := c.DecodeUntypedUnsigned(r, width)
	if err != nil {
		return 0, err
	}
	return unzigzag(z), nil
}

func zigzag(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

func unzigzag(z uint64) int64 {
	mask := uint64(0) - (z & 1)
	return int64(mask ^ (z >> 1))
}

// EncodeInt128 zig-zags a 128-bit signed value before handing it to the
// Uint128 path.
func EncodeInt128(c Codec, w wireio.Writer, value num.Int128, typed bool) error {
	return c.EncodeUint128(w, value.ZigZag(), typed)
}

// DecodeInt128 inverts EncodeInt128.
func DecodeInt128(c Codec, r wireio.Reader, typed bool) (num.Int128, error) {
	z, err := c.DecodeUint128(r, typed)
	if err != nil {
		return num.Int128{}, err
	}
	return num.UnZigZagInt128(z), nil
}

// continuationTag returns the Tag(Continuation, widthBytes) marker a typed
// integer encoding prepends so a type-erased decoder can recover the width
// of the value that follows. width is the value's bit width (16, 32, 64, or
// 128); its byte equivalent (2, 4, 8, or 16) always fits the 5-bit data
// field.
func continuationTag(width int) tag.Tag {
	return tag.New(tag.Continuation, byte(width/8))
}
