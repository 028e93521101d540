// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package tagwire defines the generic, visitor-driven encoder/decoder
// protocol that every wire format in this module is built against. The
// protocol is deliberately abstract: scalars, length-prefixed bytes and
// strings, options, packed sequences, ordered sequences, key/value pairs,
// named structs, and tagged variants are all expressed the same way
// regardless of which concrete format (package wire, package value, or a
// future one) is driving the call.
//
// Go has neither associated types nor borrow checking, so two of the
// protocol's invariants that a systems language would enforce statically
// are enforced here by convention only; no format in this module checks
// them at run time:
//
//   - A sub-encoder (the value returned by EncodeSequence, EncodeMap, and
//     friends) exclusively owns the parent's Writer until it is finished;
//     callers must not interleave calls to the parent and a live child.
//   - Each item produced by a SequenceDecoder or PairsDecoder must be fully
//     consumed, or explicitly skipped, before the parent advances.
package tagwire

import "github.com/creachadair/tagwire/num"

// Encoder is the write side of the protocol: one call tree per value.
// Every method consumes the receiver, mirroring the linear-use discipline
// the original trait family expresses through ownership.
type Encoder interface {
	// Expecting describes what this encoder accepts, for error messages.
	Expecting() string

	EncodeUnit() error
	EncodeBool(value bool) error
	EncodeChar(value rune) error

	EncodeU8(value uint8) error
	EncodeU16(value uint16) error
	EncodeU32(value uint32) error
	EncodeU64(value uint64) error
	EncodeU128(value num.Uint128) error
	EncodeI8(value int8) error
	EncodeI16(value int16) error
	EncodeI32(value int32) error
	EncodeI64(value int64) error
	EncodeI128(value num.Int128) error
	EncodeUsize(value int) error
	EncodeIsize(value int) error
	EncodeF32(value float32) error
	EncodeF64(value float64) error

	// EncodeArray writes a fixed-size byte array. Semantically identical to
	// EncodeBytes; kept distinct so formats that know the length at compile
	// time can skip the length prefix (none of the formats in this module
	// do, but the hook exists for one that wants to).
	EncodeArray(array []byte) error

	EncodeBytes(data []byte) error
	// EncodeBytesVectored concatenates vectors logically under one length
	// prefix, in argument order.
	EncodeBytesVectored(vectors [][]byte) error
	EncodeString(s string) error

	// EncodePack begins a compact, untagged run of homogeneous or
	// heterogeneous items staged through a fixed-capacity buffer.
	EncodePack() (PackEncoder, error)

	EncodeSequence(length int) (SequenceEncoder, error)
	EncodeTuple(length int) (SequenceEncoder, error)
	EncodeMap(length int) (PairEncoder, error)
	EncodeStruct(length int) (PairEncoder, error)
	EncodeVariant() (VariantEncoder, error)

	// EncodeSome begins the payload of a present Option; EncodeNone writes
	// an absent one. On the wire both are indistinguishable from Unit and
	// an empty sequence — see Decoder.DecodeOption.
	EncodeSome() (Encoder, error)
	EncodeNone() error

	// EncodeUnitStruct behaves identically to EncodeSequence(0).
	EncodeUnitStruct() error
}

// SequenceEncoder produces the elements of a sequence or tuple.
type SequenceEncoder interface {
	// EncodeNext returns an Encoder for the next element.
	EncodeNext() (Encoder, error)
	// Finish completes the sequence. Some formats need no trailing action;
	// length-prefixed formats still expose Finish so callers have one
	// uniform shutdown sequence regardless of format.
	Finish() error
}

// PackEncoder is the SequenceEncoder used inside encode_pack: elements are
// written through an untagged storage codec into a fixed-capacity buffer,
// and the whole thing is emitted as one length-prefixed value on Finish.
type PackEncoder interface {
	// Next returns an Encoder for the next packed element.
	Next() (Encoder, error)
	// Finish flushes the staged buffer as a single length-prefixed value.
	Finish() error
}

// PairEncoder produces the key/value pairs of a map, or the field
// tag/value pairs of a struct.
type PairEncoder interface {
	// EncodeFirst returns an Encoder for the key (or field tag).
	EncodeFirst() (Encoder, error)
	// EncodeSecond returns an Encoder for the value.
	EncodeSecond() (Encoder, error)
	Finish() error
}

// VariantEncoder writes the (tag, body) pair of a tagged variant.
type VariantEncoder interface {
	EncodeTag() (Encoder, error)
	EncodeVariant() (Encoder, error)
	Finish() error
}

// Decoder is the read side of the protocol, mirroring Encoder.
type Decoder interface {
	Expecting() string

	// TypeHint reports a best-effort guess at the shape of the next value.
	// Self-describing formats (Value) return a precise hint; non
	// self-describing formats (the wire codec) return HintAny, and callers
	// that need to dispatch on shape (the Value decode path) must not be
	// used against them.
	TypeHint() (TypeHint, error)

	DecodeUnit() error
	DecodeBool() (bool, error)
	DecodeChar() (rune, error)

	DecodeU8() (uint8, error)
	DecodeU16() (uint16, error)
	DecodeU32() (uint32, error)
	DecodeU64() (uint64, error)
	DecodeU128() (num.Uint128, error)
	DecodeI8() (int8, error)
	DecodeI16() (int16, error)
	DecodeI32() (int32, error)
	DecodeI64() (int64, error)
	DecodeI128() (num.Int128, error)
	DecodeUsize() (int, error)
	DecodeIsize() (int, error)
	DecodeF32() (float32, error)
	DecodeF64() (float64, error)

	DecodeArray(n int) ([]byte, error)
	DecodeBytes(visitor BytesVisitor) (interface{}, error)
	DecodeString(visitor StringVisitor) (interface{}, error)

	// DecodeOption reports whether an Option is present. When it is, the
	// returned Decoder yields the payload; nil otherwise. A unit or an
	// empty sequence both decode as absent, by design (spec's Option/Unit
	// collision, preserved intentionally).
	DecodeOption() (Decoder, bool, error)

	DecodePack() (PackDecoder, error)
	DecodeSequence() (SequenceDecoder, error)
	DecodeTuple(length int) (SequenceDecoder, error)
	DecodeMap() (PairsDecoder, error)
	DecodeStruct(length int) (PairsDecoder, error)
	DecodeVariant() (VariantDecoder, error)

	// DecodeBuffer captures the current value for a second decode pass
	// without re-reading the underlying reader, mirroring the original
	// protocol's AsDecoder re-entrant buffering hook.
	DecodeBuffer() (Buffer, error)
}

// Buffer lets a previously captured value be decoded again.
type Buffer interface {
	AsDecoder() (Decoder, error)
}

// SequenceDecoder yields the elements of a decode_sequence/decode_tuple
// call. Pack elements are yielded by a PackDecoder instead.
type SequenceDecoder interface {
	// SizeHint reports a capacity hint, or -1 if unknown.
	SizeHint() int
	// Next returns the next element decoder, or nil when exhausted.
	Next() (Decoder, error)
}

// PackDecoder is the read counterpart of PackEncoder.
type PackDecoder interface {
	// Next returns the next packed element's decoder. It returns
	// ErrExpectedPackValue if the pack is exhausted, since a pack's
	// length is part of its schema, not signalled out of band.
	Next() (Decoder, error)
}

// PairsDecoder yields the entries of a decode_map/decode_struct call.
type PairsDecoder interface {
	SizeHint() int
	// Next returns the next pair decoder, or nil when exhausted.
	Next() (PairDecoder, error)
}

// PairDecoder decodes one key/value or field tag/value pair.
type PairDecoder interface {
	First() (Decoder, error)
	Second() (Decoder, error)
	// SkipSecond discards the value without decoding it and reports
	// success. Implementations that cannot random-skip MUST still advance
	// the underlying reader by decoding and discarding.
	SkipSecond() (bool, error)
}

// VariantDecoder decodes a (tag, body) pair.
type VariantDecoder interface {
	Tag() (Decoder, error)
	Variant() (Decoder, error)
	// SkipVariant discards the body without decoding it and reports
	// success, with the same advance-the-reader obligation as
	// PairDecoder.SkipSecond.
	SkipVariant() (bool, error)
	End() error
}

// BytesVisitor receives a decoded byte slice through the arm the active
// decoder can cheapest supply: a zero-copy borrow into the original input,
// an owned buffer the decoder has already materialized, or an ephemeral
// view the caller must copy. Unset arms fall back to Any, then to
// ErrBadVisitorType, matching spec §4.4's default dispatch chain.
type BytesVisitor struct {
	Expecting string
	Borrowed  func(data []byte) (interface{}, error)
	Owned     func(data []byte) (interface{}, error)
	Any       func(data []byte) (interface{}, error)
}

// VisitBorrowed dispatches a zero-copy slice borrowed from the input.
func (v BytesVisitor) VisitBorrowed(data []byte) (interface{}, error) {
	if v.Borrowed != nil {
		return v.Borrowed(data)
	}
	return v.VisitAny(data)
}

// VisitOwned dispatches a slice the decoder already owns outright.
func (v BytesVisitor) VisitOwned(data []byte) (interface{}, error) {
	if v.Owned != nil {
		return v.Owned(data)
	}
	return v.VisitAny(data)
}

// VisitAny dispatches an ephemeral slice the caller must copy if retained.
func (v BytesVisitor) VisitAny(data []byte) (interface{}, error) {
	if v.Any != nil {
		return v.Any(data)
	}
	return nil, Expected(ErrBadVisitorType, hintString(v.Expecting))
}

// StringVisitor is the string-valued counterpart of BytesVisitor.
type StringVisitor struct {
	Expecting string
	Borrowed  func(s string) (interface{}, error)
	Owned     func(s string) (interface{}, error)
	Any       func(s string) (interface{}, error)
}

func (v StringVisitor) VisitBorrowed(s string) (interface{}, error) {
	if v.Borrowed != nil {
		return v.Borrowed(s)
	}
	return v.VisitAny(s)
}

func (v StringVisitor) VisitOwned(s string) (interface{}, error) {
	if v.Owned != nil {
		return v.Owned(s)
	}
	return v.VisitAny(s)
}

func (v StringVisitor) VisitAny(s string) (interface{}, error) {
	if v.Any != nil {
		return v.Any(s)
	}
	return nil, Expected(ErrBadVisitorType, hintString(v.Expecting))
}

// NumberComponents covers the arbitrary-precision open door spec §4.4
// leaves for number visitors. No format in this module calls it; it exists
// so a future decimal or bignum format has somewhere to plug in without
// changing the Decoder interface.
type NumberComponents struct {
	MantissaLo num.Uint128
	MantissaHi num.Uint128
	Exponent   uint32
	Sign       uint32
}

type hintString string

func (h hintString) String() string { return string(h) }
