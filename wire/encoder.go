// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package wire

import (
	"fmt"
	"math"

	"github.com/creachadair/tagwire"
	"github.com/creachadair/tagwire/intcodec"
	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/tag"
	"github.com/creachadair/tagwire/wireio"
)

// Encoder is the wire format's implementation of tagwire.Encoder. It is
// consumed by every method: after any Encode* call the Encoder must not be
// reused, matching the linear-use discipline the protocol documents.
type Encoder struct {
	w   wireio.Writer
	cfg Config
}

// NewEncoder constructs an Encoder writing to w under cfg.
func NewEncoder(w wireio.Writer, cfg Config) *Encoder {
	return &Encoder{w: w, cfg: cfg}
}

var _ tagwire.Encoder = (*Encoder)(nil)

func (e *Encoder) Expecting() string { return "a type supported by the wire encoder" }

func (e *Encoder) writeTag(t tag.Tag) error { return e.w.WriteByte(t.Byte()) }

func (e *Encoder) EncodeUnit() error {
	return e.writeTag(tag.New(tag.Sequence, 0))
}

func (e *Encoder) EncodeUnitStruct() error { return e.EncodeUnit() }

func (e *Encoder) EncodeBool(value bool) error {
	var v byte
	if value {
		v = 1
	}
	return e.writeTag(tag.New(tag.Byte, v))
}

func (e *Encoder) EncodeChar(value rune) error { return e.EncodeU32(uint32(value)) }

func (e *Encoder) EncodeU8(value uint8) error {
	t, embedded := tag.WithByte(tag.Byte, value)
	if err := e.writeTag(t); err != nil {
		return err
	}
	if !embedded {
		return e.w.WriteByte(value)
	}
	return nil
}

func (e *Encoder) EncodeU16(value uint16) error {
	return e.cfg.Int.EncodeUnsigned(e.w, 16, uint64(value))
}

func (e *Encoder) EncodeU32(value uint32) error {
	return e.cfg.Int.EncodeUnsigned(e.w, 32, uint64(value))
}

func (e *Encoder) EncodeU64(value uint64) error {
	return e.cfg.Int.EncodeUnsigned(e.w, 64, value)
}

func (e *Encoder) EncodeU128(value num.Uint128) error {
	return e.cfg.Int.EncodeUint128(e.w, value, true)
}

func (e *Encoder) EncodeI8(value int8) error { return e.EncodeU8(uint8(value)) }

func (e *Encoder) EncodeI16(value int16) error {
	return intcodec.EncodeSigned(e.cfg.Int, e.w, 16, int64(value))
}

func (e *Encoder) EncodeI32(value int32) error {
	return intcodec.EncodeSigned(e.cfg.Int, e.w, 32, int64(value))
}

func (e *Encoder) EncodeI64(value int64) error {
	return intcodec.EncodeSigned(e.cfg.Int, e.w, 64, value)
}

func (e *Encoder) EncodeI128(value num.Int128) error {
	return intcodec.EncodeInt128(e.cfg.Int, e.w, value, true)
}

// EncodeUsize writes the portable usize encoding: a typed, 64-bit-wide
// value regardless of host width, using the length codec (spec §6).
func (e *Encoder) EncodeUsize(value int) error {
	if value < 0 {
		return fmt.Errorf("%w: negative usize %d", tagwire.ErrIntegerOverflow, value)
	}
	return e.cfg.Length.EncodeTypedUsize(e.w, value)
}

// EncodeIsize zig-zags value before writing it through the length codec at
// usize's 64-bit width. This departs from the original "reinterpret the
// bits of isize as usize" scheme (see DESIGN.md's Open Question resolution):
// zig-zag keeps encode/decode bijective without relying on host word size.
func (e *Encoder) EncodeIsize(value int) error {
	return intcodec.EncodeSigned(e.cfg.Length, e.w, 64, int64(value))
}

func (e *Encoder) EncodeF32(value float32) error { return e.EncodeU32(math.Float32bits(value)) }
func (e *Encoder) EncodeF64(value float64) error { return e.EncodeU64(math.Float64bits(value)) }

func (e *Encoder) EncodeArray(array []byte) error { return e.EncodeBytes(array) }

func (e *Encoder) encodePrefix(n int) error {
	t, embedded := tag.WithLen(tag.Prefix, n)
	if err := e.writeTag(t); err != nil {
		return err
	}
	if !embedded {
		return e.cfg.Length.EncodeUsize(e.w, n)
	}
	return nil
}

func (e *Encoder) EncodeBytes(data []byte) error {
	if err := e.encodePrefix(len(data)); err != nil {
		return err
	}
	return e.w.WriteBytes(data)
}

func (e *Encoder) EncodeBytesVectored(vectors [][]byte) error {
	total := 0
	for _, v := range vectors {
		total += len(v)
	}
	if err := e.encodePrefix(total); err != nil {
		return err
	}
	for _, v := range vectors {
		if err := e.w.WriteBytes(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) EncodeString(s string) error { return e.EncodeBytes([]byte(s)) }

func (e *Encoder) EncodeSome() (tagwire.Encoder, error) {
	if err := e.writeTag(tag.New(tag.Sequence, 1)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Encoder) EncodeNone() error {
	return e.writeTag(tag.New(tag.Sequence, 0))
}

func (e *Encoder) encodeLengthTaggedSequence(n int) (*Encoder, error) {
	t, embedded := tag.WithLen(tag.Sequence, n)
	if err := e.writeTag(t); err != nil {
		return nil, err
	}
	if !embedded {
		if err := e.cfg.Length.EncodeUsize(e.w, n); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Encoder) EncodeSequence(length int) (tagwire.SequenceEncoder, error) {
	enc, err := e.encodeLengthTaggedSequence(length)
	return (*sequenceEncoder)(enc), err
}

func (e *Encoder) EncodeTuple(length int) (tagwire.SequenceEncoder, error) {
	return e.EncodeSequence(length)
}

func doubled(n int) (int, error) {
	if n > (1<<63-1)/2 {
		return 0, fmt.Errorf("%w: %d pairs overflows a doubled length", tagwire.ErrIntegerOverflow, n)
	}
	return n * 2, nil
}

func (e *Encoder) EncodeMap(length int) (tagwire.PairEncoder, error) {
	n, err := doubled(length)
	if err != nil {
		return nil, err
	}
	enc, err := e.encodeLengthTaggedSequence(n)
	return (*pairEncoder)(enc), err
}

func (e *Encoder) EncodeStruct(length int) (tagwire.PairEncoder, error) {
	return e.EncodeMap(length)
}

func (e *Encoder) EncodeVariant() (tagwire.VariantEncoder, error) {
	if err := e.writeTag(tag.New(tag.Sequence, 2)); err != nil {
		return nil, err
	}
	return (*variantEncoder)(e), nil
}

func (e *Encoder) EncodePack() (tagwire.PackEncoder, error) {
	return newPackEncoder(e.w, e.cfg), nil
}

// sequenceEncoder, pairEncoder, and variantEncoder are all thin views over
// the same underlying Encoder: in the wire format every child simply
// continues writing to the parent's Writer, so there is nothing to
// allocate beyond a type that exposes the narrower interface.
type sequenceEncoder Encoder

func (s *sequenceEncoder) EncodeNext() (tagwire.Encoder, error) {
	return (*Encoder)(s), nil
}

func (s *sequenceEncoder) Finish() error { return nil }

type pairEncoder Encoder

func (p *pairEncoder) EncodeFirst() (tagwire.Encoder, error)  { return (*Encoder)(p), nil }
func (p *pairEncoder) EncodeSecond() (tagwire.Encoder, error) { return (*Encoder)(p), nil }
func (p *pairEncoder) Finish() error                          { return nil }

type variantEncoder Encoder

func (v *variantEncoder) EncodeTag() (tagwire.Encoder, error)     { return (*Encoder)(v), nil }
func (v *variantEncoder) EncodeVariant() (tagwire.Encoder, error) { return (*Encoder)(v), nil }
func (v *variantEncoder) Finish() error                           { return nil }
