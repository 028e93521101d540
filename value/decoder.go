// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"unicode/utf8"

	"github.com/creachadair/tagwire"
	"github.com/creachadair/tagwire/num"
)

// Decoder makes a *Value itself usable anywhere a tagwire.Decoder is
// expected, the Go counterpart of musli-value's ValueDecoder<'a, E>. Every
// method strictly requires v to already hold the matching Kind; there is no
// coercion between kinds, mirroring the original's ensure! macro.
type Decoder struct {
	v *Value
}

// AsDecoder wraps v so it can be decoded from directly, without re-encoding
// it to bytes first.
func (v *Value) AsDecoder() *Decoder { return &Decoder{v: v} }

func (d *Decoder) Expecting() string { return "a value" }

func (d *Decoder) TypeHint() (tagwire.TypeHint, error) { return d.v.TypeHint(), nil }

func (d *Decoder) expect(k Kind, err error) error {
	if d.v.Kind != k {
		return tagwire.Expected(err, d.v.TypeHint())
	}
	return nil
}

func (d *Decoder) DecodeUnit() error {
	return d.expect(KindUnit, tagwire.ErrExpectedUnit)
}

func (d *Decoder) DecodeBool() (bool, error) {
	if err := d.expect(KindBool, tagwire.ErrExpectedBool); err != nil {
		return false, err
	}
	return d.v.Bool, nil
}

func (d *Decoder) DecodeChar() (rune, error) {
	if err := d.expect(KindChar, tagwire.ErrExpectedChar); err != nil {
		return 0, err
	}
	return d.v.Char, nil
}

func (d *Decoder) number() (Number, error) {
	if err := d.expect(KindNumber, tagwire.ErrExpectedNumber); err != nil {
		return Number{}, err
	}
	return d.v.Number, nil
}

func (d *Decoder) DecodeU8() (uint8, error) {
	n, err := d.number()
	return n.U8, err
}
func (d *Decoder) DecodeU16() (uint16, error) {
	n, err := d.number()
	return n.U16, err
}
func (d *Decoder) DecodeU32() (uint32, error) {
	n, err := d.number()
	return n.U32, err
}
func (d *Decoder) DecodeU64() (uint64, error) {
	n, err := d.number()
	return n.U64, err
}
func (d *Decoder) DecodeU128() (num.Uint128, error) {
	n, err := d.number()
	return n.U128, err
}
func (d *Decoder) DecodeI8() (int8, error) {
	n, err := d.number()
	return n.I8, err
}
func (d *Decoder) DecodeI16() (int16, error) {
	n, err := d.number()
	return n.I16, err
}
func (d *Decoder) DecodeI32() (int32, error) {
	n, err := d.number()
	return n.I32, err
}
func (d *Decoder) DecodeI64() (int64, error) {
	n, err := d.number()
	return n.I64, err
}
func (d *Decoder) DecodeI128() (num.Int128, error) {
	n, err := d.number()
	return n.I128, err
}
func (d *Decoder) DecodeUsize() (int, error) {
	n, err := d.number()
	return n.Usize, err
}
func (d *Decoder) DecodeIsize() (int, error) {
	n, err := d.number()
	return n.Isize, err
}
func (d *Decoder) DecodeF32() (float32, error) {
	n, err := d.number()
	return n.F32, err
}
func (d *Decoder) DecodeF64() (float64, error) {
	n, err := d.number()
	return n.F64, err
}

func (d *Decoder) DecodeArray(n int) ([]byte, error) {
	if err := d.expect(KindBytes, tagwire.ErrExpectedBytes); err != nil {
		return nil, err
	}
	if len(d.v.Bytes) != n {
		return nil, tagwire.ErrArrayOutOfBounds
	}
	return d.v.Bytes, nil
}

func (d *Decoder) DecodeBytes(visitor tagwire.BytesVisitor) (interface{}, error) {
	if err := d.expect(KindBytes, tagwire.ErrExpectedBytes); err != nil {
		return nil, err
	}
	return visitor.VisitBorrowed(d.v.Bytes)
}

func (d *Decoder) DecodeString(visitor tagwire.StringVisitor) (interface{}, error) {
	if err := d.expect(KindString, tagwire.ErrExpectedString); err != nil {
		return nil, err
	}
	if !utf8.ValidString(d.v.String) {
		return nil, tagwire.ErrInvalidUTF8
	}
	return visitor.VisitBorrowed(d.v.String)
}

// DecodeOption reports presence the way every other backend does: a Unit
// value decodes as absent (the same collision preserved on the wire), and a
// single-element sequence whose lone item is the payload also counts,
// matching how a typed Option(T) value is actually built by Decode when
// read back from the wire's own DecodeOption.
func (d *Decoder) DecodeOption() (tagwire.Decoder, bool, error) {
	switch d.v.Kind {
	case KindUnit:
		return nil, false, nil
	case KindSequence:
		switch len(d.v.Sequence) {
		case 0:
			return nil, false, nil
		case 1:
			return d.v.Sequence[0].AsDecoder(), true, nil
		}
	}
	return nil, false, tagwire.Expected(tagwire.ErrInvalidType, d.v.TypeHint())
}

func (d *Decoder) DecodePack() (tagwire.PackDecoder, error) {
	if err := d.expect(KindSequence, tagwire.ErrExpectedPack); err != nil {
		return nil, err
	}
	return &iterValuePackDecoder{items: d.v.Sequence}, nil
}

func (d *Decoder) DecodeSequence() (tagwire.SequenceDecoder, error) {
	if err := d.expect(KindSequence, tagwire.ErrExpectedSequence); err != nil {
		return nil, err
	}
	return &iterValueDecoder{items: d.v.Sequence}, nil
}

func (d *Decoder) DecodeTuple(length int) (tagwire.SequenceDecoder, error) {
	if err := d.expect(KindSequence, tagwire.ErrExpectedSequence); err != nil {
		return nil, err
	}
	if len(d.v.Sequence) != length {
		return nil, tagwire.ErrArrayOutOfBounds
	}
	return &iterValueDecoder{items: d.v.Sequence}, nil
}

func (d *Decoder) DecodeMap() (tagwire.PairsDecoder, error) {
	if err := d.expect(KindMap, tagwire.ErrExpectedMap); err != nil {
		return nil, err
	}
	return &iterValuePairsDecoder{pairs: d.v.Map}, nil
}

func (d *Decoder) DecodeStruct(length int) (tagwire.PairsDecoder, error) {
	if err := d.expect(KindMap, tagwire.ErrExpectedMap); err != nil {
		return nil, err
	}
	if len(d.v.Map) != length {
		return nil, tagwire.ErrArrayOutOfBounds
	}
	return &iterValuePairsDecoder{pairs: d.v.Map}, nil
}

func (d *Decoder) DecodeVariant() (tagwire.VariantDecoder, error) {
	if err := d.expect(KindVariant, tagwire.ErrExpectedVariant); err != nil {
		return nil, err
	}
	return &iterValueVariantDecoder{pair: d.v.Variant}, nil
}

// DecodeBuffer is trivial here: the value is already an in-memory tree, so
// "capturing" it for replay is just wrapping it in a fresh Decoder again.
func (d *Decoder) DecodeBuffer() (tagwire.Buffer, error) {
	return valueBuffer{v: d.v}, nil
}

type valueBuffer struct{ v *Value }

func (b valueBuffer) AsDecoder() (tagwire.Decoder, error) { return b.v.AsDecoder(), nil }

// iterValueDecoder walks a []Value as a SequenceDecoder.
// Unlike the wire codec, exhaustion needs no byte accounting: the slice
// length is already known.
type iterValueDecoder struct {
	items []Value
	pos   int
}

func (it *iterValueDecoder) SizeHint() int { return len(it.items) - it.pos }

func (it *iterValueDecoder) Next() (tagwire.Decoder, error) {
	if it.pos >= len(it.items) {
		return nil, nil
	}
	d := it.items[it.pos].AsDecoder()
	it.pos++
	return d, nil
}

// iterValuePackDecoder walks a []Value as a PackDecoder. Unlike
// iterValueDecoder's SequenceDecoder contract, exhaustion is an error
// here: a pack's length is part of its schema, not signalled out of band,
// so a caller that keeps asking for elements past the end (as
// bindDecodePacked does to find the end) must see ErrExpectedPackValue
// rather than a bare nil.
type iterValuePackDecoder struct {
	items []Value
	pos   int
}

func (it *iterValuePackDecoder) Next() (tagwire.Decoder, error) {
	if it.pos >= len(it.items) {
		return nil, tagwire.ErrExpectedPackValue
	}
	d := it.items[it.pos].AsDecoder()
	it.pos++
	return d, nil
}

// iterValuePairsDecoder walks a []Pair as a PairsDecoder. SkipSecond always
// succeeds trivially: there is no reader position to advance, the pair is
// already a fully materialized node the caller simply chooses to ignore.
type iterValuePairsDecoder struct {
	pairs []Pair
	pos   int
}

func (it *iterValuePairsDecoder) SizeHint() int { return len(it.pairs) - it.pos }

func (it *iterValuePairsDecoder) Next() (tagwire.PairDecoder, error) {
	if it.pos >= len(it.pairs) {
		return nil, nil
	}
	p := &it.pairs[it.pos]
	it.pos++
	return &iterValuePairDecoder{pair: p}, nil
}

type iterValuePairDecoder struct{ pair *Pair }

func (p *iterValuePairDecoder) First() (tagwire.Decoder, error) {
	return p.pair.First.AsDecoder(), nil
}

func (p *iterValuePairDecoder) Second() (tagwire.Decoder, error) {
	return p.pair.Second.AsDecoder(), nil
}

func (p *iterValuePairDecoder) SkipSecond() (bool, error) { return true, nil }

// iterValueVariantDecoder is the variant counterpart: SkipVariant and End
// are both no-ops for the same reason SkipSecond is.
type iterValueVariantDecoder struct{ pair *Pair }

func (v *iterValueVariantDecoder) Tag() (tagwire.Decoder, error) {
	return v.pair.First.AsDecoder(), nil
}

func (v *iterValueVariantDecoder) Variant() (tagwire.Decoder, error) {
	return v.pair.Second.AsDecoder(), nil
}

func (v *iterValueVariantDecoder) SkipVariant() (bool, error) { return true, nil }

func (v *iterValueVariantDecoder) End() error { return nil }
