// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package value implements the self-describing Value intermediate
// representation (spec's component C6): a strict tree that can be decoded
// from any self-describing Decoder and, independently, encoded to any
// Encoder, making it
// usable both as a debugging/inspection layer and as a transcoder between
// wire formats.
//
// Value implements both sides of the generic protocol: FromDecoder builds a
// Value from any Decoder whose TypeHint names each value's shape, and Decoder (this package's) makes a Value itself
// usable anywhere a tagwire.Decoder is expected (for example, to drive
// Unmarshal a second time, or to bridge into a foreign decode tree). A
// transcode is simply
//
//	v, err := value.FromDecoder(sourceDecoder)
//	err = v.IntoEncoder(targetEncoder)
package value

import (
	"fmt"

	"github.com/creachadair/tagwire"
	"github.com/creachadair/tagwire/num"
)

// Kind identifies which arm of the Value union is populated.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindChar
	KindNumber
	KindBytes
	KindString
	KindSequence
	KindMap
	KindVariant
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindNumber:
		return "number"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindVariant:
		return "variant"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Pair is a key/value or variant-tag/body entry.
type Pair struct {
	First, Second Value
}

// Value is a strict tree capable of representing any type the protocol can
// encode or decode: no cycles, no sharing, by construction (spec §9: "Value
// is a strict tree; no cycle handling is needed").
type Value struct {
	Kind     Kind
	Bool     bool
	Char     rune
	Number   Number
	Bytes    []byte
	String   string
	Sequence []Value
	Map      []Pair
	Variant  *Pair
}

// Unit returns the unit value.
func Unit() Value { return Value{Kind: KindUnit} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Char returns a character value.
func Char(c rune) Value { return Value{Kind: KindChar, Char: c} }

// Num returns a numeric value.
func Num(n Number) Value { return Value{Kind: KindNumber, Number: n} }

// BytesValue returns a byte-string value. The slice is retained, not copied.
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: KindString, String: s} }

// SequenceValue returns an ordered-sequence value.
func SequenceValue(items []Value) Value { return Value{Kind: KindSequence, Sequence: items} }

// MapValue returns a key/value map value.
func MapValue(pairs []Pair) Value { return Value{Kind: KindMap, Map: pairs} }

// VariantValue returns a (tag, body) variant value.
func VariantValue(tag, body Value) Value {
	return Value{Kind: KindVariant, Variant: &Pair{First: tag, Second: body}}
}

// Number is the tagged union of every primitive numeric width the protocol
// supports, mirroring the width split in Decoder/Encoder itself: Go has no
// generic numeric supertype, so Value carries one field per width the same
// way musli-value's Number enum carries one variant per width.
type Number struct {
	Kind  tagwire.NumberHint
	U8    uint8
	U16   uint16
	U32   uint32
	U64   uint64
	U128  num.Uint128
	I8    int8
	I16   int16
	I32   int32
	I64   int64
	I128  num.Int128
	Usize int
	Isize int
	F32   float32
	F64   float64
}

func NumberU8(v uint8) Number     { return Number{Kind: tagwire.NumberU8, U8: v} }
func NumberU16(v uint16) Number   { return Number{Kind: tagwire.NumberU16, U16: v} }
func NumberU32(v uint32) Number   { return Number{Kind: tagwire.NumberU32, U32: v} }
func NumberU64(v uint64) Number   { return Number{Kind: tagwire.NumberU64, U64: v} }
func NumberU128(v num.Uint128) Number {
	return Number{Kind: tagwire.NumberU128, U128: v}
}
func NumberI8(v int8) Number   { return Number{Kind: tagwire.NumberI8, I8: v} }
func NumberI16(v int16) Number { return Number{Kind: tagwire.NumberI16, I16: v} }
func NumberI32(v int32) Number { return Number{Kind: tagwire.NumberI32, I32: v} }
func NumberI64(v int64) Number { return Number{Kind: tagwire.NumberI64, I64: v} }
func NumberI128(v num.Int128) Number {
	return Number{Kind: tagwire.NumberI128, I128: v}
}
func NumberUsize(v int) Number   { return Number{Kind: tagwire.NumberUsize, Usize: v} }
func NumberIsize(v int) Number   { return Number{Kind: tagwire.NumberIsize, Isize: v} }
func NumberF32(v float32) Number { return Number{Kind: tagwire.NumberF32, F32: v} }
func NumberF64(v float64) Number { return Number{Kind: tagwire.NumberF64, F64: v} }

// Encode writes n to e using the method matching its Kind.
func (n Number) Encode(e tagwire.Encoder) error {
	switch n.Kind {
	case tagwire.NumberU8:
		return e.EncodeU8(n.U8)
	case tagwire.NumberU16:
		return e.EncodeU16(n.U16)
	case tagwire.NumberU32:
		return e.EncodeU32(n.U32)
	case tagwire.NumberU64:
		return e.EncodeU64(n.U64)
	case tagwire.NumberU128:
		return e.EncodeU128(n.U128)
	case tagwire.NumberI8:
		return e.EncodeI8(n.I8)
	case tagwire.NumberI16:
		return e.EncodeI16(n.I16)
	case tagwire.NumberI32:
		return e.EncodeI32(n.I32)
	case tagwire.NumberI64:
		return e.EncodeI64(n.I64)
	case tagwire.NumberI128:
		return e.EncodeI128(n.I128)
	case tagwire.NumberUsize:
		return e.EncodeUsize(n.Usize)
	case tagwire.NumberIsize:
		return e.EncodeIsize(n.Isize)
	case tagwire.NumberF32:
		return e.EncodeF32(n.F32)
	case tagwire.NumberF64:
		return e.EncodeF64(n.F64)
	default:
		return tagwire.Expected(tagwire.ErrExpectedNumber, n.Kind)
	}
}

// TypeHint reports the TypeHint corresponding to v's Kind, the Go
// equivalent of musli-value's Value::type_hint.
func (v Value) TypeHint() tagwire.TypeHint {
	switch v.Kind {
	case KindUnit:
		return tagwire.TypeHint{Kind: tagwire.HintUnit}
	case KindBool:
		return tagwire.TypeHint{Kind: tagwire.HintBool}
	case KindChar:
		return tagwire.TypeHint{Kind: tagwire.HintChar}
	case KindNumber:
		return tagwire.TypeHint{Kind: tagwire.HintNumber, Number: v.Number.Kind}
	case KindBytes:
		return tagwire.TypeHint{Kind: tagwire.HintBytes, Length: tagwire.ExactLength(len(v.Bytes))}
	case KindString:
		return tagwire.TypeHint{Kind: tagwire.HintString, Length: tagwire.ExactLength(len(v.String))}
	case KindSequence:
		return tagwire.TypeHint{Kind: tagwire.HintSequence, Length: tagwire.ExactLength(len(v.Sequence))}
	case KindMap:
		return tagwire.TypeHint{Kind: tagwire.HintMap, Length: tagwire.ExactLength(len(v.Map))}
	case KindVariant:
		return tagwire.TypeHint{Kind: tagwire.HintVariant}
	default:
		return tagwire.TypeHint{Kind: tagwire.HintAny}
	}
}

// FromDecoder builds a Value from d, dispatching on d's TypeHint the way
// musli-value's Decode<Value> impl does. A non self-describing source (a
// bare wire.Decoder, which always reports HintAny) cannot drive this path;
// Value decoding is only meaningful against a self-describing source or
// another Value.
func FromDecoder(d tagwire.Decoder) (Value, error) {
	hint, err := d.TypeHint()
	if err != nil {
		return Value{}, err
	}
	switch hint.Kind {
	case tagwire.HintUnit:
		if err := d.DecodeUnit(); err != nil {
			return Value{}, err
		}
		return Unit(), nil
	case tagwire.HintBool:
		b, err := d.DecodeBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case tagwire.HintChar:
		c, err := d.DecodeChar()
		if err != nil {
			return Value{}, err
		}
		return Char(c), nil
	case tagwire.HintNumber:
		n, err := decodeNumber(d, hint.Number)
		if err != nil {
			return Value{}, err
		}
		return Num(n), nil
	case tagwire.HintBytes:
		got, err := d.DecodeBytes(tagwire.BytesVisitor{
			Expecting: "bytes",
			Any:       func(b []byte) (interface{}, error) { return append([]byte(nil), b...), nil },
		})
		if err != nil {
			return Value{}, err
		}
		return BytesValue(got.([]byte)), nil
	case tagwire.HintString:
		got, err := d.DecodeString(tagwire.StringVisitor{
			Expecting: "a string",
			Any:       func(s string) (interface{}, error) { return s, nil },
		})
		if err != nil {
			return Value{}, err
		}
		return StringValue(got.(string)), nil
	case tagwire.HintSequence:
		seq, err := d.DecodeSequence()
		if err != nil {
			return Value{}, err
		}
		out := make([]Value, 0, hint.Length.SizeHint())
		for {
			item, err := seq.Next()
			if err != nil {
				return Value{}, err
			}
			if item == nil {
				break
			}
			v, err := FromDecoder(item)
			if err != nil {
				return Value{}, err
			}
			out = append(out, v)
		}
		return SequenceValue(out), nil
	case tagwire.HintMap:
		pairs, err := d.DecodeMap()
		if err != nil {
			return Value{}, err
		}
		out := make([]Pair, 0, hint.Length.SizeHint())
		for {
			item, err := pairs.Next()
			if err != nil {
				return Value{}, err
			}
			if item == nil {
				break
			}
			firstDec, err := item.First()
			if err != nil {
				return Value{}, err
			}
			first, err := FromDecoder(firstDec)
			if err != nil {
				return Value{}, err
			}
			secondDec, err := item.Second()
			if err != nil {
				return Value{}, err
			}
			second, err := FromDecoder(secondDec)
			if err != nil {
				return Value{}, err
			}
			out = append(out, Pair{First: first, Second: second})
		}
		return MapValue(out), nil
	case tagwire.HintVariant:
		variant, err := d.DecodeVariant()
		if err != nil {
			return Value{}, err
		}
		tagDec, err := variant.Tag()
		if err != nil {
			return Value{}, err
		}
		tagVal, err := FromDecoder(tagDec)
		if err != nil {
			return Value{}, err
		}
		bodyDec, err := variant.Variant()
		if err != nil {
			return Value{}, err
		}
		bodyVal, err := FromDecoder(bodyDec)
		if err != nil {
			return Value{}, err
		}
		if err := variant.End(); err != nil {
			return Value{}, err
		}
		return VariantValue(tagVal, bodyVal), nil
	default:
		return Value{}, tagwire.Expected(tagwire.ErrInvalidType, hint)
	}
}

func decodeNumber(d tagwire.Decoder, hint tagwire.NumberHint) (Number, error) {
	switch hint {
	case tagwire.NumberU8:
		v, err := d.DecodeU8()
		return NumberU8(v), err
	case tagwire.NumberU16:
		v, err := d.DecodeU16()
		return NumberU16(v), err
	case tagwire.NumberU32:
		v, err := d.DecodeU32()
		return NumberU32(v), err
	case tagwire.NumberU64:
		v, err := d.DecodeU64()
		return NumberU64(v), err
	case tagwire.NumberU128:
		v, err := d.DecodeU128()
		return NumberU128(v), err
	case tagwire.NumberI8:
		v, err := d.DecodeI8()
		return NumberI8(v), err
	case tagwire.NumberI16:
		v, err := d.DecodeI16()
		return NumberI16(v), err
	case tagwire.NumberI32:
		v, err := d.DecodeI32()
		return NumberI32(v), err
	case tagwire.NumberI64:
		v, err := d.DecodeI64()
		return NumberI64(v), err
	case tagwire.NumberI128:
		v, err := d.DecodeI128()
		return NumberI128(v), err
	case tagwire.NumberUsize:
		v, err := d.DecodeUsize()
		return NumberUsize(v), err
	case tagwire.NumberIsize:
		v, err := d.DecodeIsize()
		return NumberIsize(v), err
	case tagwire.NumberF32:
		v, err := d.DecodeF32()
		return NumberF32(v), err
	case tagwire.NumberF64:
		v, err := d.DecodeF64()
		return NumberF64(v), err
	default:
		return Number{}, tagwire.Expected(tagwire.ErrExpectedNumber, hint)
	}
}

// IntoEncoder writes v to e by calling the Encode method matching v.Kind,
// recursively for compound values. This is the transcoder's write half.
func (v Value) IntoEncoder(e tagwire.Encoder) error {
	switch v.Kind {
	case KindUnit:
		return e.EncodeUnit()
	case KindBool:
		return e.EncodeBool(v.Bool)
	case KindChar:
		return e.EncodeChar(v.Char)
	case KindNumber:
		return v.Number.Encode(e)
	case KindBytes:
		return e.EncodeBytes(v.Bytes)
	case KindString:
		return e.EncodeString(v.String)
	case KindSequence:
		seq, err := e.EncodeSequence(len(v.Sequence))
		if err != nil {
			return err
		}
		for _, item := range v.Sequence {
			next, err := seq.EncodeNext()
			if err != nil {
				return err
			}
			if err := item.IntoEncoder(next); err != nil {
				return err
			}
		}
		return seq.Finish()
	case KindMap:
		pairs, err := e.EncodeMap(len(v.Map))
		if err != nil {
			return err
		}
		for _, p := range v.Map {
			key, err := pairs.EncodeFirst()
			if err != nil {
				return err
			}
			if err := p.First.IntoEncoder(key); err != nil {
				return err
			}
			val, err := pairs.EncodeSecond()
			if err != nil {
				return err
			}
			if err := p.Second.IntoEncoder(val); err != nil {
				return err
			}
		}
		return pairs.Finish()
	case KindVariant:
		variant, err := e.EncodeVariant()
		if err != nil {
			return err
		}
		tagEnc, err := variant.EncodeTag()
		if err != nil {
			return err
		}
		if err := v.Variant.First.IntoEncoder(tagEnc); err != nil {
			return err
		}
		bodyEnc, err := variant.EncodeVariant()
		if err != nil {
			return err
		}
		if err := v.Variant.Second.IntoEncoder(bodyEnc); err != nil {
			return err
		}
		return variant.Finish()
	default:
		return fmt.Errorf("value: cannot encode a value of kind %s", v.Kind)
	}
}
