// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package value

import "github.com/creachadair/tagwire"

// EncodeSelfDescribing and DecodeSelfDescribing add a recursive Kind-byte
// envelope around every node of a Value tree, so it can round-trip through
// a backend (like package wire) whose TypeHint is always HintAny. Neither
// the wire format nor the storage format embeds enough of a tag to
// reconstruct a full TypeHint on read back — their Tag only disambiguates
// four byte-shapes (spec §4.5), not the nine Value kinds or the fourteen
// Number widths — so FromDecoder/IntoEncoder alone cannot transcode through
// them without already knowing the shape in advance. This envelope exists
// for cmd/tagwire's dump and roundtrip commands, which have no schema to
// fall back on; it is not part of the core protocol's wire compatibility
// guarantees, and a genuinely self-describing backend (JSON, say) would
// make it unnecessary, the way decoding through musli-json needs no
// equivalent in the original.
func EncodeSelfDescribing(e tagwire.Encoder, v Value) error {
	if err := e.EncodeU8(uint8(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case KindUnit:
		return e.EncodeUnit()
	case KindBool:
		return e.EncodeBool(v.Bool)
	case KindChar:
		return e.EncodeChar(v.Char)
	case KindNumber:
		if err := e.EncodeU8(uint8(v.Number.Kind)); err != nil {
			return err
		}
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
			if err := EncodeSelfDescribing(next, item); err != nil {
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
			if err := EncodeSelfDescribing(key, p.First); err != nil {
				return err
			}
			val, err := pairs.EncodeSecond()
			if err != nil {
				return err
			}
			if err := EncodeSelfDescribing(val, p.Second); err != nil {
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
		if err := EncodeSelfDescribing(tagEnc, v.Variant.First); err != nil {
			return err
		}
		bodyEnc, err := variant.EncodeVariant()
		if err != nil {
			return err
		}
		if err := EncodeSelfDescribing(bodyEnc, v.Variant.Second); err != nil {
			return err
		}
		return variant.Finish()
	default:
		return tagwire.Expected(tagwire.ErrInvalidType, v.Kind)
	}
}

// DecodeSelfDescribing reads back a tree written by EncodeSelfDescribing.
func DecodeSelfDescribing(d tagwire.Decoder) (Value, error) {
	kindByte, err := d.DecodeU8()
	if err != nil {
		return Value{}, err
	}
	switch Kind(kindByte) {
	case KindUnit:
		if err := d.DecodeUnit(); err != nil {
			return Value{}, err
		}
		return Unit(), nil
	case KindBool:
		b, err := d.DecodeBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case KindChar:
		c, err := d.DecodeChar()
		if err != nil {
			return Value{}, err
		}
		return Char(c), nil
	case KindNumber:
		hintByte, err := d.DecodeU8()
		if err != nil {
			return Value{}, err
		}
		n, err := decodeNumber(d, tagwire.NumberHint(hintByte))
		if err != nil {
			return Value{}, err
		}
		return Num(n), nil
	case KindBytes:
		got, err := d.DecodeBytes(tagwire.BytesVisitor{
			Expecting: "bytes",
			Any:       func(b []byte) (interface{}, error) { return append([]byte(nil), b...), nil },
		})
		if err != nil {
			return Value{}, err
		}
		return BytesValue(got.([]byte)), nil
	case KindString:
		got, err := d.DecodeString(tagwire.StringVisitor{
			Expecting: "a string",
			Any:       func(s string) (interface{}, error) { return s, nil },
		})
		if err != nil {
			return Value{}, err
		}
		return StringValue(got.(string)), nil
	case KindSequence:
		seq, err := d.DecodeSequence()
		if err != nil {
			return Value{}, err
		}
		var out []Value
		for {
			item, err := seq.Next()
			if err != nil {
				return Value{}, err
			}
			if item == nil {
				break
			}
			v, err := DecodeSelfDescribing(item)
			if err != nil {
				return Value{}, err
			}
			out = append(out, v)
		}
		return SequenceValue(out), nil
	case KindMap:
		pairs, err := d.DecodeMap()
		if err != nil {
			return Value{}, err
		}
		var out []Pair
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
			first, err := DecodeSelfDescribing(firstDec)
			if err != nil {
				return Value{}, err
			}
			secondDec, err := item.Second()
			if err != nil {
				return Value{}, err
			}
			second, err := DecodeSelfDescribing(secondDec)
			if err != nil {
				return Value{}, err
			}
			out = append(out, Pair{First: first, Second: second})
		}
		return MapValue(out), nil
	case KindVariant:
		variant, err := d.DecodeVariant()
		if err != nil {
			return Value{}, err
		}
		tagDec, err := variant.Tag()
		if err != nil {
			return Value{}, err
		}
		tagVal, err := DecodeSelfDescribing(tagDec)
		if err != nil {
			return Value{}, err
		}
		bodyDec, err := variant.Variant()
		if err != nil {
			return Value{}, err
		}
		bodyVal, err := DecodeSelfDescribing(bodyDec)
		if err != nil {
			return Value{}, err
		}
		if err := variant.End(); err != nil {
			return Value{}, err
		}
		return VariantValue(tagVal, bodyVal), nil
	default:
		return Value{}, tagwire.Expected(tagwire.ErrInvalidType, Kind(kindByte))
	}
}
