// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package intcodec

import (
	"fmt"

	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/tag"
	"github.com/creachadair/tagwire/wireio"
)

// Variable encodes integers as 7-bit continuation bytes, low 7 bits per
// byte and the high bit set while more bytes follow — the same LEB-style
// scheme used throughout the wire protocol corpus, capped at
// ceil(width/7) such bytes and rejecting overlong encodings on decode.
var Variable Codec = variableCodec{}

type variableCodec struct{}

func maxVarBytes(width int) int {
	return (width + 6) / 7
}

func (variableCodec) EncodeUnsigned(w wireio.Writer, width int, value uint64) error {
	if err := w.WriteByte(continuationTag(width).Byte()); err != nil {
		return err
	}
	return variableCodec{}.EncodeUntypedUnsigned(w, width, value)
}

func (variableCodec) DecodeUnsigned(r wireio.Reader, width int) (uint64, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	t := tag.Parse(b)
	if t.Kind() != tag.Continuation {
		return 0, fmt.Errorf("intcodec: expected continuation tag, got %v", t)
	}
	gotWidth := int(t.Data()) * 8
	if gotWidth != width {
		return 0, fmt.Errorf("%w: tag declares width %d, decoder wants %d", ErrIntegerOverflow, gotWidth, width)
	}
	return variableCodec{}.DecodeUntypedUnsigned(r, width)
}

func (variableCodec) EncodeUntypedUnsigned(w wireio.Writer, _ int, value uint64) error {
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value != 0 {
			if err := w.WriteByte(b | 0x80); err != nil {
				return err
			}
			continue
		}
		return w.WriteByte(b)
	}
}

func (variableCodec) DecodeUntypedUnsigned(r wireio.Reader, width int) (uint64, error) {
	max := maxVarBytes(width)
	var value uint64
	for i := 0; ; i++ {
		if i >= max {
			return 0, fmt.Errorf("%w: more than %d bytes for a %d-bit value", ErrOverlong, max, width)
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == max-1 && b&0x80 != 0 {
			return 0, fmt.Errorf("%w: continuation bit set on final byte", ErrOverlong)
		}
		group := uint64(b & 0x7f)
		shift := 7 * i
		allowed := width - shift
		if allowed <= 0 {
			if group != 0 {
				return 0, fmt.Errorf("%w: value does not fit in %d bits", ErrIntegerOverflow, width)
			}
		} else if allowed < 7 && group>>uint(allowed) != 0 {
			return 0, fmt.Errorf("%w: value does not fit in %d bits", ErrIntegerOverflow, width)
		} else {
			value |= group << uint(shift)
		}
		if b&0x80 == 0 {
			return value, nil
		}
	}
}

func (variableCodec) EncodeUsize(w wireio.Writer, value int) error {
	return variableCodec{}.EncodeUntypedUnsigned(w, 64, uint64(value))
}

func (variableCodec) DecodeUsize(r wireio.Reader) (int, error) {
	z, err := variableCodec{}.DecodeUntypedUnsigned(r, 64)
	if err != nil {
		return 0, err
	}
	if z > uint64(^uint(0)>>1) {
		return 0, fmt.Errorf("%w: wire length %d exceeds host int range", ErrIntegerOverflow, z)
	}
	return int(z), nil
}

func (variableCodec) EncodeTypedUsize(w wireio.Writer, value int) error {
	if err := w.WriteByte(continuationTag(64).Byte()); err != nil {
		return err
	}
	return variableCodec{}.EncodeUsize(w, value)
}

func (variableCodec) DecodeTypedUsize(r wireio.Reader) (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	t := tag.Parse(b)
	if t.Kind() != tag.Continuation || int(t.Data())*8 != 64 {
		return 0, fmt.Errorf("intcodec: expected usize continuation tag, got %v", t)
	}
	return variableCodec{}.DecodeUsize(r)
}

func (variableCodec) EncodeUint128(w wireio.Writer, value num.Uint128, typed bool) error {
	if typed {
		if err := w.WriteByte(continuationTag(128).Byte()); err != nil {
			return err
		}
	}
	// Emit low 64 bits' worth of 7-bit groups first, then the high word,
	// same low-to-high order as the 64-bit path but spanning two words.
	hi, lo := value.Hi, value.Lo
	for {
		b := byte(lo & 0x7f)
		lo = lo>>7 | (hi&0x7f)<<57
		hi >>= 7
		if lo != 0 || hi != 0 {
			if err := w.WriteByte(b | 0x80); err != nil {
				return err
			}
			continue
		}
		return w.WriteByte(b)
	}
}

func (variableCodec) DecodeUint128(r wireio.Reader, typed bool) (num.Uint128, error) {
	if typed {
		b, err := r.ReadByte()
		if err != nil {
			return num.Uint128{}, err
		}
		t := tag.Parse(b)
		if t.Kind() != tag.Continuation || int(t.Data()) != 16 {
			return num.Uint128{}, fmt.Errorf("intcodec: expected u128 continuation tag, got %v", t)
		}
	}
	max := maxVarBytes(128)
	var out num.Uint128
	for i := 0; ; i++ {
		if i >= max {
			return num.Uint128{}, fmt.Errorf("%w: more than %d bytes for a 128-bit value", ErrOverlong, max)
		}
		b, err := r.ReadByte()
		if err != nil {
			return num.Uint128{}, err
		}
		if i == max-1 && b&0x80 != 0 {
			return num.Uint128{}, fmt.Errorf("%w: continuation bit set on final byte", ErrOverlong)
		}
		group := uint64(b & 0x7f)
		shift := 7 * i
		allowed := 128 - shift
		if allowed <= 0 {
			if group != 0 {
				return num.Uint128{}, fmt.Errorf("%w: value does not fit in 128 bits", ErrIntegerOverflow)
			}
		} else if allowed < 7 && group>>uint(allowed) != 0 {
			return num.Uint128{}, fmt.Errorf("%w: value does not fit in 128 bits", ErrIntegerOverflow)
		} else {
			out = out.Or(num.Uint128{Lo: group}.Lsh(uint(shift)))
		}
		if b&0x80 == 0 {
			return out, nil
		}
	}
}
