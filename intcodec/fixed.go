// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package intcodec

import (
	"fmt"

	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/tag"
	"github.com/creachadair/tagwire/wireio"
)

// Fixed encodes integers as raw little-endian bytes, bit-exact and
// non-overlong by construction. Lengths are always written as a fixed
// 64-bit little-endian value, matching spec.md's "usize is always u64 on
// the wire" rule.
var Fixed Codec = fixedCodec{}

type fixedCodec struct{}

func (fixedCodec) EncodeUnsigned(w wireio.Writer, width int, value uint64) error {
	if err := w.WriteByte(continuationTag(width).Byte()); err != nil {
		return err
	}
	return fixedCodec{}.EncodeUntypedUnsigned(w, width, value)
}

func (fixedCodec) DecodeUnsigned(r wireio.Reader, width int) (uint64, error) {
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
	return fixedCodec{}.DecodeUntypedUnsigned(r, width)
}

func (fixedCodec) EncodeUntypedUnsigned(w wireio.Writer, width int, value uint64) error {
	n := width / 8
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = byte(value >> (8 * i))
	}
	return w.WriteArray(buf)
}

func (fixedCodec) DecodeUntypedUnsigned(r wireio.Reader, width int) (uint64, error) {
	n := width / 8
	buf, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var value uint64
	for i := n - 1; i >= 0; i-- {
		value = value<<8 | uint64(buf[i])
	}
	return value, nil
}

func (fixedCodec) EncodeUsize(w wireio.Writer, value int) error {
	return fixedCodec{}.EncodeUntypedUnsigned(w, 64, uint64(value))
}

func (fixedCodec) DecodeUsize(r wireio.Reader) (int, error) {
	z, err := fixedCodec{}.DecodeUntypedUnsigned(r, 64)
	if err != nil {
		return 0, err
	}
	if z > uint64(^uint(0)>>1) {
		return 0, fmt.Errorf("%w: wire length %d exceeds host int range", ErrIntegerOverflow, z)
	}
	return int(z), nil
}

func (fixedCodec) EncodeTypedUsize(w wireio.Writer, value int) error {
	if err := w.WriteByte(continuationTag(64).Byte()); err != nil {
		return err
	}
	return fixedCodec{}.EncodeUsize(w, value)
}

func (fixedCodec) DecodeTypedUsize(r wireio.Reader) (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	t := tag.Parse(b)
	if t.Kind() != tag.Continuation || int(t.Data())*8 != 64 {
		return 0, fmt.Errorf("intcodec: expected usize continuation tag, got %v", t)
	}
	return fixedCodec{}.DecodeUsize(r)
}

func (fixedCodec) EncodeUint128(w wireio.Writer, value num.Uint128, typed bool) error {
	if typed {
		if err := w.WriteByte(continuationTag(128).Byte()); err != nil {
			return err
		}
	}
	b := value.Bytes() // big-endian; flip to little-endian on the wire
	var le [16]byte
	for i, c := range b {
		le[15-i] = c
	}
	return w.WriteArray(le[:])
}

func (fixedCodec) DecodeUint128(r wireio.Reader, typed bool) (num.Uint128, error) {
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
	le, err := r.ReadBytes(16)
	if err != nil {
		return num.Uint128{}, err
	}
	var be [16]byte
	for i, c := range le {
		be[15-i] = c
	}
	return num.Uint128FromBytes(be), nil
}
