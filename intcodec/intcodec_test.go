// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package intcodec_test

import (
	"errors"
	"testing"

	"github.com/creachadair/tagwire/intcodec"
	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/wireio"
)

func u128(hi, lo uint64) num.Uint128 { return num.Uint128{Hi: hi, Lo: lo} }

func roundTripUnsigned(t *testing.T, c intcodec.Codec, width int, value uint64) uint64 {
	t.Helper()
	buf := wireio.NewBuffer(nil)
	if err := c.EncodeUnsigned(buf, width, value); err != nil {
		t.Fatalf("EncodeUnsigned(%d) failed: %v", value, err)
	}
	r := wireio.NewSliceReader(buf.Data.Bytes())
	got, err := c.DecodeUnsigned(r, width)
	if err != nil {
		t.Fatalf("DecodeUnsigned failed: %v", err)
	}
	return got
}

func TestFixedRoundTrip(t *testing.T) {
	for _, width := range []int{16, 32, 64} {
		for _, v := range []uint64{0, 1, 127, 255, 65535, 1 << 40} {
			if v >= uint64(1)<<uint(width) && width < 64 {
				continue
			}
			if got := roundTripUnsigned(t, intcodec.Fixed, width, v); got != v {
				t.Errorf("Fixed width=%d: round trip %d got %d", width, v, got)
			}
		}
	}
}

func TestVariableRoundTrip(t *testing.T) {
	for _, width := range []int{16, 32, 64} {
		for _, v := range []uint64{0, 1, 127, 128, 16384, 1 << 40} {
			if v >= uint64(1)<<uint(width) && width < 64 {
				continue
			}
			if got := roundTripUnsigned(t, intcodec.Variable, width, v); got != v {
				t.Errorf("Variable width=%d: round trip %d got %d", width, v, got)
			}
		}
	}
}

func TestVariableOverlongRejected(t *testing.T) {
	// Four continuation bytes and a terminator encoding a value (zero) that
	// fits in one: more bytes than ceil(16/7) = 3 permits for a u16.
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x00}
	r := wireio.NewSliceReader(data)
	if _, err := intcodec.Variable.DecodeUntypedUnsigned(r, 16); !errors.Is(err, intcodec.ErrOverlong) {
		t.Errorf("DecodeUntypedUnsigned overlong = %v; want ErrOverlong", err)
	}
}

func TestVariableOverflowRejected(t *testing.T) {
	// 0xff, 0xff, 0x0f encodes 0x3ffff, which does not fit in a u16.
	data := []byte{0xff, 0xff, 0x0f}
	r := wireio.NewSliceReader(data)
	if _, err := intcodec.Variable.DecodeUntypedUnsigned(r, 16); !errors.Is(err, intcodec.ErrIntegerOverflow) {
		t.Errorf("DecodeUntypedUnsigned overflow = %v; want ErrIntegerOverflow", err)
	}
}

func TestSignedZigZagRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 2, -2, 1000, -1000, 1 << 40, -(1 << 40)} {
		buf := wireio.NewBuffer(nil)
		if err := intcodec.EncodeSigned(intcodec.Fixed, buf, 64, v); err != nil {
			t.Fatalf("EncodeSigned(%d) failed: %v", v, err)
		}
		r := wireio.NewSliceReader(buf.Data.Bytes())
		got, err := intcodec.DecodeSigned(intcodec.Fixed, r, 64)
		if err != nil {
			t.Fatalf("DecodeSigned failed: %v", err)
		}
		if got != v {
			t.Errorf("zig-zag round trip: got %d, want %d", got, v)
		}
	}
}

func TestUsizeRoundTrip(t *testing.T) {
	for _, c := range []intcodec.Codec{intcodec.Fixed, intcodec.Variable} {
		for _, n := range []int{0, 1, 30, 31, 1000, 1 << 20} {
			buf := wireio.NewBuffer(nil)
			if err := c.EncodeUsize(buf, n); err != nil {
				t.Fatalf("EncodeUsize(%d) failed: %v", n, err)
			}
			r := wireio.NewSliceReader(buf.Data.Bytes())
			got, err := c.DecodeUsize(r)
			if err != nil {
				t.Fatalf("DecodeUsize failed: %v", err)
			}
			if got != n {
				t.Errorf("usize round trip: got %d, want %d", got, n)
			}
		}
	}
}

func TestUint128RoundTrip(t *testing.T) {
	for _, c := range []intcodec.Codec{intcodec.Fixed, intcodec.Variable} {
		for _, typed := range []bool{true, false} {
			buf := wireio.NewBuffer(nil)
			want := u128(0x0102030405060708, 0x090a0b0c0d0e0f10)
			if err := c.EncodeUint128(buf, want, typed); err != nil {
				t.Fatalf("EncodeUint128 failed: %v", err)
			}
			r := wireio.NewSliceReader(buf.Data.Bytes())
			got, err := c.DecodeUint128(r, typed)
			if err != nil {
				t.Fatalf("DecodeUint128 failed: %v", err)
			}
			if got != want {
				t.Errorf("Uint128 round trip: got %+v, want %+v", got, want)
			}
		}
	}
}
