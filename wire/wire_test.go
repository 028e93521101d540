// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package wire_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/creachadair/tagwire"
	"github.com/creachadair/tagwire/intcodec"
	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/wire"
	"github.com/creachadair/tagwire/wireio"
)

// scenarioConfig matches spec.md §8's "fixed-length integer codec,
// variable-length length codec" scenario configuration.
var scenarioConfig = wire.Config{Int: intcodec.Fixed, Length: intcodec.Variable}

func encodeWith(t *testing.T, cfg wire.Config, f func(tagwire.Encoder) error) []byte {
	t.Helper()
	buf := wireio.NewBuffer(nil)
	if err := f(wire.NewEncoder(buf, cfg)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Data.Bytes()
}

func TestLiteralScenarios(t *testing.T) {
	tests := []struct {
		name string
		want []byte
		fn   func(tagwire.Encoder) error
	}{
		{"bool_true", []byte{0x01}, func(e tagwire.Encoder) error { return e.EncodeBool(true) }},
		{"u8_7", []byte{0x07}, func(e tagwire.Encoder) error { return e.EncodeU8(7) }},
		{"u8_200", []byte{0x1F, 0xC8}, func(e tagwire.Encoder) error { return e.EncodeU8(200) }},
		{"unit", []byte{0x60}, func(e tagwire.Encoder) error { return e.EncodeUnit() }},
		{"none", []byte{0x60}, func(e tagwire.Encoder) error { return e.EncodeNone() }},
		{"some_u8_1", []byte{0x61, 0x01}, func(e tagwire.Encoder) error {
			inner, err := e.EncodeSome()
			if err != nil {
				return err
			}
			return inner.EncodeU8(1)
		}},
		{"bytes_empty", []byte{0x20}, func(e tagwire.Encoder) error { return e.EncodeBytes(nil) }},
		{"bytes_hi", []byte{0x22, 0x68, 0x69}, func(e tagwire.Encoder) error { return e.EncodeBytes([]byte("hi")) }},
		{"sequence_1_2", []byte{0x62, 0x01, 0x02}, func(e tagwire.Encoder) error {
			seq, err := e.EncodeSequence(2)
			if err != nil {
				return err
			}
			first, err := seq.EncodeNext()
			if err != nil {
				return err
			}
			if err := first.EncodeU8(1); err != nil {
				return err
			}
			second, err := seq.EncodeNext()
			if err != nil {
				return err
			}
			if err := second.EncodeU8(2); err != nil {
				return err
			}
			return seq.Finish()
		}},
		{"variant_3_false", []byte{0x62, 0x03, 0x00}, func(e tagwire.Encoder) error {
			v, err := e.EncodeVariant()
			if err != nil {
				return err
			}
			tagEnc, err := v.EncodeTag()
			if err != nil {
				return err
			}
			if err := tagEnc.EncodeU8(3); err != nil {
				return err
			}
			body, err := v.EncodeVariant()
			if err != nil {
				return err
			}
			if err := body.EncodeBool(false); err != nil {
				return err
			}
			return v.Finish()
		}},
		{"map_5_40", []byte{0x62, 0x05, 0x1F, 0x28}, func(e tagwire.Encoder) error {
			p, err := e.EncodeMap(1)
			if err != nil {
				return err
			}
			key, err := p.EncodeFirst()
			if err != nil {
				return err
			}
			if err := key.EncodeU8(5); err != nil {
				return err
			}
			val, err := p.EncodeSecond()
			if err != nil {
				return err
			}
			if err := val.EncodeU8(40); err != nil {
				return err
			}
			return p.Finish()
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := encodeWith(t, scenarioConfig, tc.fn)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("encode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripScalars(t *testing.T) {
	for _, cfg := range []wire.Config{wire.FixedConfig, wire.VariableConfig, scenarioConfig} {
		t.Run("", func(t *testing.T) {
			buf := wireio.NewBuffer(nil)
			enc := wire.NewEncoder(buf, cfg)
			if err := enc.EncodeBool(true); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeU64(1<<63 | 7); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeI64(-12345); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeI8(-1); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeF64(math.Inf(-1)); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeUsize(42); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeIsize(-42); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeU128(num.Uint128{Hi: 1, Lo: 2}); err != nil {
				t.Fatal(err)
			}
			if err := enc.EncodeString("hello"); err != nil {
				t.Fatal(err)
			}

			dec := wire.NewDecoder(wireio.NewSliceReader(buf.Data.Bytes()), cfg)
			if b, err := dec.DecodeBool(); err != nil || b != true {
				t.Fatalf("DecodeBool = %v, %v", b, err)
			}
			if v, err := dec.DecodeU64(); err != nil || v != 1<<63|7 {
				t.Fatalf("DecodeU64 = %v, %v", v, err)
			}
			if v, err := dec.DecodeI64(); err != nil || v != -12345 {
				t.Fatalf("DecodeI64 = %v, %v", v, err)
			}
			if v, err := dec.DecodeI8(); err != nil || v != -1 {
				t.Fatalf("DecodeI8 = %v, %v", v, err)
			}
			if v, err := dec.DecodeF64(); err != nil || !math.IsInf(v, -1) {
				t.Fatalf("DecodeF64 = %v, %v", v, err)
			}
			if v, err := dec.DecodeUsize(); err != nil || v != 42 {
				t.Fatalf("DecodeUsize = %v, %v", v, err)
			}
			if v, err := dec.DecodeIsize(); err != nil || v != -42 {
				t.Fatalf("DecodeIsize = %v, %v", v, err)
			}
			if v, err := dec.DecodeU128(); err != nil || v != (num.Uint128{Hi: 1, Lo: 2}) {
				t.Fatalf("DecodeU128 = %v, %v", v, err)
			}
			got, err := dec.DecodeString(tagwire.StringVisitor{
				Any: func(s string) (interface{}, error) { return s, nil },
			})
			if err != nil || got != "hello" {
				t.Fatalf("DecodeString = %v, %v", got, err)
			}
		})
	}
}

func TestOptionUnitCollision(t *testing.T) {
	// encode_none and encode_unit produce the same bytes; decode_unit must
	// accept a None payload and vice versa, per spec's preserved collision.
	buf := wireio.NewBuffer(nil)
	enc := wire.NewEncoder(buf, wire.FixedConfig)
	if err := enc.EncodeNone(); err != nil {
		t.Fatal(err)
	}
	dec := wire.NewDecoder(wireio.NewSliceReader(buf.Data.Bytes()), wire.FixedConfig)
	if err := dec.DecodeUnit(); err != nil {
		t.Fatalf("DecodeUnit on a None payload: %v", err)
	}

	buf2 := wireio.NewBuffer(nil)
	enc2 := wire.NewEncoder(buf2, wire.FixedConfig)
	if err := enc2.EncodeUnit(); err != nil {
		t.Fatal(err)
	}
	dec2 := wire.NewDecoder(wireio.NewSliceReader(buf2.Data.Bytes()), wire.FixedConfig)
	payload, present, err := dec2.DecodeOption()
	if err != nil || present {
		t.Fatalf("DecodeOption on a unit payload: payload=%v present=%v err=%v", payload, present, err)
	}
}

func TestMapOverflowRejected(t *testing.T) {
	buf := wireio.NewBuffer(nil)
	enc := wire.NewEncoder(buf, wire.FixedConfig)
	huge := (1<<63 - 1) / 2 + 1
	if _, err := enc.EncodeMap(huge); !errors.Is(err, tagwire.ErrIntegerOverflow) {
		t.Fatalf("EncodeMap(%d) = %v, want ErrIntegerOverflow", huge, err)
	}
	if buf.Data.Len() != 0 {
		t.Fatalf("EncodeMap overflow emitted %d bytes, want 0", buf.Data.Len())
	}
}

func TestPackBound(t *testing.T) {
	cfg := wire.Config{Int: intcodec.Fixed, Length: intcodec.Fixed, PackSize: 2}
	buf := wireio.NewBuffer(nil)
	enc := wire.NewEncoder(buf, cfg)
	pack, err := enc.EncodePack()
	if err != nil {
		t.Fatal(err)
	}
	item, err := pack.Next()
	if err != nil {
		t.Fatal(err)
	}
	if err := item.EncodeU8(1); err != nil {
		t.Fatal(err)
	}
	item2, err := pack.Next()
	if err != nil {
		t.Fatal(err)
	}
	if err := item2.EncodeU8(2); err != nil {
		t.Fatal(err)
	}
	item3, err := pack.Next()
	if err != nil {
		t.Fatal(err)
	}
	if err := item3.EncodeU8(3); err == nil {
		t.Fatal("expected overflow error exceeding pack bound, got nil")
	} else if !errors.Is(err, wireio.ErrBufferOverflow) {
		t.Fatalf("EncodeU8 past pack bound = %v, want ErrBufferOverflow", err)
	}
}

func TestPackRoundTrip(t *testing.T) {
	buf := wireio.NewBuffer(nil)
	enc := wire.NewEncoder(buf, wire.FixedConfig)
	pack, err := enc.EncodePack()
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []uint8{1, 2, 3} {
		item, err := pack.Next()
		if err != nil {
			t.Fatal(err)
		}
		if err := item.EncodeU8(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := pack.Finish(); err != nil {
		t.Fatal(err)
	}

	dec := wire.NewDecoder(wireio.NewSliceReader(buf.Data.Bytes()), wire.FixedConfig)
	packDec, err := dec.DecodePack()
	if err != nil {
		t.Fatal(err)
	}
	var got []uint8
	for i := 0; i < 3; i++ {
		item, err := packDec.Next()
		if err != nil {
			t.Fatal(err)
		}
		v, err := item.DecodeU8()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]uint8{1, 2, 3}, got); diff != "" {
		t.Errorf("pack round trip mismatch (-want +got):\n%s", diff)
	}
	if _, err := packDec.Next(); !errors.Is(err, tagwire.ErrExpectedPackValue) {
		t.Fatalf("Next on exhausted pack = %v, want ErrExpectedPackValue", err)
	}
}

func TestSkipAdvances(t *testing.T) {
	buf := wireio.NewBuffer(nil)
	enc := wire.NewEncoder(buf, wire.FixedConfig)
	pairs, err := enc.EncodeMap(2)
	if err != nil {
		t.Fatal(err)
	}
	for _, kv := range [][2]uint8{{1, 100}, {2, 200}} {
		key, err := pairs.EncodeFirst()
		if err != nil {
			t.Fatal(err)
		}
		if err := key.EncodeU8(kv[0]); err != nil {
			t.Fatal(err)
		}
		val, err := pairs.EncodeSecond()
		if err != nil {
			t.Fatal(err)
		}
		if err := val.EncodeU8(kv[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := pairs.Finish(); err != nil {
		t.Fatal(err)
	}

	dec := wire.NewDecoder(wireio.NewSliceReader(buf.Data.Bytes()), wire.FixedConfig)
	pairsDec, err := dec.DecodeMap()
	if err != nil {
		t.Fatal(err)
	}
	first, err := pairsDec.Next()
	if err != nil {
		t.Fatal(err)
	}
	firstKey, err := first.First()
	if err != nil {
		t.Fatal(err)
	}
	if k, err := firstKey.DecodeU8(); err != nil || k != 1 {
		t.Fatalf("first key = %v, %v", k, err)
	}
	if ok, err := first.SkipSecond(); err != nil || !ok {
		t.Fatalf("SkipSecond = %v, %v", ok, err)
	}

	second, err := pairsDec.Next()
	if err != nil {
		t.Fatal(err)
	}
	secondKey, err := second.First()
	if err != nil {
		t.Fatal(err)
	}
	if k, err := secondKey.DecodeU8(); err != nil || k != 2 {
		t.Fatalf("second key after skip = %v, want 2 (%v)", k, err)
	}
	secondVal, err := second.Second()
	if err != nil {
		t.Fatal(err)
	}
	if v, err := secondVal.DecodeU8(); err != nil || v != 200 {
		t.Fatalf("second value = %v, %v", v, err)
	}
}

func TestDecodeBufferReplay(t *testing.T) {
	buf := wireio.NewBuffer(nil)
	enc := wire.NewEncoder(buf, wire.FixedConfig)
	if err := enc.EncodeU32(123456); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeU8(9); err != nil {
		t.Fatal(err)
	}

	dec := wire.NewDecoder(wireio.NewSliceReader(buf.Data.Bytes()), wire.FixedConfig)
	captured, err := dec.DecodeBuffer()
	if err != nil {
		t.Fatal(err)
	}
	replay, err := captured.AsDecoder()
	if err != nil {
		t.Fatal(err)
	}
	if v, err := replay.DecodeU32(); err != nil || v != 123456 {
		t.Fatalf("replayed DecodeU32 = %v, %v", v, err)
	}
	if v, err := dec.DecodeU8(); err != nil || v != 9 {
		t.Fatalf("original decoder after DecodeBuffer = %v, %v", v, err)
	}
}

func TestVariableOverlongIntegerRejected(t *testing.T) {
	// ceil(32/7) = 5 bytes is the max allowed for a 32-bit value; here the
	// fifth byte still has its high bit set, announcing a sixth, which is
	// overlong.
	raw := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	if _, err := intcodec.Variable.DecodeUntypedUnsigned(wireio.NewSliceReader(raw), 32); !errors.Is(err, intcodec.ErrOverlong) {
		t.Fatalf("overlong u32 = %v, want ErrOverlong", err)
	}
}
