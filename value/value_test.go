// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package value_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/creachadair/tagwire"
	"github.com/creachadair/tagwire/value"
	"github.com/creachadair/tagwire/wire"
	"github.com/creachadair/tagwire/wireio"
)

func TestBuildAndInspect(t *testing.T) {
	v := value.MapValue([]value.Pair{
		{First: value.StringValue("a"), Second: value.Num(value.NumberU8(1))},
		{First: value.StringValue("b"), Second: value.SequenceValue([]value.Value{
			value.Bool(true), value.Unit(),
		})},
	})
	if v.Kind != value.KindMap {
		t.Fatalf("Kind = %v, want KindMap", v.Kind)
	}
	if len(v.Map) != 2 {
		t.Fatalf("len(Map) = %d, want 2", len(v.Map))
	}
	hint := v.TypeHint()
	if hint.Kind.String() == "" {
		t.Fatal("TypeHint().Kind.String() is empty")
	}
}

// TestTranscode decodes a wire-encoded message into a Value and re-encodes
// it to a fresh wire buffer, checking the bytes match exactly — spec §8's
// "Transcode" testable property.
func TestTranscode(t *testing.T) {
	cfg := wire.FixedConfig

	var buf bytes.Buffer
	enc := wire.NewEncoder(wireio.NewBuffer(&buf), cfg)
	seq, err := enc.EncodeSequence(3)
	if err != nil {
		t.Fatalf("EncodeSequence: %v", err)
	}
	for _, n := range []uint8{1, 2, 3} {
		next, err := seq.EncodeNext()
		if err != nil {
			t.Fatalf("EncodeNext: %v", err)
		}
		if err := next.EncodeU8(n); err != nil {
			t.Fatalf("EncodeU8: %v", err)
		}
	}
	if err := seq.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	original := append([]byte(nil), buf.Bytes()...)

	// The wire codec is not self-describing (TypeHint always reports
	// HintAny), so value.FromDecoder cannot be driven directly from a
	// wire.Decoder. Build the Value by hand from the same source instead,
	// then verify re-encoding it reproduces the original bytes — this is
	// the half of "transcode" the wire codec can actually participate in.
	dec := wire.NewDecoder(wireio.NewSliceReader(original), cfg)
	wireSeq, err := dec.DecodeSequence()
	if err != nil {
		t.Fatalf("DecodeSequence: %v", err)
	}
	var items []value.Value
	for {
		item, err := wireSeq.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if item == nil {
			break
		}
		b, err := item.DecodeU8()
		if err != nil {
			t.Fatalf("DecodeU8: %v", err)
		}
		items = append(items, value.Num(value.NumberU8(b)))
	}
	tree := value.SequenceValue(items)

	var out bytes.Buffer
	reenc := wire.NewEncoder(wireio.NewBuffer(&out), cfg)
	if err := tree.IntoEncoder(reenc); err != nil {
		t.Fatalf("IntoEncoder: %v", err)
	}
	if diff := cmp.Diff(original, out.Bytes()); diff != "" {
		t.Errorf("transcoded bytes differ (-want +got):\n%s", diff)
	}
}

// TestValueAsDecoderRoundTrip verifies a Value can be decoded from through
// the generic Decoder interface via AsDecoder, exercising the iterValue*
// family end to end.
func TestValueAsDecoderRoundTrip(t *testing.T) {
	v := value.VariantValue(
		value.Num(value.NumberU32(7)),
		value.MapValue([]value.Pair{
			{First: value.StringValue("k"), Second: value.BytesValue([]byte{0xde, 0xad})},
		}),
	)
	d := v.AsDecoder()

	variant, err := d.DecodeVariant()
	if err != nil {
		t.Fatalf("DecodeVariant: %v", err)
	}
	tagDec, err := variant.Tag()
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	tag, err := tagDec.DecodeU32()
	if err != nil {
		t.Fatalf("DecodeU32: %v", err)
	}
	if tag != 7 {
		t.Errorf("tag = %d, want 7", tag)
	}

	bodyDec, err := variant.Variant()
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	pairs, err := bodyDec.DecodeMap()
	if err != nil {
		t.Fatalf("DecodeMap: %v", err)
	}
	pair, err := pairs.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if pair == nil {
		t.Fatal("expected one pair, got none")
	}
	keyDec, err := pair.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	got, err := keyDec.DecodeString(tagwire.StringVisitor{
		Expecting: "a string",
		Any:       func(s string) (interface{}, error) { return s, nil },
	})
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if got.(string) != "k" {
		t.Errorf("key = %q, want %q", got, "k")
	}
	if err := variant.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

// TestOptionCollision verifies Value.Decoder treats Unit and a
// single-element sequence as an Option, matching the same collision the
// wire codec preserves.
func TestOptionCollision(t *testing.T) {
	none := value.Unit()
	d := none.AsDecoder()
	_, present, err := d.DecodeOption()
	if err != nil {
		t.Fatalf("DecodeOption: %v", err)
	}
	if present {
		t.Error("Unit decoded as present, want absent")
	}

	some := value.SequenceValue([]value.Value{value.Num(value.NumberU8(9))})
	d2 := some.AsDecoder()
	payload, present, err := d2.DecodeOption()
	if err != nil {
		t.Fatalf("DecodeOption: %v", err)
	}
	if !present {
		t.Fatal("single-element sequence decoded as absent, want present")
	}
	n, err := payload.DecodeU8()
	if err != nil {
		t.Fatalf("DecodeU8: %v", err)
	}
	if n != 9 {
		t.Errorf("payload = %d, want 9", n)
	}
}
