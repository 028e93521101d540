// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tag_test

import (
	"testing"

	"github.com/creachadair/tagwire/tag"
)

func TestWithLen(t *testing.T) {
	tests := []struct {
		n        int
		wantByte byte
		wantEmb  bool
	}{
		{0, 0x60, true},
		{30, 0x7e, true},
		{31, 0x7f, false},
		{1000, 0x7f, false},
	}
	for _, test := range tests {
		got, emb := tag.WithLen(tag.Sequence, test.n)
		if got.Byte() != test.wantByte || emb != test.wantEmb {
			t.Errorf("WithLen(Sequence, %d) = %#x, %v; want %#x, %v",
				test.n, got.Byte(), emb, test.wantByte, test.wantEmb)
		}
	}
}

func TestWithByte(t *testing.T) {
	got, emb := tag.WithByte(tag.Byte, 7)
	if !emb || got.Byte() != 0x07 {
		t.Errorf("WithByte(Byte, 7) = %#x, %v; want 0x07, true", got.Byte(), emb)
	}
	got, emb = tag.WithByte(tag.Byte, 200)
	if emb || got.Byte() != 0x1f {
		t.Errorf("WithByte(Byte, 200) = %#x, %v; want 0x1f, false", got.Byte(), emb)
	}
}

func TestRoundTrip(t *testing.T) {
	want := tag.New(tag.Prefix, 12)
	got := tag.Parse(want.Byte())
	if got.Kind() != tag.Prefix || got.Data() != 12 {
		t.Errorf("Parse(%#x) = kind=%v data=%d; want Prefix, 12", want.Byte(), got.Kind(), got.Data())
	}
}

func TestNewPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(Byte, 32) did not panic")
		}
	}()
	tag.New(tag.Byte, 32)
}
