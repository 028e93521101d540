// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package wireio_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/tagwire/wireio"
)

func TestSliceReaderBorrow(t *testing.T) {
	r := wireio.NewSliceReader([]byte("hello world"))
	got, ok := r.ReadBorrowed(5)
	if !ok || string(got) != "hello" {
		t.Fatalf("ReadBorrowed(5) = %q, %v; want %q, true", got, ok, "hello")
	}
	if r.Position() != 5 || r.Remaining() != 6 {
		t.Errorf("Position/Remaining = %d/%d; want 5/6", r.Position(), r.Remaining())
	}
	if _, ok := r.ReadBorrowed(100); ok {
		t.Error("ReadBorrowed(100) succeeded past end of input")
	}
}

func TestStreamReaderNoBorrow(t *testing.T) {
	r := wireio.NewStreamReader(strings.NewReader("xyz"))
	if _, ok := r.ReadBorrowed(1); ok {
		t.Error("StreamReader.ReadBorrowed reported success; want false always")
	}
	b, err := r.ReadByte()
	if err != nil || b != 'x' {
		t.Fatalf("ReadByte = %q, %v; want 'x', nil", b, err)
	}
}

func TestStreamReaderOutOfInput(t *testing.T) {
	r := wireio.NewStreamReader(strings.NewReader(""))
	if _, err := r.ReadByte(); !errors.Is(err, wireio.ErrOutOfInput) {
		t.Errorf("ReadByte error = %v; want ErrOutOfInput", err)
	}
}

func TestFixedBytesOverflow(t *testing.T) {
	f := wireio.NewFixedBytes(4)
	if err := f.WriteBytes([]byte("ab")); err != nil {
		t.Fatalf("WriteBytes(ab) failed: %v", err)
	}
	if err := f.WriteBytes([]byte("cd")); err != nil {
		t.Fatalf("WriteBytes(cd) failed: %v", err)
	}
	before := append([]byte(nil), f.Bytes()...)
	if err := f.WriteByte('e'); !errors.Is(err, wireio.ErrBufferOverflow) {
		t.Errorf("WriteByte past capacity = %v; want ErrBufferOverflow", err)
	}
	if string(f.Bytes()) != string(before) {
		t.Errorf("overflow write left partial state: got %q, want %q", f.Bytes(), before)
	}
}
