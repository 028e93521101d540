// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package wire_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/wire"
)

type Address struct {
	Street string `tagwire:"1"`
	City   string `tagwire:"2"`
}

type Person struct {
	Name    string   `tagwire:"1"`
	Age     uint8    `tagwire:"2"`
	Tags    []string `tagwire:"3"`
	Scores  []uint8  `tagwire:"4,pack"`
	Address *Address `tagwire:"5"`
	Huge    num.Uint128 `tagwire:"6"`
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := Person{
		Name:   "Ada",
		Age:    36,
		Tags:   []string{"mathematician", "programmer"},
		Scores: []uint8{10, 20, 30},
		Address: &Address{
			Street: "12 Main St",
			City:   "London",
		},
		Huge: num.Uint128{Hi: 1, Lo: 2},
	}
	data, err := wire.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out Person
	if err := wire.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalUnmarshalNilPointer(t *testing.T) {
	in := Person{Name: "X", Tags: []string{}, Scores: []uint8{}}
	data, err := wire.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out Person
	if err := wire.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Address != nil {
		t.Errorf("Address = %+v, want nil", out.Address)
	}
}

func TestUnmarshalScalars(t *testing.T) {
	data, err := wire.Marshal(int64(-12345))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var n int64
	if err := wire.Unmarshal(data, &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if n != -12345 {
		t.Errorf("n = %d, want -12345", n)
	}
}
