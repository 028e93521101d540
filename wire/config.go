// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package wire implements the tag-prefixed, length-embedding wire format
// described in spec.md §4.5 and §6: a concrete Encoder/Decoder pair over
// package wireio, delegating integers and lengths to package intcodec and
// discriminating shapes with package tag.
package wire

import "github.com/creachadair/tagwire/intcodec"

// DefaultPackSize is the capacity of the staging buffer encode_pack uses
// when a Config does not specify one. Packs whose combined encoded size
// exceeds this bound fail closed with wireio.ErrBufferOverflow rather than
// spilling onto the heap, per spec §4.4.
const DefaultPackSize = 4096

// Config selects the integer and length codecs a wire Encoder/Decoder pair
// uses, corresponding to spec.md's I (integer) and L (length) type
// parameters.
type Config struct {
	Int      intcodec.Codec
	Length   intcodec.Codec
	PackSize int
}

func (c Config) packSize() int {
	if c.PackSize > 0 {
		return c.PackSize
	}
	return DefaultPackSize
}

// FixedConfig pairs the little-endian integer codec with itself for both
// integers and lengths, the {fixed, fixed} combination spec §6 requires.
var FixedConfig = Config{Int: intcodec.Fixed, Length: intcodec.Fixed}

// VariableConfig pairs the 7-bit continuation codec with itself for both
// integers and lengths, the {variable, variable} combination spec §6
// requires.
var VariableConfig = Config{Int: intcodec.Variable, Length: intcodec.Variable}
