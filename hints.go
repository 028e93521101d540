// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagwire

import "fmt"

// NumberHint enumerates the fourteen primitive numeric widths a Decoder can
// pre-announce, plus Any when the format cannot say more than "a number".
type NumberHint int

const (
	NumberAny NumberHint = iota
	NumberU8
	NumberU16
	NumberU32
	NumberU64
	NumberU128
	NumberI8
	NumberI16
	NumberI32
	NumberI64
	NumberI128
	NumberUsize
	NumberIsize
	NumberF32
	NumberF64
)

func (h NumberHint) String() string {
	switch h {
	case NumberAny:
		return "any number"
	case NumberU8:
		return "u8"
	case NumberU16:
		return "u16"
	case NumberU32:
		return "u32"
	case NumberU64:
		return "u64"
	case NumberU128:
		return "u128"
	case NumberI8:
		return "i8"
	case NumberI16:
		return "i16"
	case NumberI32:
		return "i32"
	case NumberI64:
		return "i64"
	case NumberI128:
		return "i128"
	case NumberUsize:
		return "usize"
	case NumberIsize:
		return "isize"
	case NumberF32:
		return "f32"
	case NumberF64:
		return "f64"
	default:
		return fmt.Sprintf("NumberHint(%d)", int(h))
	}
}

// LengthHint describes what a Decoder knows about an upcoming length: either
// nothing (Any) or an exact count.
type LengthHint struct {
	Exact bool
	N     int
}

// AnyLength is the zero-value LengthHint meaning "unknown".
var AnyLength = LengthHint{}

// ExactLength constructs a LengthHint announcing exactly n items.
func ExactLength(n int) LengthHint { return LengthHint{Exact: true, N: n} }

// SizeHint returns a capacity hint suitable for slice preallocation: n if
// exact, 0 otherwise.
func (h LengthHint) SizeHint() int {
	if h.Exact {
		return h.N
	}
	return 0
}

func (h LengthHint) String() string {
	if h.Exact {
		return fmt.Sprintf("exactly %d", h.N)
	}
	return "unknown length"
}

// TypeHintKind identifies which Value kind, if any, a TypeHint describes.
type TypeHintKind int

const (
	HintAny TypeHintKind = iota
	HintUnit
	HintBool
	HintChar
	HintNumber
	HintBytes
	HintString
	HintSequence
	HintMap
	HintVariant
	HintPack
)

// TypeHint is a best-effort announcement of the shape of the next value a
// Decoder is prepared to produce, returned by Decoder.TypeHint.
type TypeHint struct {
	Kind   TypeHintKind
	Number NumberHint // valid when Kind == HintNumber
	Length LengthHint // valid when Kind is Bytes, String, Sequence, Map, or Pack
}

func (h TypeHint) String() string {
	switch h.Kind {
	case HintAny:
		return "any type"
	case HintUnit:
		return "unit"
	case HintBool:
		return "bool"
	case HintChar:
		return "char"
	case HintNumber:
		return h.Number.String()
	case HintBytes:
		return fmt.Sprintf("bytes (%s)", h.Length)
	case HintString:
		return fmt.Sprintf("string (%s)", h.Length)
	case HintSequence:
		return fmt.Sprintf("sequence (%s)", h.Length)
	case HintMap:
		return fmt.Sprintf("map (%s)", h.Length)
	case HintVariant:
		return "variant"
	case HintPack:
		return fmt.Sprintf("pack (%s)", h.Length)
	default:
		return fmt.Sprintf("TypeHint(%d)", int(h.Kind))
	}
}
