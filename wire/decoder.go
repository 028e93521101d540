// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package wire

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/creachadair/tagwire"
	"github.com/creachadair/tagwire/intcodec"
	"github.com/creachadair/tagwire/num"
	"github.com/creachadair/tagwire/tag"
	"github.com/creachadair/tagwire/wireio"
)

// Decoder is the wire format's implementation of tagwire.Decoder.
type Decoder struct {
	r   wireio.Reader
	cfg Config
}

// NewDecoder constructs a Decoder reading from r under cfg.
func NewDecoder(r wireio.Reader, cfg Config) *Decoder {
	return &Decoder{r: r, cfg: cfg}
}

var _ tagwire.Decoder = (*Decoder)(nil)

func (d *Decoder) Expecting() string { return "a type supported by the wire decoder" }

// TypeHint always reports HintAny: the wire format is not self-describing,
// by design (spec's Option/Unit/empty-sequence collision means a tag byte
// alone cannot say which Value kind produced it). Callers that need shape
// dispatch belong on package value, not directly on a wire Decoder.
func (d *Decoder) TypeHint() (tagwire.TypeHint, error) {
	return tagwire.TypeHint{Kind: tagwire.HintAny}, nil
}

func (d *Decoder) readTag() (tag.Tag, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	return tag.Parse(b), nil
}

func expectKind(t tag.Tag, want tag.Kind, err error) error {
	if t.Kind() != want {
		return tagwire.Expected(err, t)
	}
	return nil
}

// readLength interprets t's data field as an embedded length, or reads the
// continuation payload via the length codec if t carries the sentinel.
func (d *Decoder) readLength(t tag.Tag) (int, error) {
	if !t.IsContinuation() {
		return int(t.Data()), nil
	}
	return d.cfg.Length.DecodeUsize(d.r)
}

func (d *Decoder) DecodeUnit() error {
	t, err := d.readTag()
	if err != nil {
		return err
	}
	if err := expectKind(t, tag.Sequence, tagwire.ErrExpectedUnit); err != nil {
		return err
	}
	if t.Data() != 0 {
		return tagwire.Expected(tagwire.ErrExpectedUnit, t)
	}
	return nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	t, err := d.readTag()
	if err != nil {
		return false, err
	}
	if err := expectKind(t, tag.Byte, tagwire.ErrExpectedBool); err != nil {
		return false, err
	}
	switch t.Data() {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, tagwire.Expected(tagwire.ErrExpectedBool, t)
	}
}

func (d *Decoder) DecodeChar() (rune, error) {
	v, err := d.DecodeU32()
	if err != nil {
		return 0, err
	}
	r := rune(v)
	if v > utf8.MaxRune || !utf8.ValidRune(r) {
		return 0, fmt.Errorf("%w: %#x is not a valid unicode scalar value", tagwire.ErrInvalidChar, v)
	}
	return r, nil
}

func (d *Decoder) DecodeU8() (uint8, error) {
	t, err := d.readTag()
	if err != nil {
		return 0, err
	}
	if err := expectKind(t, tag.Byte, tagwire.ErrExpectedNumber); err != nil {
		return 0, err
	}
	if !t.IsContinuation() {
		return t.Data(), nil
	}
	return d.r.ReadByte()
}

func (d *Decoder) DecodeU16() (uint16, error) {
	v, err := d.cfg.Int.DecodeUnsigned(d.r, 16)
	return uint16(v), err
}

func (d *Decoder) DecodeU32() (uint32, error) {
	v, err := d.cfg.Int.DecodeUnsigned(d.r, 32)
	return uint32(v), err
}

func (d *Decoder) DecodeU64() (uint64, error) {
	return d.cfg.Int.DecodeUnsigned(d.r, 64)
}

func (d *Decoder) DecodeU128() (num.Uint128, error) {
	return d.cfg.Int.DecodeUint128(d.r, true)
}

func (d *Decoder) DecodeI8() (int8, error) {
	v, err := d.DecodeU8()
	return int8(v), err
}

func (d *Decoder) DecodeI16() (int16, error) {
	v, err := intcodec.DecodeSigned(d.cfg.Int, d.r, 16)
	return int16(v), err
}

func (d *Decoder) DecodeI32() (int32, error) {
	v, err := intcodec.DecodeSigned(d.cfg.Int, d.r, 32)
	return int32(v), err
}

func (d *Decoder) DecodeI64() (int64, error) {
	return intcodec.DecodeSigned(d.cfg.Int, d.r, 64)
}

func (d *Decoder) DecodeI128() (num.Int128, error) {
	return intcodec.DecodeInt128(d.cfg.Int, d.r, true)
}

func (d *Decoder) DecodeUsize() (int, error) {
	return d.cfg.Length.DecodeTypedUsize(d.r)
}

func (d *Decoder) DecodeIsize() (int, error) {
	v, err := intcodec.DecodeSigned(d.cfg.Length, d.r, 64)
	return int(v), err
}

func (d *Decoder) DecodeF32() (float32, error) {
	v, err := d.DecodeU32()
	return math.Float32frombits(v), err
}

func (d *Decoder) DecodeF64() (float64, error) {
	v, err := d.DecodeU64()
	return math.Float64frombits(v), err
}

func (d *Decoder) DecodeArray(n int) ([]byte, error) {
	data, err := d.decodeTaggedBytes()
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: array wants %d bytes, got %d", tagwire.ErrArrayOutOfBounds, n, len(data))
	}
	return data, nil
}

// decodeTaggedBytes reads a Tag(Prefix, ...)-framed byte string: the shape
// every wire-level bytes/string/pack payload shares.
func (d *Decoder) decodeTaggedBytes() ([]byte, error) {
	t, err := d.readTag()
	if err != nil {
		return nil, err
	}
	if err := expectKind(t, tag.Prefix, tagwire.ErrExpectedBytes); err != nil {
		return nil, err
	}
	n, err := d.readLength(t)
	if err != nil {
		return nil, err
	}
	if borrowed, ok := d.r.ReadBorrowed(n); ok {
		return borrowed, nil
	}
	return d.r.ReadBytes(n)
}

func (d *Decoder) DecodeBytes(visitor tagwire.BytesVisitor) (interface{}, error) {
	t, err := d.readTag()
	if err != nil {
		return nil, err
	}
	if err := expectKind(t, tag.Prefix, tagwire.ErrExpectedBytes); err != nil {
		return nil, err
	}
	n, err := d.readLength(t)
	if err != nil {
		return nil, err
	}
	if borrowed, ok := d.r.ReadBorrowed(n); ok {
		return visitor.VisitBorrowed(borrowed)
	}
	owned, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return visitor.VisitOwned(owned)
}

func (d *Decoder) DecodeString(visitor tagwire.StringVisitor) (interface{}, error) {
	t, err := d.readTag()
	if err != nil {
		return nil, err
	}
	if err := expectKind(t, tag.Prefix, tagwire.ErrExpectedString); err != nil {
		return nil, err
	}
	n, err := d.readLength(t)
	if err != nil {
		return nil, err
	}
	if borrowed, ok := d.r.ReadBorrowed(n); ok {
		if !utf8.Valid(borrowed) {
			return nil, tagwire.ErrInvalidUTF8
		}
		return visitor.VisitBorrowed(string(borrowed))
	}
	owned, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(owned) {
		return nil, tagwire.ErrInvalidUTF8
	}
	return visitor.VisitOwned(string(owned))
}

func (d *Decoder) DecodeOption() (tagwire.Decoder, bool, error) {
	t, err := d.readTag()
	if err != nil {
		return nil, false, err
	}
	if t.Kind() != tag.Sequence {
		return nil, false, tagwire.Expected(tagwire.ErrInvalidType, t)
	}
	switch t.Data() {
	case 0:
		return nil, false, nil
	case 1:
		return d, true, nil
	default:
		return nil, false, tagwire.Expected(tagwire.ErrInvalidType, t)
	}
}

func (d *Decoder) decodeLengthTaggedSequence() (int, error) {
	t, err := d.readTag()
	if err != nil {
		return 0, err
	}
	if err := expectKind(t, tag.Sequence, tagwire.ErrExpectedSequence); err != nil {
		return 0, err
	}
	return d.readLength(t)
}

func (d *Decoder) DecodeSequence() (tagwire.SequenceDecoder, error) {
	n, err := d.decodeLengthTaggedSequence()
	if err != nil {
		return nil, err
	}
	return &sequenceDecoder{d: d, remaining: n}, nil
}

func (d *Decoder) DecodeTuple(int) (tagwire.SequenceDecoder, error) {
	return d.DecodeSequence()
}

func pairCount(n int, badErr error) (int, error) {
	if n%2 != 0 {
		return 0, fmt.Errorf("%w: odd length %d for a paired sequence", badErr, n)
	}
	return n / 2, nil
}

func (d *Decoder) DecodeMap() (tagwire.PairsDecoder, error) {
	total, err := d.decodeLengthTaggedSequence()
	if err != nil {
		return nil, err
	}
	n, err := pairCount(total, tagwire.ErrExpectedMap)
	if err != nil {
		return nil, err
	}
	return &pairsDecoder{d: d, remaining: n, skip: func() (bool, error) { return skipValue(d.r, d.cfg) }}, nil
}

func (d *Decoder) DecodeStruct(int) (tagwire.PairsDecoder, error) {
	return d.DecodeMap()
}

func (d *Decoder) DecodeVariant() (tagwire.VariantDecoder, error) {
	t, err := d.readTag()
	if err != nil {
		return nil, err
	}
	if err := expectKind(t, tag.Sequence, tagwire.ErrExpectedVariant); err != nil {
		return nil, err
	}
	if t.Data() != 2 {
		return nil, tagwire.Expected(tagwire.ErrExpectedVariant, t)
	}
	return &variantDecoder{d: d, skip: func() (bool, error) { return skipValue(d.r, d.cfg) }}, nil
}

func (d *Decoder) DecodePack() (tagwire.PackDecoder, error) {
	data, err := d.decodeTaggedBytes()
	if err != nil {
		return nil, err
	}
	return &packDecoder{r: wireio.NewSliceReader(data), cfg: d.cfg}, nil
}

func (d *Decoder) DecodeBuffer() (tagwire.Buffer, error) {
	sr, ok := d.r.(*wireio.SliceReader)
	if !ok {
		return nil, fmt.Errorf("wire: DecodeBuffer requires an in-memory source, got %T", d.r)
	}
	start := sr.Position()
	if _, err := skipValue(d.r, d.cfg); err != nil {
		return nil, err
	}
	return &replayBuffer{cfg: d.cfg, data: sr.Slice(start, sr.Position())}, nil
}

// replayBuffer implements tagwire.Buffer by retaining the exact byte span a
// value occupied, so AsDecoder can decode it again from the start without
// disturbing the position of the Decoder that produced it. This mirrors the
// original protocol's AsDecoder/decode_buffer re-entrant buffering hook.
type replayBuffer struct {
	cfg  Config
	data []byte
}

func (b *replayBuffer) AsDecoder() (tagwire.Decoder, error) {
	return NewDecoder(wireio.NewSliceReader(b.data), b.cfg), nil
}

// skipFunc discards the next value without decoding it and reports whether
// the reader was advanced by doing so.
type skipFunc func() (bool, error)

type sequenceDecoder struct {
	d         tagwire.Decoder
	remaining int
}

func (s *sequenceDecoder) SizeHint() int { return s.remaining }

func (s *sequenceDecoder) Next() (tagwire.Decoder, error) {
	if s.remaining == 0 {
		return nil, nil
	}
	s.remaining--
	return s.d, nil
}

type pairsDecoder struct {
	d         tagwire.Decoder
	remaining int
	skip      skipFunc
}

func (p *pairsDecoder) SizeHint() int { return p.remaining }

func (p *pairsDecoder) Next() (tagwire.PairDecoder, error) {
	if p.remaining == 0 {
		return nil, nil
	}
	p.remaining--
	return &pairDecoder{d: p.d, skip: p.skip}, nil
}

type pairDecoder struct {
	d    tagwire.Decoder
	skip skipFunc
}

func (p *pairDecoder) First() (tagwire.Decoder, error)  { return p.d, nil }
func (p *pairDecoder) Second() (tagwire.Decoder, error) { return p.d, nil }
func (p *pairDecoder) SkipSecond() (bool, error)        { return p.skip() }

type variantDecoder struct {
	d    tagwire.Decoder
	skip skipFunc
}

func (v *variantDecoder) Tag() (tagwire.Decoder, error)     { return v.d, nil }
func (v *variantDecoder) Variant() (tagwire.Decoder, error) { return v.d, nil }
func (v *variantDecoder) SkipVariant() (bool, error)        { return v.skip() }
func (v *variantDecoder) End() error                        { return nil }

// packDecoder reads items from a pack body through the untagged storage
// decoder. The pack's own element count is not recorded on the wire (only
// its byte span is); a caller asking for one element more than the schema
// provides for gets ErrExpectedPackValue once the staged reader is empty.
type packDecoder struct {
	r   wireio.Reader
	cfg Config
}

func (p *packDecoder) Next() (tagwire.Decoder, error) {
	if p.r.Remaining() == 0 {
		return nil, tagwire.ErrExpectedPackValue
	}
	return &storageDecoder{r: p.r, cfg: p.cfg}, nil
}

// skipValue reads one value at the current reader position and discards
// its payload without allocating a Value for it, honoring the "skip must
// still advance the reader" requirement from spec.md's open questions.
//
// It assumes the configured Int and Length codecs use the same
// byte-per-group scheme (true of both standard {fixed,fixed} and
// {variable,variable} configurations); a Config mixing Fixed and Variable
// cannot be losslessly skipped without also knowing which of the two
// codecs produced a given Continuation tag, which the wire format does not
// record.
func skipValue(r wireio.Reader, cfg Config) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	t := tag.Parse(b)
	switch t.Kind() {
	case tag.Byte:
		if t.IsContinuation() {
			if _, err := r.ReadByte(); err != nil {
				return false, err
			}
		}
		return true, nil
	case tag.Prefix:
		n, err := skipLength(r, cfg, t)
		if err != nil {
			return false, err
		}
		if _, err := r.ReadBytes(n); err != nil {
			return false, err
		}
		return true, nil
	case tag.Continuation:
		if cfg.Int == intcodec.Variable {
			if err := skipVariableGroups(r); err != nil {
				return false, err
			}
			return true, nil
		}
		if _, err := r.ReadBytes(int(t.Data())); err != nil {
			return false, err
		}
		return true, nil
	case tag.Sequence:
		n, err := skipLength(r, cfg, t)
		if err != nil {
			return false, err
		}
		for i := 0; i < n; i++ {
			if _, err := skipValue(r, cfg); err != nil {
				return false, err
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: cannot skip tag %v", tagwire.ErrInvalidType, t)
	}
}

func skipLength(r wireio.Reader, cfg Config, t tag.Tag) (int, error) {
	if !t.IsContinuation() {
		return int(t.Data()), nil
	}
	return cfg.Length.DecodeUsize(r)
}

func skipVariableGroups(r wireio.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b&0x80 == 0 {
			return nil
		}
	}
}
