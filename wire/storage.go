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

// storageEncoder is the untagged sibling of Encoder (spec's "storage
// codec", C7): every scalar is written as a bare payload with no Tag byte,
// since a pack's schema is already known to both ends. It is only reached
// through PackEncoder.Next, never constructed directly by callers.
type storageEncoder struct {
	w   wireio.Writer
	cfg Config
}

var _ tagwire.Encoder = (*storageEncoder)(nil)

func (e *storageEncoder) Expecting() string { return "a type supported by the storage encoder" }

func (e *storageEncoder) EncodeUnit() error       { return nil }
func (e *storageEncoder) EncodeUnitStruct() error { return nil }

func (e *storageEncoder) EncodeBool(value bool) error {
	var v byte
	if value {
		v = 1
	}
	return e.w.WriteByte(v)
}

func (e *storageEncoder) EncodeChar(value rune) error { return e.EncodeU32(uint32(value)) }

func (e *storageEncoder) EncodeU8(value uint8) error { return e.w.WriteByte(value) }

func (e *storageEncoder) EncodeU16(value uint16) error {
	return e.cfg.Int.EncodeUntypedUnsigned(e.w, 16, uint64(value))
}

func (e *storageEncoder) EncodeU32(value uint32) error {
	return e.cfg.Int.EncodeUntypedUnsigned(e.w, 32, uint64(value))
}

func (e *storageEncoder) EncodeU64(value uint64) error {
	return e.cfg.Int.EncodeUntypedUnsigned(e.w, 64, value)
}

func (e *storageEncoder) EncodeU128(value num.Uint128) error {
	return e.cfg.Int.EncodeUint128(e.w, value, false)
}

func (e *storageEncoder) EncodeI8(value int8) error { return e.EncodeU8(uint8(value)) }

func (e *storageEncoder) EncodeI16(value int16) error {
	return intcodec.EncodeUntypedSigned(e.cfg.Int, e.w, 16, int64(value))
}

func (e *storageEncoder) EncodeI32(value int32) error {
	return intcodec.EncodeUntypedSigned(e.cfg.Int, e.w, 32, int64(value))
}

func (e *storageEncoder) EncodeI64(value int64) error {
	return intcodec.EncodeUntypedSigned(e.cfg.Int, e.w, 64, value)
}

func (e *storageEncoder) EncodeI128(value num.Int128) error {
	return intcodec.EncodeInt128(e.cfg.Int, e.w, value, false)
}

func (e *storageEncoder) EncodeUsize(value int) error {
	if value < 0 {
		return fmt.Errorf("%w: negative usize %d", tagwire.ErrIntegerOverflow, value)
	}
	return e.cfg.Length.EncodeUsize(e.w, value)
}

func (e *storageEncoder) EncodeIsize(value int) error {
	return intcodec.EncodeUntypedSigned(e.cfg.Length, e.w, 64, int64(value))
}

func (e *storageEncoder) EncodeF32(value float32) error { return e.EncodeU32(math.Float32bits(value)) }
func (e *storageEncoder) EncodeF64(value float64) error { return e.EncodeU64(math.Float64bits(value)) }

func (e *storageEncoder) EncodeArray(array []byte) error { return e.EncodeBytes(array) }

func (e *storageEncoder) EncodeBytes(data []byte) error {
	if err := e.cfg.Length.EncodeUsize(e.w, len(data)); err != nil {
		return err
	}
	return e.w.WriteBytes(data)
}

func (e *storageEncoder) EncodeBytesVectored(vectors [][]byte) error {
	total := 0
	for _, v := range vectors {
		total += len(v)
	}
	if err := e.cfg.Length.EncodeUsize(e.w, total); err != nil {
		return err
	}
	for _, v := range vectors {
		if err := e.w.WriteBytes(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *storageEncoder) EncodeString(s string) error { return e.EncodeBytes([]byte(s)) }

func (e *storageEncoder) EncodeSome() (tagwire.Encoder, error) {
	if err := e.w.WriteByte(1); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *storageEncoder) EncodeNone() error { return e.w.WriteByte(0) }

func (e *storageEncoder) EncodeSequence(length int) (tagwire.SequenceEncoder, error) {
	if err := e.cfg.Length.EncodeUsize(e.w, length); err != nil {
		return nil, err
	}
	return (*storageSequenceEncoder)(e), nil
}

func (e *storageEncoder) EncodeTuple(length int) (tagwire.SequenceEncoder, error) {
	return e.EncodeSequence(length)
}

func (e *storageEncoder) EncodeMap(length int) (tagwire.PairEncoder, error) {
	n, err := doubled(length)
	if err != nil {
		return nil, err
	}
	if err := e.cfg.Length.EncodeUsize(e.w, n); err != nil {
		return nil, err
	}
	return (*storagePairEncoder)(e), nil
}

func (e *storageEncoder) EncodeStruct(length int) (tagwire.PairEncoder, error) {
	return e.EncodeMap(length)
}

func (e *storageEncoder) EncodeVariant() (tagwire.VariantEncoder, error) {
	return (*storageVariantEncoder)(e), nil
}

func (e *storageEncoder) EncodePack() (tagwire.PackEncoder, error) {
	return newPackEncoder(e.w, e.cfg), nil
}

type storageSequenceEncoder storageEncoder

func (s *storageSequenceEncoder) EncodeNext() (tagwire.Encoder, error) {
	return (*storageEncoder)(s), nil
}
func (s *storageSequenceEncoder) Finish() error { return nil }

type storagePairEncoder storageEncoder

func (p *storagePairEncoder) EncodeFirst() (tagwire.Encoder, error)  { return (*storageEncoder)(p), nil }
func (p *storagePairEncoder) EncodeSecond() (tagwire.Encoder, error) { return (*storageEncoder)(p), nil }
func (p *storagePairEncoder) Finish() error                          { return nil }

type storageVariantEncoder storageEncoder

func (v *storageVariantEncoder) EncodeTag() (tagwire.Encoder, error) {
	return (*storageEncoder)(v), nil
}
func (v *storageVariantEncoder) EncodeVariant() (tagwire.Encoder, error) {
	return (*storageEncoder)(v), nil
}
func (v *storageVariantEncoder) Finish() error { return nil }

// packEncoder stages items written through a storageEncoder into a
// fixed-capacity buffer and flushes them as one length-prefixed value on
// Finish, per spec §4.4's pack algorithm.
type packEncoder struct {
	dest  wireio.Writer
	cfg   Config
	stage *wireio.FixedBytes
}

func newPackEncoder(dest wireio.Writer, cfg Config) *packEncoder {
	return &packEncoder{dest: dest, cfg: cfg, stage: wireio.NewFixedBytes(cfg.packSize())}
}

func (p *packEncoder) Next() (tagwire.Encoder, error) {
	return &storageEncoder{w: p.stage, cfg: p.cfg}, nil
}

func (p *packEncoder) Finish() error {
	t, embedded := tag.WithLen(tag.Prefix, p.stage.Len())
	if err := p.dest.WriteByte(t.Byte()); err != nil {
		return err
	}
	if !embedded {
		if err := p.cfg.Length.EncodeUsize(p.dest, p.stage.Len()); err != nil {
			return err
		}
	}
	return p.dest.WriteBytes(p.stage.Bytes())
}

// storageDecoder is the untagged sibling of Decoder, reading the bare
// payloads storageEncoder writes. It is reached only through
// PackDecoder.Next, against a reader scoped to exactly one pack's body.
//
// Because nothing on the wire distinguishes, say, a bare u32 from a bare
// i32 or an f32, a storageDecoder's SkipSecond/SkipVariant cannot discard a
// value generically the way the tagged wire Decoder's can: there is no tag
// byte to dispatch on. Both report an error instead of silently consuming
// the wrong number of bytes. A caller that needs to skip a packed field
// must decode it with its known type and discard the result.
type storageDecoder struct {
	r   wireio.Reader
	cfg Config
}

var _ tagwire.Decoder = (*storageDecoder)(nil)

func (d *storageDecoder) Expecting() string { return "a type supported by the storage decoder" }

func (d *storageDecoder) TypeHint() (tagwire.TypeHint, error) {
	return tagwire.TypeHint{Kind: tagwire.HintAny}, nil
}

func (d *storageDecoder) DecodeUnit() error { return nil }

func (d *storageDecoder) DecodeBool() (bool, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: storage bool byte %d", tagwire.ErrExpectedBool, b)
	}
}

func (d *storageDecoder) DecodeChar() (rune, error) {
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

func (d *storageDecoder) DecodeU8() (uint8, error) { return d.r.ReadByte() }

func (d *storageDecoder) DecodeU16() (uint16, error) {
	v, err := d.cfg.Int.DecodeUntypedUnsigned(d.r, 16)
	return uint16(v), err
}

func (d *storageDecoder) DecodeU32() (uint32, error) {
	v, err := d.cfg.Int.DecodeUntypedUnsigned(d.r, 32)
	return uint32(v), err
}

func (d *storageDecoder) DecodeU64() (uint64, error) {
	return d.cfg.Int.DecodeUntypedUnsigned(d.r, 64)
}

func (d *storageDecoder) DecodeU128() (num.Uint128, error) {
	return d.cfg.Int.DecodeUint128(d.r, false)
}

func (d *storageDecoder) DecodeI8() (int8, error) {
	v, err := d.DecodeU8()
	return int8(v), err
}

func (d *storageDecoder) DecodeI16() (int16, error) {
	v, err := intcodec.DecodeUntypedSigned(d.cfg.Int, d.r, 16)
	return int16(v), err
}

func (d *storageDecoder) DecodeI32() (int32, error) {
	v, err := intcodec.DecodeUntypedSigned(d.cfg.Int, d.r, 32)
	return int32(v), err
}

func (d *storageDecoder) DecodeI64() (int64, error) {
	return intcodec.DecodeUntypedSigned(d.cfg.Int, d.r, 64)
}

func (d *storageDecoder) DecodeI128() (num.Int128, error) {
	return intcodec.DecodeInt128(d.cfg.Int, d.r, false)
}

func (d *storageDecoder) DecodeUsize() (int, error) { return d.cfg.Length.DecodeUsize(d.r) }

func (d *storageDecoder) DecodeIsize() (int, error) {
	v, err := intcodec.DecodeUntypedSigned(d.cfg.Length, d.r, 64)
	return int(v), err
}

func (d *storageDecoder) DecodeF32() (float32, error) {
	v, err := d.DecodeU32()
	return math.Float32frombits(v), err
}

func (d *storageDecoder) DecodeF64() (float64, error) {
	v, err := d.DecodeU64()
	return math.Float64frombits(v), err
}

func (d *storageDecoder) decodeBytesRaw() ([]byte, error) {
	n, err := d.cfg.Length.DecodeUsize(d.r)
	if err != nil {
		return nil, err
	}
	if borrowed, ok := d.r.ReadBorrowed(n); ok {
		return borrowed, nil
	}
	return d.r.ReadBytes(n)
}

func (d *storageDecoder) DecodeArray(n int) ([]byte, error) {
	data, err := d.decodeBytesRaw()
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: array wants %d bytes, got %d", tagwire.ErrArrayOutOfBounds, n, len(data))
	}
	return data, nil
}

func (d *storageDecoder) DecodeBytes(visitor tagwire.BytesVisitor) (interface{}, error) {
	n, err := d.cfg.Length.DecodeUsize(d.r)
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

func (d *storageDecoder) DecodeString(visitor tagwire.StringVisitor) (interface{}, error) {
	n, err := d.cfg.Length.DecodeUsize(d.r)
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

func (d *storageDecoder) DecodeOption() (tagwire.Decoder, bool, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, false, err
	}
	switch b {
	case 0:
		return nil, false, nil
	case 1:
		return d, true, nil
	default:
		return nil, false, fmt.Errorf("%w: storage option byte %d", tagwire.ErrInvalidType, b)
	}
}

func (d *storageDecoder) DecodeSequence() (tagwire.SequenceDecoder, error) {
	n, err := d.cfg.Length.DecodeUsize(d.r)
	if err != nil {
		return nil, err
	}
	return &sequenceDecoder{d: d, remaining: n}, nil
}

func (d *storageDecoder) DecodeTuple(int) (tagwire.SequenceDecoder, error) { return d.DecodeSequence() }

func (d *storageDecoder) cannotSkip() (bool, error) {
	return false, fmt.Errorf("wire: the storage codec cannot skip an untagged value without its type")
}

func (d *storageDecoder) DecodeMap() (tagwire.PairsDecoder, error) {
	total, err := d.cfg.Length.DecodeUsize(d.r)
	if err != nil {
		return nil, err
	}
	n, err := pairCount(total, tagwire.ErrExpectedMap)
	if err != nil {
		return nil, err
	}
	return &pairsDecoder{d: d, remaining: n, skip: d.cannotSkip}, nil
}

func (d *storageDecoder) DecodeStruct(int) (tagwire.PairsDecoder, error) { return d.DecodeMap() }

func (d *storageDecoder) DecodeVariant() (tagwire.VariantDecoder, error) {
	return &variantDecoder{d: d, skip: d.cannotSkip}, nil
}

func (d *storageDecoder) DecodePack() (tagwire.PackDecoder, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	t := tag.Parse(b)
	if err := expectKind(t, tag.Prefix, tagwire.ErrExpectedPack); err != nil {
		return nil, err
	}
	n, err := skipLength(d.r, d.cfg, t)
	if err != nil {
		return nil, err
	}
	data, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return &packDecoder{r: wireio.NewSliceReader(data), cfg: d.cfg}, nil
}

func (d *storageDecoder) DecodeBuffer() (tagwire.Buffer, error) {
	return nil, fmt.Errorf("wire: the storage codec does not support DecodeBuffer")
}
