// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagwire

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/creachadair/tagwire/num"
)

// Marshaler is implemented by types that know how to encode themselves
// directly against the protocol, bypassing reflection.
type Marshaler interface {
	MarshalTagwire(e Encoder) error
}

// BindEncode writes v to e using reflection, the entry point the wire
// package's Marshal/Encode convenience functions drive. It lives here
// rather than in package wire because it only depends on the Encoder
// interface, not on any concrete format — keeping it format-agnostic is
// what lets wire.Encoder and any future format reuse it.
func BindEncode(e Encoder, v interface{}) error {
	return bindEncode(e, reflect.ValueOf(v))
}

// bindEncode writes v to e using reflection, following the
// `tagwire:"N[,pack]"` struct tag convention parsed by checkStructType. It is the generalization of
// creachadair/binpack's marshalStruct/marshalSlice/marshalMap to the full
// tagwire protocol: where binpack flattens everything to an untyped
// tag-value byte stream, this walks the real Go type and drives the typed
// Encoder methods directly.
func bindEncode(e Encoder, v reflect.Value) error {
	if m, ok := v.Interface().(Marshaler); ok {
		return m.MarshalTagwire(e)
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return e.EncodeNone()
		}
		some, err := e.EncodeSome()
		if err != nil {
			return err
		}
		return bindEncode(some, v.Elem())
	}

	switch v.Kind() {
	case reflect.Bool:
		return e.EncodeBool(v.Bool())
	case reflect.Int8:
		return e.EncodeI8(int8(v.Int()))
	case reflect.Int16:
		return e.EncodeI16(int16(v.Int()))
	case reflect.Int32:
		return e.EncodeI32(int32(v.Int()))
	case reflect.Int64:
		return e.EncodeI64(v.Int())
	case reflect.Int:
		return e.EncodeIsize(int(v.Int()))
	case reflect.Uint8:
		return e.EncodeU8(uint8(v.Uint()))
	case reflect.Uint16:
		return e.EncodeU16(uint16(v.Uint()))
	case reflect.Uint32:
		return e.EncodeU32(uint32(v.Uint()))
	case reflect.Uint64:
		return e.EncodeU64(v.Uint())
	case reflect.Uint:
		return e.EncodeUsize(int(v.Uint()))
	case reflect.Float32:
		return e.EncodeF32(float32(v.Float()))
	case reflect.Float64:
		return e.EncodeF64(v.Float())
	case reflect.String:
		return e.EncodeString(v.String())
	case reflect.Struct:
		if v.Type() == reflect.TypeOf(num.Uint128{}) {
			return e.EncodeU128(v.Interface().(num.Uint128))
		}
		if v.Type() == reflect.TypeOf(num.Int128{}) {
			return e.EncodeI128(v.Interface().(num.Int128))
		}
		return bindEncodeStruct(e, v)
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return e.EncodeBytes(v.Bytes())
		}
		return bindEncodeSequence(e, v)
	case reflect.Map:
		return bindEncodeMap(e, v)
	default:
		return fmt.Errorf("tagwire: type %s cannot be marshaled", v.Type())
	}
}

func bindEncodeSequence(e Encoder, v reflect.Value) error {
	seq, err := e.EncodeSequence(v.Len())
	if err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		next, err := seq.EncodeNext()
		if err != nil {
			return err
		}
		if err := bindEncode(next, v.Index(i)); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return seq.Finish()
}

func bindEncodeMap(e Encoder, v reflect.Value) error {
	pairs, err := e.EncodeMap(v.Len())
	if err != nil {
		return err
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	for _, key := range keys {
		k, err := pairs.EncodeFirst()
		if err != nil {
			return err
		}
		if err := bindEncode(k, key); err != nil {
			return fmt.Errorf("key %v: %w", key, err)
		}
		val, err := pairs.EncodeSecond()
		if err != nil {
			return err
		}
		if err := bindEncode(val, v.MapIndex(key)); err != nil {
			return fmt.Errorf("value for key %v: %w", key, err)
		}
	}
	return pairs.Finish()
}

func bindEncodeStruct(e Encoder, v reflect.Value) error {
	info, err := checkStructType(v)
	if err != nil {
		return err
	}
	pairs, err := e.EncodeStruct(len(info))
	if err != nil {
		return err
	}
	for _, fi := range info {
		tagEnc, err := pairs.EncodeFirst()
		if err != nil {
			return err
		}
		if err := tagEnc.EncodeUsize(fi.tag); err != nil {
			return err
		}
		valEnc, err := pairs.EncodeSecond()
		if err != nil {
			return err
		}
		if fi.pack && fi.field.Kind() == reflect.Slice {
			err = bindEncodePacked(valEnc, fi.field)
		} else {
			err = bindEncode(valEnc, fi.field)
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", fi.name, err)
		}
	}
	return pairs.Finish()
}

// bindEncodePacked writes a slice field tagged with "pack" through
// EncodePack instead of EncodeSequence, the typed-reflection equivalent of
// binpack's "pack" struct-tag attribute.
func bindEncodePacked(e Encoder, v reflect.Value) error {
	pack, err := e.EncodePack()
	if err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		next, err := pack.Next()
		if err != nil {
			return err
		}
		if err := bindEncode(next, v.Index(i)); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return pack.Finish()
}

type fieldInfo struct {
	tag   int
	name  string
	pack  bool
	field reflect.Value
}

// checkStructType extracts tagwire-tagged field metadata from a struct
// value, the reflective equivalent of binpack's checkStructType.
func checkStructType(v reflect.Value) ([]fieldInfo, error) {
	t := v.Type()
	var info []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tagStr, ok := sf.Tag.Lookup("tagwire")
		if !ok {
			continue
		}
		tag, pack, err := parseFieldTag(tagStr)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", sf.Name, err)
		}
		info = append(info, fieldInfo{tag: tag, name: sf.Name, pack: pack, field: v.Field(i)})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].tag < info[j].tag })
	for i := 0; i+1 < len(info); i++ {
		if info[i].tag == info[i+1].tag {
			return nil, fmt.Errorf("duplicate field tag %d", info[i].tag)
		}
	}
	return info, nil
}

func parseFieldTag(s string) (tag int, pack bool, err error) {
	parts := strings.Split(s, ",")
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false, fmt.Errorf("invalid tagwire tag %q: %w", s, err)
	}
	for _, p := range parts[1:] {
		if p == "pack" {
			pack = true
		}
	}
	return n, pack, nil
}
