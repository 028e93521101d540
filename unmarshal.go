// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package tagwire

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/creachadair/tagwire/num"
)

// Unmarshaler is implemented by types that know how to decode themselves
// directly from the protocol, bypassing reflection.
type Unmarshaler interface {
	UnmarshalTagwire(d Decoder) error
}

// BindDecode reads the next value from d into out, the entry point the wire
// package's Unmarshal/Decode convenience functions drive. out must be a
// non-nil pointer, mirroring encoding/json's Unmarshal.
func BindDecode(d Decoder, out interface{}) error {
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("tagwire: unmarshal target must be a non-nil pointer, got %T", out)
	}
	return bindDecode(d, val.Elem())
}

// bindDecode reads the next value from d into v, the decode-side mirror of
// bindEncode. v must be addressable (a dereferenced pointer).
func bindDecode(d Decoder, v reflect.Value) error {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTagwire(d)
		}
	}
	if v.Kind() == reflect.Ptr {
		opt, present, err := d.DecodeOption()
		if err != nil {
			return err
		}
		if !present {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		v.Set(reflect.New(v.Type().Elem()))
		return bindDecode(opt, v.Elem())
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := d.DecodeBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil
	case reflect.Int8:
		n, err := d.DecodeI8()
		v.SetInt(int64(n))
		return err
	case reflect.Int16:
		n, err := d.DecodeI16()
		v.SetInt(int64(n))
		return err
	case reflect.Int32:
		n, err := d.DecodeI32()
		v.SetInt(int64(n))
		return err
	case reflect.Int64:
		n, err := d.DecodeI64()
		v.SetInt(n)
		return err
	case reflect.Int:
		n, err := d.DecodeIsize()
		v.SetInt(int64(n))
		return err
	case reflect.Uint8:
		n, err := d.DecodeU8()
		v.SetUint(uint64(n))
		return err
	case reflect.Uint16:
		n, err := d.DecodeU16()
		v.SetUint(uint64(n))
		return err
	case reflect.Uint32:
		n, err := d.DecodeU32()
		v.SetUint(uint64(n))
		return err
	case reflect.Uint64:
		n, err := d.DecodeU64()
		v.SetUint(n)
		return err
	case reflect.Uint:
		n, err := d.DecodeUsize()
		v.SetUint(uint64(n))
		return err
	case reflect.Float32:
		n, err := d.DecodeF32()
		v.SetFloat(float64(n))
		return err
	case reflect.Float64:
		n, err := d.DecodeF64()
		v.SetFloat(n)
		return err
	case reflect.String:
		got, err := d.DecodeString(StringVisitor{
			Expecting: "a string",
			Any:       func(s string) (interface{}, error) { return s, nil },
		})
		if err != nil {
			return err
		}
		v.SetString(got.(string))
		return nil
	case reflect.Struct:
		if v.Type() == reflect.TypeOf(num.Uint128{}) {
			n, err := d.DecodeU128()
			v.Set(reflect.ValueOf(n))
			return err
		}
		if v.Type() == reflect.TypeOf(num.Int128{}) {
			n, err := d.DecodeI128()
			v.Set(reflect.ValueOf(n))
			return err
		}
		return bindDecodeStruct(d, v)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			got, err := d.DecodeBytes(BytesVisitor{
				Expecting: "bytes",
				Any:       func(b []byte) (interface{}, error) { return append([]byte(nil), b...), nil },
			})
			if err != nil {
				return err
			}
			v.SetBytes(got.([]byte))
			return nil
		}
		return bindDecodeSequence(d, v)
	case reflect.Map:
		return bindDecodeMap(d, v)
	default:
		return fmt.Errorf("tagwire: type %s cannot be unmarshaled", v.Type())
	}
}

func bindDecodeSequence(d Decoder, v reflect.Value) error {
	seq, err := d.DecodeSequence()
	if err != nil {
		return err
	}
	etype := v.Type().Elem()
	out := reflect.MakeSlice(v.Type(), 0, seq.SizeHint())
	for {
		item, err := seq.Next()
		if err != nil {
			return err
		}
		if item == nil {
			break
		}
		elt := reflect.New(etype).Elem()
		if err := bindDecode(item, elt); err != nil {
			return fmt.Errorf("index %d: %w", out.Len(), err)
		}
		out = reflect.Append(out, elt)
	}
	v.Set(out)
	return nil
}

func bindDecodeMap(d Decoder, v reflect.Value) error {
	pairs, err := d.DecodeMap()
	if err != nil {
		return err
	}
	mtype := v.Type()
	out := reflect.MakeMapWithSize(mtype, pairs.SizeHint())
	for {
		pair, err := pairs.Next()
		if err != nil {
			return err
		}
		if pair == nil {
			break
		}
		keyDec, err := pair.First()
		if err != nil {
			return err
		}
		key := reflect.New(mtype.Key()).Elem()
		if err := bindDecode(keyDec, key); err != nil {
			return fmt.Errorf("key: %w", err)
		}
		valDec, err := pair.Second()
		if err != nil {
			return err
		}
		val := reflect.New(mtype.Elem()).Elem()
		if err := bindDecode(valDec, val); err != nil {
			return fmt.Errorf("value for key %v: %w", key, err)
		}
		out.SetMapIndex(key, val)
	}
	v.Set(out)
	return nil
}

func bindDecodeStruct(d Decoder, v reflect.Value) error {
	info, err := checkStructType(v)
	if err != nil {
		return err
	}
	find := func(tag int) *fieldInfo {
		for i := range info {
			if info[i].tag == tag {
				return &info[i]
			}
		}
		return nil
	}
	pairs, err := d.DecodeMap()
	if err != nil {
		return err
	}
	for {
		pair, err := pairs.Next()
		if err != nil {
			return err
		}
		if pair == nil {
			break
		}
		tagDec, err := pair.First()
		if err != nil {
			return err
		}
		tag, err := tagDec.DecodeUsize()
		if err != nil {
			return err
		}
		fi := find(tag)
		if fi == nil {
			if _, err := pair.SkipSecond(); err != nil {
				return fmt.Errorf("skipping unknown field tag %d: %w", tag, err)
			}
			continue
		}
		valDec, err := pair.Second()
		if err != nil {
			return err
		}
		if fi.pack && fi.field.Kind() == reflect.Slice {
			err = bindDecodePacked(valDec, fi.field)
		} else {
			err = bindDecode(valDec, fi.field)
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", fi.name, err)
		}
	}
	return nil
}

func bindDecodePacked(d Decoder, v reflect.Value) error {
	pack, err := d.DecodePack()
	if err != nil {
		return err
	}
	etype := v.Type().Elem()
	out := reflect.MakeSlice(v.Type(), 0, 0)
	for {
		item, err := pack.Next()
		if err != nil {
			if errors.Is(err, ErrExpectedPackValue) {
				break
			}
			return err
		}
		elt := reflect.New(etype).Elem()
		if err := bindDecode(item, elt); err != nil {
			return fmt.Errorf("index %d: %w", out.Len(), err)
		}
		out = reflect.Append(out, elt)
	}
	v.Set(out)
	return nil
}
