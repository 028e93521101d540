// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package wire

import (
	"bytes"

	"github.com/creachadair/tagwire"
	"github.com/creachadair/tagwire/wireio"
)

// Encode writes v to w using the tagged wire format under cfg, driving the
// reflective binder in package tagwire. v may implement tagwire.Marshaler
// to bypass reflection entirely.
func Encode(v interface{}, w wireio.Writer, cfg Config) error {
	return tagwire.BindEncode(NewEncoder(w, cfg), v)
}

// Decode reads one value from r using the tagged wire format under cfg into
// out, which must be a non-nil pointer.
func Decode(r wireio.Reader, cfg Config, out interface{}) error {
	return tagwire.BindDecode(NewDecoder(r, cfg), out)
}

// Marshal encodes v to a freshly allocated byte slice using FixedConfig,
// the in-memory convenience entry point analogous to encoding/json.Marshal.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(v, wireio.NewBuffer(&buf), FixedConfig); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into out using FixedConfig.
func Unmarshal(data []byte, out interface{}) error {
	return Decode(wireio.NewSliceReader(data), FixedConfig, out)
}
