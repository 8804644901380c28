package state

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalText encodes the key by letter name.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: key %d", ErrInvalidValue, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText accepts any spelling ParseKey accepts.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText encodes the scale by name.
func (s Scale) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: scale %d", ErrInvalidValue, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts any spelling ParseScale accepts.
func (s *Scale) UnmarshalText(text []byte) error {
	parsed, err := ParseScale(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText encodes the parameter by its wire name.
func (p Parameter) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, &StateError{Parameter: p.String(), Err: ErrUnknownParameter}
	}
	return []byte(p.String()), nil
}

// UnmarshalText accepts any name ParseParameter accepts.
func (p *Parameter) UnmarshalText(text []byte) error {
	parsed, err := ParseParameter(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON encodes the payload as a bare JSON number or string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindText {
		return json.Marshal(v.Text)
	}
	return json.Marshal(v.Number)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = Text(text)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	*v = Number(n)
	return nil
}
