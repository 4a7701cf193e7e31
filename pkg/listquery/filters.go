package listquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Filter is one key/value pair of a Filters mapping. Value holds a scalar:
// string, bool, an integer, a float, or nil.
type Filter struct {
	Key   string
	Value any
}

// Filters is an ordered mapping of filter key to scalar value. Keys are
// unique; insertion order is kept and used when encoding.
type Filters []Filter

// Set returns a copy of f with key set to v. An existing key keeps its position.
func (f Filters) Set(key string, v any) Filters {
	out := f.Clone()
	for i := range out {
		if out[i].Key == key {
			out[i].Value = v
			return out
		}
	}
	return append(out, Filter{Key: key, Value: v})
}

// Get returns the value for key.
func (f Filters) Get(key string) (any, bool) {
	for _, e := range f {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Delete returns a copy of f without key.
func (f Filters) Delete(key string) Filters {
	out := make(Filters, 0, len(f))
	for _, e := range f {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (f Filters) Len() int { return len(f) }

// Keys returns the keys in insertion order.
func (f Filters) Keys() []string {
	keys := make([]string, len(f))
	for i, e := range f {
		keys[i] = e.Key
	}
	return keys
}

// Clone returns a copy that shares no backing array with f.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	copy(out, f)
	return out
}

// Equal reports whether both mappings hold the same entries in the same order.
// A nil and an empty mapping are equal.
func (f Filters) Equal(o Filters) bool {
	if len(f) != len(o) {
		return false
	}
	for i := range f {
		if f[i].Key != o[i].Key || !scalarEqual(f[i].Value, o[i].Value) {
			return false
		}
	}
	return true
}

// Pruned returns the entries whose value is neither nil nor the empty string.
func (f Filters) Pruned() Filters {
	out := make(Filters, 0, len(f))
	for _, e := range f {
		if isEmptyValue(e.Value) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// scalarEqual compares two filter values; uncomparable values are unequal.
func scalarEqual(a, b any) bool {
	defer func() { _ = recover() }()
	return a == b
}

// MarshalJSON encodes f as a JSON object in insertion order.
func (f Filters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encodeJSON(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := encodeJSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", e.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of scalars, keeping key order.
// Whole numbers decode to int64, other numbers to float64. Nested objects
// and arrays are rejected.
func (f *Filters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("filters: expected object, got %v", tok)
	}

	out := Filters{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("filters: expected key, got %v", kt)
		}
		vt, err := dec.Token()
		if err != nil {
			return err
		}
		v, err := scalarFromToken(vt)
		if err != nil {
			return fmt.Errorf("filters: key %q: %w", key, err)
		}
		out = out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

func scalarFromToken(tok json.Token) (any, error) {
	switch v := tok.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		fv, err := v.Float64()
		if err != nil || math.IsInf(fv, 0) {
			return nil, fmt.Errorf("invalid number %q", v.String())
		}
		return fv, nil
	default:
		return nil, fmt.Errorf("value must be a scalar")
	}
}
