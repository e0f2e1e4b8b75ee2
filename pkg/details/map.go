package details

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is a single key/value pair of a [Map].
type Entry struct {
	Key   string
	Value Value
}

// Map is a JSON object that remembers the order in which keys were first set.
// The zero Map is empty and ready to use.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set stores v under key. Overwriting an existing key keeps its position.
func (m *Map) Set(key string, v Value) {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// GetString returns the value under key rendered as text, or "" when the key
// is missing or null.
func (m *Map) GetString(key string) string {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return ""
	}
	return v.String()
}

// GetNumber returns the numeric value under key. It reports false when the
// key is missing or not a number.
func (m *Map) GetNumber(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Entries returns the pairs in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = Entry{Key: k, Value: m.vals[k]}
	}
	return out
}

// MarshalJSON encodes the map with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := m.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order. A JSON null
// decodes to an empty map.
func (m *Map) UnmarshalJSON(data []byte) error {
	v, err := decodeValue(newDecoder(data))
	if err != nil {
		return err
	}
	switch v.kind {
	case KindNull:
		*m = Map{vals: make(map[string]Value)}
	case KindMap:
		*m = *v.m
	default:
		return fmt.Errorf("details: expected object, got %s", v.kind)
	}
	return nil
}

// Parse decodes a JSON object into a new Map.
func Parse(data []byte) (*Map, error) {
	m := NewMap()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("details: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, fmt.Errorf("details: %w", err)
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("details: unexpected object key %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("details: %w", err)
			}
			return Object(m), nil
		case '[':
			list := []Value{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("details: %w", err)
			}
			return List(list...), nil
		}
		return Value{}, fmt.Errorf("details: unexpected delimiter %q", t)
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("details: invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("details: unexpected token %v", tok)
}
