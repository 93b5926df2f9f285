package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrNotObject is returned when a document's top-level value is not a JSON object.
var ErrNotObject = errors.New("record: top-level JSON value is not an object")

// Record is a string-keyed mapping that remembers insertion order.
// Setting an existing key replaces its value and keeps its position.
type Record struct {
	keys   []string
	values map[string]any
}

func New() *Record {
	return &Record{values: make(map[string]any)}
}

func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns a copy of the keys in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON writes the keys in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("record: marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec, err := Decode(data)
	if err != nil {
		return err
	}
	*r = *dec
	return nil
}

// Decode parses a JSON object keeping key order at every nesting level.
// Nested objects become *Record, arrays []any, numbers int64 when integral and float64 otherwise.
func Decode(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}
	rec, err := decodeObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("record: unexpected data after top-level object")
	}
	return rec, nil
}

func decodeObject(dec *json.Decoder) (*Record, error) {
	rec := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("record: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("record: object key is %T", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		rec.Set(key, v)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	return rec, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	out := make([]any, 0)
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("record: unexpected delimiter %q", t)
	case json.Number:
		return numberValue(t), nil
	default:
		// string, bool or nil
		return t, nil
	}
}

func numberValue(n json.Number) any {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
