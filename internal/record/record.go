package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is an ordered mapping from column name to Value. Order is the
// key order of the JSON object the record was decoded from, and it is
// the order INSERT statements list columns in. Set keeps first-seen
// position on overwrite, matching JSON object semantics.
type Record struct {
	keys []string
	vals map[string]Value
}

// New returns an empty record.
func New() *Record {
	return &Record{vals: make(map[string]Value)}
}

// Set stores v under col. A new column is appended to the order; an
// existing column keeps its position and has its value replaced.
func (r *Record) Set(col string, v Value) {
	if _, ok := r.vals[col]; !ok {
		r.keys = append(r.keys, col)
	}
	r.vals[col] = v
}

// Get returns the value stored under col.
func (r *Record) Get(col string) (Value, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Delete removes col from the record. Removing an absent column is a
// no-op.
func (r *Record) Delete(col string) {
	if _, ok := r.vals[col]; !ok {
		return
	}
	delete(r.vals, col)
	for i, k := range r.keys {
		if k == col {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Columns returns the column names in record order. The slice is a
// copy; mutating it does not affect the record.
func (r *Record) Columns() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len reports the number of columns.
func (r *Record) Len() int {
	return len(r.keys)
}

// Clone returns a deep-enough copy: keys and the map are fresh, values
// are shared (they are immutable by convention).
func (r *Record) Clone() *Record {
	out := &Record{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]Value, len(r.vals)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// UnmarshalRecord parses a JSON object into a Record, preserving key
// order. Top-level values other than an object are rejected, as are
// nested objects anywhere in the body.
func UnmarshalRecord(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, fmt.Errorf("decode record: body must be a JSON object")
	}

	r := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode record: non-string key %v", keyTok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("decode record: column %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode record: trailing data after object")
	}
	return r, nil
}

// MarshalJSON encodes the record as a JSON object in record order.
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
		vb, err := json.Marshal(r.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
