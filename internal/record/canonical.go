package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the stable JSON form of a record used for
// webhook payloads and golden fixtures. Unlike MarshalJSON it ignores
// record order: the same columns and values always yield the same
// bytes, so a retried delivery is byte-identical to the first attempt.
//
// Differences from standard json.Marshal:
//  1. Object keys sorted lexically by byte
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
func MarshalCanonical(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	keys := r.Columns()
	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := canonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')

		v, _ := r.Get(k)
		vb, err := canonicalValue(v)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func canonicalValue(v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		if t {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Int:
		return t.MarshalJSON()
	case Float:
		return t.MarshalJSON()
	case String:
		return canonicalString(string(t))
	case Array:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := canonicalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

// canonicalString encodes s with NFC normalization at the serialization
// boundary and HTML escaping disabled.
func canonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}
