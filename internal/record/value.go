package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Value is the sealed union of column values the gateway understands.
// Implementations are Null, Bool, Int, Float, String, and Array. JSON
// objects are deliberately absent: a column holds a scalar or an array,
// never a nested document.
type Value interface {
	isValue()
}

// Null is the JSON null value. It encodes to SQL NULL.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Int is a JSON number with no fractional part or exponent. Keeping
// integers distinct from floats preserves 64-bit ids that would lose
// precision as float64.
type Int int64

// Float is a JSON number that carries a fraction or exponent.
type Float float64

// String is a JSON string.
type String string

// Array is a JSON array of values. Arrays may nest, but may not contain
// objects. An Array is stored in SQL as its JSON text, quoted as a
// string literal.
type Array []Value

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Array) isValue()  {}

// DecodeValue parses a single JSON value into the Value union. Numbers
// are routed through json.Number so "7" becomes Int(7) and "7.5"
// becomes Float(7.5). Objects are rejected.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("decode value: trailing data after JSON value")
	}
	return v, nil
}

// decodeValue consumes exactly one JSON value from dec.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return valueFromToken(dec, tok)
}

// valueFromToken turns an already-read token into a Value, consuming
// the remainder of a compound value from dec when tok opens one.
func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return numberValue(t)
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("decode array: %w", err)
			}
			return arr, nil
		case '{':
			return nil, fmt.Errorf("decode value: objects are not valid column values")
		default:
			return nil, fmt.Errorf("decode value: unexpected delimiter %q", t.String())
		}
	default:
		return nil, fmt.Errorf("decode value: unsupported token %T", tok)
	}
}

// numberValue classifies a JSON number as Int when it parses exactly as
// int64, Float otherwise.
func numberValue(n json.Number) (Value, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("decode number %q: %w", n.String(), err)
	}
	return Float(f), nil
}

// FromAny converts a value returned by a database/sql scan into the
// Value union. Drivers hand back a fixed set of Go types; anything
// outside it is a gateway bug.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return String(t), nil
	case time.Time:
		// Drivers produce time.Time for DATETIME-declared columns.
		return String(t.Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", v)
	}
}

// MarshalJSON implementations keep encoding/json output identical to the
// JSON the value was decoded from, so records round-trip through the
// HTTP envelope without drift.

func (Null) MarshalJSON() ([]byte, error)    { return []byte("null"), nil }
func (b Bool) MarshalJSON() ([]byte, error)  { return strconv.AppendBool(nil, bool(b)), nil }
func (i Int) MarshalJSON() ([]byte, error)   { return strconv.AppendInt(nil, int64(i), 10), nil }
func (f Float) MarshalJSON() ([]byte, error) { return jsonFloat(float64(f)) }
func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(elem)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// jsonFloat formats a float the way encoding/json does, and rejects the
// non-finite values JSON cannot represent.
func jsonFloat(f float64) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal float: %w", err)
	}
	return b, nil
}
