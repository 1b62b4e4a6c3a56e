package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Literal renders v as SQL literal text. This is the display form used
// in logs, golden fixtures, and the raw statements the check command
// prints; execution always goes through Bind instead, so literal text
// never reaches the database from user input.
//
// Encodings: NULL, TRUE and FALSE, decimal numbers, single-quoted
// strings with embedded quotes doubled, and arrays as their JSON text
// quoted like a string.
func Literal(v Value) string {
	switch t := v.(type) {
	case nil, Null:
		return "NULL"
	case Bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case Int:
		return strconv.FormatInt(int64(t), 10)
	case Float:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case String:
		return quoteString(string(t))
	case Array:
		return quoteString(arrayText(t))
	default:
		// The union is sealed; reaching this is a bug in the caller.
		return fmt.Sprintf("/*unsupported %T*/NULL", v)
	}
}

// Bind converts v to the Go value handed to database/sql as a statement
// parameter. Arrays bind as their JSON text, everything else as the
// obvious native type.
func Bind(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Float:
		return float64(t)
	case String:
		return string(t)
	case Array:
		return arrayText(t)
	default:
		return nil
	}
}

// quoteString wraps s in single quotes, doubling embedded quotes. This
// is the SQL-92 escape; it is symmetric, so a value written through it
// reads back byte-identical.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString("''")
			continue
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('\'')
	return b.String()
}

// arrayText returns the JSON text of an array. Marshal cannot fail for
// the sealed union because every member encodes to valid JSON.
func arrayText(a Array) string {
	b, err := a.MarshalJSON()
	if err != nil {
		return "[]"
	}
	return string(b)
}
