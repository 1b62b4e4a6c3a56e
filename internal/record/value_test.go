package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check that every member implements Value.
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Int(42)
	var _ Value = Float(3.5)
	var _ Value = String("test")
	var _ Value = Array{String("a"), Int(1)}
}

func TestDecodeValueScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
	}{
		{"null", `null`, Null{}},
		{"bool true", `true`, Bool(true)},
		{"bool false", `false`, Bool(false)},
		{"integer", `42`, Int(42)},
		{"negative integer", `-100`, Int(-100)},
		{"max int64", `9223372036854775807`, Int(9223372036854775807)},
		{"zero", `0`, Int(0)},
		{"fraction", `3.5`, Float(3.5)},
		{"negative fraction", `-2.25`, Float(-2.25)},
		{"exponent", `1e10`, Float(1e10)},
		{"fraction keeping int form", `7.0`, Float(7)},
		{"string", `"hello"`, String("hello")},
		{"empty string", `""`, String("")},
		{"unicode string", `"héllo"`, String("héllo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

// TestDecodeValueIntPrecision verifies that large ids survive decoding
// without the float64 precision loss a naive interface{} decode causes.
func TestDecodeValueIntPrecision(t *testing.T) {
	v, err := DecodeValue([]byte(`9007199254740993`)) // 2^53 + 1
	require.NoError(t, err)
	assert.Equal(t, Int(9007199254740993), v)
}

func TestDecodeValueArrays(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
	}{
		{"empty array", `[]`, Array{}},
		{"ints", `[1,2,3]`, Array{Int(1), Int(2), Int(3)}},
		{"mixed", `[1,"a",true,null]`, Array{Int(1), String("a"), Bool(true), Null{}}},
		{"nested", `[[1,2],[3]]`, Array{Array{Int(1), Int(2)}, Array{Int(3)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestDecodeValueRejectsObjects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"top-level object", `{"a":1}`},
		{"object in array", `[1,{"a":1}]`},
		{"deeply nested object", `[[{"a":1}]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeValue([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "object")
		})
	}
}

func TestDecodeValueTrailingData(t *testing.T) {
	_, err := DecodeValue([]byte(`7 8`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing")
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected Value
	}{
		{"nil", nil, Null{}},
		{"bool", true, Bool(true)},
		{"int64", int64(7), Int(7)},
		{"float64", 2.5, Float(2.5)},
		{"string", "x", String("x")},
		{"bytes", []byte("raw"), String("raw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromAny(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}

	_, err := FromAny(struct{}{})
	require.Error(t, err)
}

// TestValueMarshalRoundTrip verifies json.Marshal output re-decodes to
// the same value, so envelopes never drift from what was stored.
func TestValueMarshalRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{"null", Null{}},
		{"bool", Bool(true)},
		{"int", Int(-42)},
		{"float", Float(0.125)},
		{"string", String("héllo")},
		{"empty array", Array{}},
		{"mixed array", Array{Int(1), String("a"), Null{}, Array{Bool(false)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)

			result, err := DecodeValue(data)
			require.NoError(t, err)
			assert.Equal(t, tt.value, result)
		})
	}
}

func TestNullMarshalsToNull(t *testing.T) {
	data, err := json.Marshal(Null{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
