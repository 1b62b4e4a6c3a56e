package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"null", Null{}, "NULL"},
		{"true", Bool(true), "TRUE"},
		{"false", Bool(false), "FALSE"},
		{"int", Int(42), "42"},
		{"negative int", Int(-7), "-7"},
		{"float", Float(3.5), "3.5"},
		{"string", String("tea"), "'tea'"},
		{"empty string", String(""), "''"},
		{"quote doubled", String("O'Brien"), "'O''Brien'"},
		{"only quotes", String("'''"), "''''''''"},
		{"array", Array{Int(1), String("a")}, `'[1,"a"]'`},
		{"empty array", Array{}, "'[]'"},
		{"array with quote", Array{String("it's")}, `'["it''s"]'`},
		{"nested array", Array{Array{Int(1)}, Bool(false)}, `'[[1],false]'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Literal(tt.value))
		})
	}
}

// TestLiteralQuoteDoubling pins the escape rule: every interior quote
// becomes two, and the wrapping quotes are added around the result.
func TestLiteralQuoteDoubling(t *testing.T) {
	s := "a'b'c"
	lit := Literal(String(s))

	require.True(t, strings.HasPrefix(lit, "'"))
	require.True(t, strings.HasSuffix(lit, "'"))
	inner := lit[1 : len(lit)-1]
	assert.Equal(t, strings.ReplaceAll(s, "'", "''"), inner)
}

func TestBind(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected any
	}{
		{"null", Null{}, nil},
		{"bool", Bool(true), true},
		{"int", Int(42), int64(42)},
		{"float", Float(2.5), 2.5},
		{"string", String("O'Brien"), "O'Brien"},
		{"array", Array{Int(1), String("a")}, `[1,"a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Bind(tt.value))
		})
	}
}

// TestBindStringKeepsQuotes documents the point of parameter binding:
// the bound value carries raw quotes, no doubling, because the driver
// never splices it into SQL text.
func TestBindStringKeepsQuotes(t *testing.T) {
	v := Bind(String("Robert'); DROP TABLE students;--"))
	assert.Equal(t, "Robert'); DROP TABLE students;--", v)
}
