package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is a JSON value that can be canonically encoded. Only String, Int,
// Bool, Array and Object implement it: floats and null are excluded so
// the encoding of a value is unique.
type Value interface {
	jsonValue()
}

// String is a JSON string.
type String string

// Int is a JSON integer.
type Int int64

// Bool is a JSON boolean.
type Bool bool

// Array is a JSON array.
type Array []Value

// Object is a JSON object. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (String) jsonValue() {}
func (Int) jsonValue()    {}
func (Bool) jsonValue()   {}
func (Array) jsonValue()  {}
func (Object) jsonValue() {}

// SortedKeys returns keys ordered by UTF-16 code units, as RFC 8785
// requires. This differs from byte order for characters above U+FFFF.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
