// Package dsl defines the canonical DSL abstract syntax tree and the
// surface-text parser and normalizer that produce it.
//
// Verb calls have the shape `(domain.verb :key value :key value … [:as @binding])`.
package dsl

import "fmt"

// Value is the tagged union of value kinds a verb argument may hold.
type Value interface {
	isValue()
}

// VString is a string literal.
type VString string

// VInteger is a whole-number literal.
type VInteger int64

// VDouble is a floating-point literal.
type VDouble float64

// VBoolean is a boolean literal.
type VBoolean bool

// VIdentifier is a bare symbol reference, typically a context binding such
// as "@entity_id".
type VIdentifier string

// VMap is a keyed map of nested values (`{:k v …}`).
type VMap map[string]Value

// VList is an ordered list of nested values (`[…]`).
type VList []Value

// VLiteral is an opaque pass-through literal used where the surface syntax
// permits a bare token that is neither a recognized type nor an identifier.
type VLiteral string

func (VString) isValue()     {}
func (VInteger) isValue()    {}
func (VDouble) isValue()     {}
func (VBoolean) isValue()    {}
func (VIdentifier) isValue() {}
func (VMap) isValue()        {}
func (VList) isValue()       {}
func (VLiteral) isValue()    {}

// SourceLocation pins a Form back to its position in the surface text.
type SourceLocation struct {
	Line   int
	Column int
}

// Form is a single top-level element of a parsed program: currently always a
// verb call, but modeled as a tagged sum so the grammar can grow.
type Form struct {
	Verb     string
	Pairs    map[string]Value
	Keys     []string // argument keys in source order, for stable re-rendering
	As       string   // binding name from `:as @binding`, empty if absent
	Location SourceLocation
}

// Program is a parsed, ordered sequence of verb calls.
type Program struct {
	Forms []Form
}

// Domain returns the portion of Verb before the first '.', e.g. "entity" for
// "entity.register".
func (f Form) Domain() string {
	for i, r := range f.Verb {
		if r == '.' {
			return f.Verb[:i]
		}
	}
	return f.Verb
}

// StringArg extracts a string-shaped argument: VString, VIdentifier, or
// VLiteral, matching the source parser's lenient string extraction.
func (f Form) StringArg(key string) (string, bool) {
	v, ok := f.Pairs[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case VString:
		return string(val), true
	case VIdentifier:
		return string(val), true
	case VLiteral:
		return string(val), true
	}
	return "", false
}

// NumericArg extracts a numeric argument: VDouble or VInteger. Any other
// value kind reports false.
func (f Form) NumericArg(key string) (float64, bool) {
	v, ok := f.Pairs[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case VDouble:
		return float64(val), true
	case VInteger:
		return float64(val), true
	}
	return 0, false
}

// ListArg extracts a list-shaped argument.
func (f Form) ListArg(key string) (VList, bool) {
	v, ok := f.Pairs[key]
	if !ok {
		return nil, false
	}
	list, ok := v.(VList)
	return list, ok
}

// MapArg extracts a map-shaped argument.
func (f Form) MapArg(key string) (VMap, bool) {
	v, ok := f.Pairs[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(VMap)
	return m, ok
}

// BoolArg extracts a boolean-shaped argument.
func (f Form) BoolArg(key string) (bool, bool) {
	v, ok := f.Pairs[key]
	if !ok {
		return false, false
	}
	b, ok := v.(VBoolean)
	return bool(b), ok
}

func (f Form) String() string {
	return fmt.Sprintf("(%s ...)", f.Verb)
}
