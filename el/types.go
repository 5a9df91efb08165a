// Package el implements Preon's expression language: a small, typed,
// side-effect-free language with late-bound references into a runtime
// Resolver. Expressions are evaluable both at build time (for constant
// folding and documentation) and at decode/encode time (against live field
// values).
package el

import "fmt"

// Type is the static type of an expression node. It is fixed at
// construction time and never changes.
type Type int

const (
	// Integer is the type of arithmetic expressions and integer literals.
	Integer Type = iota
	// Boolean is the type of guards, comparisons, and logical expressions.
	Boolean
	// String is the type of string literals and string-valued references.
	String
	// RefType is the type of an intermediate path segment that denotes a
	// nested object rather than a scalar value.
	RefType
)

func (t Type) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case RefType:
		return "Reference"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// A Value is a runtime EL value: exactly one of its typed fields is valid,
// selected by Typ.
type Value struct {
	Typ Type
	Int int64
	Bln bool
	Str string
}

// IntValue returns an Integer-typed value.
func IntValue(n int64) Value { return Value{Typ: Integer, Int: n} }

// BoolValue returns a Boolean-typed value.
func BoolValue(b bool) Value { return Value{Typ: Boolean, Bln: b} }

// StringValue returns a String-typed value.
func StringValue(s string) Value { return Value{Typ: String, Str: s} }

func (v Value) String() string {
	switch v.Typ {
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Boolean:
		return fmt.Sprintf("%t", v.Bln)
	case String:
		return v.Str
	default:
		return "<reference>"
	}
}
