// Package codec implements Preon's codec combinators: the reflective,
// composable Decode/Encode/SizeExpr triad that reads and writes Go
// values against a bit-addressable buffer, grounded on the field
// decode loops of the teacher's frame and meta packages (one
// FLAC-specific field table generalized into one struct- and
// EL-driven field table for any type).
package codec

import (
	"reflect"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
)

// A Codec decodes and encodes values of exactly one Go type, and can
// describe its own bit width as an EL expression evaluated against the
// Resolver frame in scope at the point it appears.
//
// Codec is deliberately non-generic: the factory pipeline composes
// codecs for types discovered only at build time via reflect.Type, and
// Go's generics cannot be instantiated from a runtime type value, so a
// parameterized Codec[T] could not be constructed by the pipeline in
// the first place.
type Codec interface {
	// Decode reads a value from buf, extending res with any nested
	// bindings the value contains, and constructing the result through
	// b.
	Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error)
	// Encode writes value to ch.
	Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error
	// SizeExpr returns the EL expression describing this codec's width
	// in bits, evaluated against the Resolver frame active where the
	// codec appears. A fixed-width codec returns a parameterless
	// (constant-folded) expression; a variable-width codec's expression
	// references the bindings its length depends on.
	SizeExpr() el.Expression
	// Type returns the Go type this codec decodes into and encodes
	// from.
	Type() reflect.Type
}

// intBits returns the natural bit width (8/16/32/64) of the integer type
// t, used when a binding's Options.Bits is 0.
func intBits(t reflect.Type) uint {
	switch t.Kind() {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	case reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint:
		return 64
	default:
		return 0
	}
}

func isSigned(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func setInt(v reflect.Value, x int64) {
	if isSigned(v.Type()) {
		v.SetInt(x)
	} else {
		v.SetUint(uint64(x))
	}
}

func getInt(v reflect.Value) int64 {
	if isSigned(v.Type()) {
		return v.Int()
	}
	return int64(v.Uint())
}
