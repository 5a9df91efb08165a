// Package construct supplies the object-construction seam a codec uses
// to produce the Go value it is decoding into, separate from the
// field-by-field decode logic itself (spec.md §6). The default
// Constructor mirrors the teacher's own `new(Block)` idiom via
// reflection; a caller with a more elaborate construction need — a
// constructor that must run validation, or that builds an interface
// value from a registered concrete type — supplies its own.
package construct

import (
	"reflect"

	"github.com/pkg/errors"
)

// A Constructor produces a new, zero-valued instance of t for a codec
// to decode fields into. t is always the concrete struct (or other)
// type a codec was built for, never an interface type.
type Constructor interface {
	New(t reflect.Type) (reflect.Value, error)
}

// Builder receives a constructed value plus its decoded field values
// and produces the value a codec's Decode ultimately returns. The
// default Builder returns the constructed value unchanged; a caller
// supplies its own to run post-decode validation or to adapt the
// constructed value into some other representation before it is
// handed back up the codec tree.
type Builder interface {
	// Build is called once per decoded value, after every field binding
	// has been assigned into v. It returns the value Decode should
	// return, ordinarily v.Interface() itself.
	Build(v reflect.Value) (interface{}, error)
}

// Default is the reflection-based Constructor and Builder used when a
// factory.Pipeline is not configured with anything else. New allocates
// a zero value of t with reflect.New; Build returns the constructed
// value as-is.
type Default struct{}

// New implements Constructor.
func (Default) New(t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Struct:
		return reflect.New(t).Elem(), nil
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0), nil
	case reflect.Ptr:
		return reflect.New(t.Elem()), nil
	default:
		return reflect.Zero(t), nil
	}
}

// Build implements Builder.
func (Default) Build(v reflect.Value) (interface{}, error) {
	if !v.IsValid() {
		return nil, errors.New("construct: cannot build from an invalid reflect.Value")
	}
	return v.Interface(), nil
}
