package factory

import (
	"reflect"

	"github.com/mewkiz/preon/el"
	"github.com/mewkiz/preon/meta"
)

// structRefContext is the build-time el.ReferenceContext for one struct
// type: ForProperty resolves a field name to its static EL type (and, for
// struct/slice-of-struct fields, a nested context so a reference can walk
// further in), and ForOuter steps out to the enclosing object's context.
// This is the piece spec.md §6 calls the EL side of "static type
// mismatch, unresolved reference... raised from the factory" — parsing an
// If/Length/Offset/guard expression against the wrong field name or the
// wrong field type fails here, at build time, not at decode time.
type structRefContext struct {
	fields map[string]reflect.Type
	outer  el.ReferenceContext
}

// newStructRefContext builds the ReferenceContext an ObjectCodec's
// bindings are parsed against, from the same field descriptors the
// object sub-factory uses to build the bindings themselves.
func newStructRefContext(fields []meta.FieldDescriptor, outer el.ReferenceContext) *structRefContext {
	m := make(map[string]reflect.Type, len(fields))
	for _, f := range fields {
		m[f.Name] = f.GoType
	}
	return &structRefContext{fields: m, outer: outer}
}

func (c *structRefContext) ForProperty(name string) (el.ReferenceContext, el.Type, error) {
	t, ok := c.fields[name]
	if !ok {
		return nil, 0, errUnboundField(name)
	}
	return refContextFor(t, c.outer), elTypeOf(t), nil
}

func (c *structRefContext) ForIndex() (el.ReferenceContext, el.Type, error) {
	return nil, 0, errNotIndexable()
}

func (c *structRefContext) ForOuter() (el.ReferenceContext, error) {
	if c.outer == nil {
		return nil, errNoOuterScope()
	}
	return c.outer, nil
}

// sliceRefContext is the ReferenceContext for a slice/array-typed field:
// ForIndex descends to the element type's context.
type sliceRefContext struct {
	elem  reflect.Type
	outer el.ReferenceContext
}

func (c *sliceRefContext) ForProperty(name string) (el.ReferenceContext, el.Type, error) {
	return nil, 0, errUnboundField(name)
}

func (c *sliceRefContext) ForIndex() (el.ReferenceContext, el.Type, error) {
	return refContextFor(c.elem, c.outer), elTypeOf(c.elem), nil
}

func (c *sliceRefContext) ForOuter() (el.ReferenceContext, error) {
	if c.outer == nil {
		return nil, errNoOuterScope()
	}
	return c.outer, nil
}

// scalarRefContext is the context for a field with no further navigable
// structure (a primitive): both ForProperty and ForIndex fail, since a
// scalar has neither named attributes nor elements.
type scalarRefContext struct {
	outer el.ReferenceContext
}

func (c *scalarRefContext) ForProperty(name string) (el.ReferenceContext, el.Type, error) {
	return nil, 0, errUnboundField(name)
}

func (c *scalarRefContext) ForIndex() (el.ReferenceContext, el.Type, error) {
	return nil, 0, errNotIndexable()
}

func (c *scalarRefContext) ForOuter() (el.ReferenceContext, error) {
	if c.outer == nil {
		return nil, errNoOuterScope()
	}
	return c.outer, nil
}

// refContextFor returns the ReferenceContext a reference continues into
// after selecting a field of type t, given the context t's own enclosing
// scope steps out to.
func refContextFor(t reflect.Type, outer el.ReferenceContext) el.ReferenceContext {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return &structRefContext{fields: structFieldTypes(t), outer: outer}
	case reflect.Slice, reflect.Array:
		return &sliceRefContext{elem: t.Elem(), outer: outer}
	default:
		return &scalarRefContext{outer: outer}
	}
}

// structFieldTypes maps a struct type's exported field names to their Go
// types, without consulting a MetadataSource — used only to build a
// ReferenceContext's property table, which needs types, not binding
// options.
func structFieldTypes(t reflect.Type) map[string]reflect.Type {
	m := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		m[sf.Name] = sf.Type
	}
	return m
}

// elTypeOf maps a Go field type to its static EL type for reference
// type-checking: sized integers are Integer, bool is Boolean, string is
// String, and anything else (struct, slice, pointer) is RefType, a
// navigable intermediate rather than a scalar.
func elTypeOf(t reflect.Type) el.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return el.Integer
	case reflect.Bool:
		return el.Boolean
	case reflect.String:
		return el.String
	default:
		return el.RefType
	}
}

func errUnboundField(name string) error {
	return &fieldRefError{msg: "no field named " + name}
}

func errNotIndexable() error {
	return &fieldRefError{msg: "value is not indexable"}
}

func errNoOuterScope() error {
	return &fieldRefError{msg: "no enclosing scope"}
}

type fieldRefError struct{ msg string }

func (e *fieldRefError) Error() string { return e.msg }
