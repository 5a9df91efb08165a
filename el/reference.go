package el

import (
	"fmt"
	"reflect"
	"strings"
)

// A ReferenceContext is the build-time type environment for EL references:
// an abstract schema-of-names that, given a starting context, yields the
// sub-context and static type for a named property, for array indexing, or
// for the enclosing (outer) scope. It is consulted only while parsing; it
// plays no part in evaluation.
type ReferenceContext interface {
	// ForProperty returns the sub-context and static type reached by
	// selecting the named property of this context.
	ForProperty(name string) (ctx ReferenceContext, typ Type, err error)
	// ForIndex returns the sub-context and static type reached by indexing
	// this context, which must represent a list-like value.
	ForIndex() (ctx ReferenceContext, typ Type, err error)
	// ForOuter returns the context enclosing this one.
	ForOuter() (ctx ReferenceContext, err error)
}

type segmentKind int

const (
	segProperty segmentKind = iota
	segIndex
	segOuter
)

type segment struct {
	kind  segmentKind
	name  string
	index Expression
}

// A Reference is a path of segments rooted in a ReferenceContext, each
// segment representable against that context at construction time. It
// carries the resolved static type of its final segment.
//
// Reference is built incrementally: SelectAttribute, SelectItem, and Outer
// each return a new Reference extended by one segment, leaving the
// receiver untouched. Narrow performs the static downcast choice codecs use
// to refine a reference's declared type to a specific variant's type.
type Reference struct {
	ctx      ReferenceContext
	segments []segment
	typ      Type
}

// NewReference returns the empty (root) Reference for ctx, denoting the
// context itself rather than any scalar value within it.
func NewReference(ctx ReferenceContext) *Reference {
	return &Reference{ctx: ctx, typ: RefType}
}

// SelectAttribute extends the reference with a named-property segment.
func (r *Reference) SelectAttribute(name string) (*Reference, error) {
	nextCtx, typ, err := r.ctx.ForProperty(name)
	if err != nil {
		return nil, &BindingError{Path: r.pathWith(name), Msg: err.Error()}
	}
	return r.extend(segment{kind: segProperty, name: name}, nextCtx, typ), nil
}

// SelectItem extends the reference with an array-index segment. idx must
// be an Integer-typed expression.
func (r *Reference) SelectItem(idx Expression) (*Reference, error) {
	if idx.Type() != Integer {
		return nil, &BindingError{Path: r.Path(), Msg: fmt.Sprintf("index expression must be Integer, got %s", idx.Type())}
	}
	nextCtx, typ, err := r.ctx.ForIndex()
	if err != nil {
		return nil, &BindingError{Path: r.Path(), Msg: err.Error()}
	}
	return r.extend(segment{kind: segIndex, index: idx}, nextCtx, typ), nil
}

// Outer extends the reference with a step into the enclosing scope.
func (r *Reference) Outer() (*Reference, error) {
	nextCtx, err := r.ctx.ForOuter()
	if err != nil {
		return nil, &BindingError{Path: r.Path(), Msg: err.Error()}
	}
	return r.extend(segment{kind: segOuter}, nextCtx, RefType), nil
}

// Narrow returns a copy of r whose static type is overridden to t, the
// downcast a choice codec performs once a guard has selected a specific
// branch type for a reference that was declared more generally.
func (r *Reference) Narrow(t Type) *Reference {
	cp := *r
	cp.typ = t
	return &cp
}

// Rescope returns a Reference valid levels scopes further out: the same
// path, prefixed by levels additional outer hops. It is used when an
// expression built inside one binding's scope needs to be evaluated from
// an enclosing sibling scope. Because the path suffix is unchanged,
// evaluating the rescoped reference against the correspondingly-extended
// Resolver chain yields the same value (spec.md property 4).
func (r *Reference) Rescope(levels int) *Reference {
	if levels <= 0 {
		return r
	}
	segs := make([]segment, 0, levels+len(r.segments))
	for i := 0; i < levels; i++ {
		segs = append(segs, segment{kind: segOuter})
	}
	segs = append(segs, r.segments...)
	return &Reference{ctx: r.ctx, segments: segs, typ: r.typ}
}

// Equal reports whether r and other have identical segment sequences
// (same-path equality), used to detect forward/backward field
// dependencies between bindings.
func (r *Reference) Equal(other *Reference) bool {
	if other == nil || len(r.segments) != len(other.segments) {
		return false
	}
	for i, s := range r.segments {
		o := other.segments[i]
		if s.kind != o.kind || s.name != o.name {
			return false
		}
		if s.kind == segIndex {
			if (s.index == nil) != (o.index == nil) {
				return false
			}
			if s.index != nil && s.index.Document() != o.index.Document() {
				return false
			}
		}
	}
	return true
}

// Type returns the resolved static type of the reference's final segment.
func (r *Reference) Type() Type { return r.typ }

// Path renders the reference as a dotted/bracketed path, e.g. "a.b[2]" or
// "outer.c", for error messages and documentation.
func (r *Reference) Path() string {
	var sb strings.Builder
	for i, s := range r.segments {
		switch s.kind {
		case segProperty:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(s.name)
		case segIndex:
			fmt.Fprintf(&sb, "[%s]", s.index.Document())
		case segOuter:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString("outer")
		}
	}
	if sb.Len() == 0 {
		return "."
	}
	return sb.String()
}

func (r *Reference) pathWith(name string) string {
	if r.Path() == "." {
		return name
	}
	return r.Path() + "." + name
}

func (r *Reference) extend(s segment, ctx ReferenceContext, typ Type) *Reference {
	segs := make([]segment, len(r.segments)+1)
	copy(segs, r.segments)
	segs[len(r.segments)] = s
	return &Reference{ctx: ctx, segments: segs, typ: typ}
}

// Evaluate navigates the Resolver chain per segment and coerces the final
// value to the reference's static type.
func (r *Reference) Evaluate(res Resolver) (Value, error) {
	cur := res
	var val interface{}
	haveVal := false
	for _, s := range r.segments {
		switch s.kind {
		case segOuter:
			next := cur.ResolveOuter()
			if next == nil {
				return Value{}, &EvalError{Path: r.Path(), Msg: "no enclosing resolver"}
			}
			cur = next
			haveVal = false
		case segProperty:
			v, nested, ok := cur.Get(s.name)
			if !ok {
				return Value{}, &EvalError{Path: r.Path(), Msg: fmt.Sprintf("unbound name %q", s.name)}
			}
			if nested != nil {
				cur = nested
				haveVal = false
			} else {
				val = v
				haveVal = true
			}
		case segIndex:
			idxVal, err := s.index.Evaluate(res)
			if err != nil {
				return Value{}, err
			}
			if !haveVal {
				return Value{}, &EvalError{Path: r.Path(), Msg: "cannot index a sub-object reference"}
			}
			elem, err := indexValue(val, idxVal.Int)
			if err != nil {
				return Value{}, &EvalError{Path: r.Path(), Msg: err.Error()}
			}
			if nested, ok := elem.(Resolver); ok {
				cur = nested
				haveVal = false
			} else {
				val = elem
				haveVal = true
			}
		}
	}
	if !haveVal {
		return Value{}, &EvalError{Path: r.Path(), Msg: "reference resolves to a sub-object, not a scalar value"}
	}
	return coerce(val, r.typ, r.Path())
}

func indexValue(v interface{}, idx int64) (interface{}, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot index a value of kind %s", rv.Kind())
	}
	if idx < 0 || int(idx) >= rv.Len() {
		return nil, fmt.Errorf("index %d out of range [0, %d)", idx, rv.Len())
	}
	return rv.Index(int(idx)).Interface(), nil
}

func coerce(v interface{}, want Type, path string) (Value, error) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Value{}, &EvalError{Path: path, Msg: "nil value"}
	}
	switch want {
	case Integer:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return IntValue(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return IntValue(int64(rv.Uint())), nil
		}
	case Boolean:
		if rv.Kind() == reflect.Bool {
			return BoolValue(rv.Bool()), nil
		}
	case String:
		if rv.Kind() == reflect.String {
			return StringValue(rv.String()), nil
		}
	}
	return Value{}, &EvalError{Path: path, Msg: fmt.Sprintf("value of kind %s is not compatible with static type %s", rv.Kind(), want)}
}
