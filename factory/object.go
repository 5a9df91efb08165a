package factory

import (
	"reflect"

	"github.com/mewkiz/pkg/errutil"

	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/el"
	"github.com/mewkiz/preon/meta"
)

// parseOptExpr compiles src (an Options.If/Length/Offset string) against
// refCtx, returning nil with no error for an absent (empty) modifier.
func parseOptExpr(refCtx el.ReferenceContext, src string) (el.Expression, error) {
	if src == "" {
		return nil, nil
	}
	return el.Parse(src, refCtx)
}

// objectFactory builds codec.ObjectCodec for struct types, consulting
// ctx.Pipeline().Meta for the field list and recursing through
// ctx.BuildField for each field's own codec — the generalisation of
// meta.NewBlock's one hand-written struct-of-fields reader into "any
// struct, described by a MetadataSource".
type objectFactory struct{}

func (objectFactory) Accept(t reflect.Type, opts meta.Options) bool {
	return t.Kind() == reflect.Struct
}

func (objectFactory) Build(t reflect.Type, opts meta.Options, ctx *Context) (codec.Codec, error) {
	fields, err := ctx.Pipeline().Meta.Fields(t)
	if err != nil {
		return nil, errutil.Err(err)
	}

	structCtx := newStructRefContext(fields, ctx.RefContext())

	oc := &codec.ObjectCodec{
		GoType:      t,
		Constructor: ctx.Pipeline().Constructor,
		Builder:     ctx.Pipeline().Builder,
	}
	for _, f := range fields {
		// Fields parse their own Options expressions (length, terminator,
		// choice guards) against this struct's scope, not a scope already
		// descended into the field's own type — "n" in a sibling's
		// length=n tag names this struct's field n, not a property of n
		// itself.
		fieldCodec, err := ctx.BuildField(f.GoType, f.Options, structCtx)
		if err != nil {
			return nil, err
		}

		ifExpr, err := parseOptExpr(structCtx, f.Options.If)
		if err != nil {
			return nil, err
		}
		offsetExpr, err := parseOptExpr(structCtx, f.Options.Offset)
		if err != nil {
			return nil, err
		}
		initExpr, err := parseOptExpr(structCtx, f.Options.Init)
		if err != nil {
			return nil, err
		}

		b := codec.Binding{
			Name:       f.Name,
			FieldIndex: f.Index,
			Codec:      fieldCodec,
			If:         ifExpr,
			Offset:     offsetExpr,
			Init:       initExpr,
		}
		oc.Bindings = append(oc.Bindings, ctx.ApplyBindingDecorators(b))
	}
	return oc, nil
}
