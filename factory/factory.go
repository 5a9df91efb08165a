// Package factory builds codec.Codec values for arbitrary Go types by
// consulting a meta.MetadataSource for field descriptors and dispatching
// to a chain of registered SubFactory implementations, the way
// meta.NewBlock dispatches on a FLAC block's type field to one of a fixed
// set of block-body parsers — generalized here from one switch over seven
// known kinds to an open, priority-ordered list of sub-factories that each
// get a chance to accept a reflect.Type.
package factory

import (
	"fmt"
	"reflect"

	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"

	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
	"github.com/mewkiz/preon/meta"
)

// SubFactory builds a codec for a single Go type. Accept reports whether
// this sub-factory claims t; Build is only called after Accept returned
// true. fieldOpts is the meta.Options that led to t being requested (the
// zero value when building the top-level type passed to Pipeline.Build).
// ctx carries the build's recursion helpers: BuildField to recurse into
// nested types and ParseExpr to compile an Options string against the
// enclosing struct's reference scope.
type SubFactory interface {
	Accept(t reflect.Type, fieldOpts meta.Options) bool
	Build(t reflect.Type, fieldOpts meta.Options, ctx *Context) (codec.Codec, error)
}

// CodecDecorator wraps a freshly built codec, e.g. to add tracing or
// slack-bits padding. Decorators run in registration order, each wrapping
// the previous result.
type CodecDecorator func(t reflect.Type, c codec.Codec) codec.Codec

// BindingDecorator wraps a single codec.Binding after an ObjectCodec's
// sub-factory has built it, before it is added to the ObjectCodec.
type BindingDecorator func(b codec.Binding) codec.Binding

// Pipeline is a reusable assembly of sub-factories and decorators. It is
// safe to call Build many times concurrently on the same Pipeline: all
// per-build state (the forward-reference registry, the reference scope)
// lives in a fresh Context for each call, matching the spec's "the
// factory registry is an operation-local builder" resource policy.
type Pipeline struct {
	Meta        meta.MetadataSource
	Constructor construct.Constructor
	Builder     construct.Builder

	subFactories      []SubFactory
	codecDecorators   []CodecDecorator
	bindingDecorators []BindingDecorator
}

// NewPipeline constructs a Pipeline with the standard sub-factories
// (choice, enum, primitive, list, object) registered in priority order.
// Callers append further custom sub-factories or decorators before
// calling Build.
func NewPipeline(ms meta.MetadataSource) *Pipeline {
	p := &Pipeline{
		Meta:        ms,
		Constructor: construct.Default{},
		Builder:     construct.Default{},
	}
	p.subFactories = []SubFactory{
		choiceFactory{},
		enumFactory{},
		primitiveFactory{},
		listFactory{},
		objectFactory{},
	}
	return p
}

// Register appends a SubFactory, tried after all previously registered
// ones have declined.
func (p *Pipeline) Register(sf SubFactory) {
	p.subFactories = append(p.subFactories, sf)
}

// Decorate appends a CodecDecorator, applied to every codec this Pipeline
// builds (including nested field codecs), in registration order.
func (p *Pipeline) Decorate(d CodecDecorator) {
	p.codecDecorators = append(p.codecDecorators, d)
}

// DecorateBindings appends a BindingDecorator, applied to every Binding an
// ObjectCodec sub-factory produces.
func (p *Pipeline) DecorateBindings(d BindingDecorator) {
	p.bindingDecorators = append(p.bindingDecorators, d)
}

// buildState is the per-Build forward-reference registry: a type
// currently under construction is recorded here as a *forwardCodec before
// its real codec exists, so a cyclic field referring back to an
// in-progress type gets a thunk instead of recursing forever. This is the
// "build-time registry keyed by type identity" spec.md §9 calls for.
type buildState struct {
	inProgress map[reflect.Type]*forwardCodec
	path       []reflect.Type
}

// Context is handed to every SubFactory.Build call: it carries the
// reference scope the current field's EL expressions must be parsed
// against, plus recursion helpers back into the owning Pipeline.
type Context struct {
	pipeline *Pipeline
	state    *buildState
	refCtx   el.ReferenceContext
}

// Pipeline returns the owning Pipeline, for reading its Meta/Constructor/
// Builder collaborators.
func (c *Context) Pipeline() *Pipeline { return c.pipeline }

// RefContext returns the el.ReferenceContext the current field's
// Options expressions (if/length/offset) should be parsed against.
func (c *Context) RefContext() el.ReferenceContext { return c.refCtx }

// ParseExpr compiles src against c.RefContext(), returning nil with no
// error if src is empty (the modifier was absent).
func (c *Context) ParseExpr(src string) (el.Expression, error) {
	if src == "" {
		return nil, nil
	}
	return el.Parse(src, c.refCtx)
}

// BuildField recurses into the factory for a nested field of type t under
// opts, evaluated against refCtx (typically a child context descending
// from the caller's own c.RefContext()).
func (c *Context) BuildField(t reflect.Type, opts meta.Options, refCtx el.ReferenceContext) (codec.Codec, error) {
	return c.pipeline.build(t, opts, refCtx, c.state)
}

// ApplyBindingDecorators runs every registered BindingDecorator over b, in
// registration order.
func (c *Context) ApplyBindingDecorators(b codec.Binding) codec.Binding {
	for _, dec := range c.pipeline.bindingDecorators {
		b = dec(b)
	}
	return b
}

// Build constructs a codec.Codec for t, consulting p.Meta for any struct
// field descriptors and dispatching to the registered sub-factories in
// priority order. The first Accept to return true wins. refCtx is the
// root el.ReferenceContext for t's own fields (nil if t has none, e.g. a
// bare scalar at the top level).
func (p *Pipeline) Build(t reflect.Type, refCtx el.ReferenceContext) (codec.Codec, error) {
	st := &buildState{inProgress: make(map[reflect.Type]*forwardCodec)}
	return p.build(t, meta.Options{}, refCtx, st)
}

func (p *Pipeline) build(t reflect.Type, opts meta.Options, refCtx el.ReferenceContext, st *buildState) (codec.Codec, error) {
	if fc, ok := st.inProgress[t]; ok {
		return fc, nil
	}
	for i := range st.path {
		if st.path[i] == t {
			// t transitively contains itself: hand back a forward
			// reference instead of recursing; it is resolved once the
			// outer Build for t completes.
			fc := &forwardCodec{goType: t}
			st.inProgress[t] = fc
			return fc, nil
		}
	}

	ctx := &Context{pipeline: p, state: st, refCtx: refCtx}

	var built codec.Codec
	var err error
	for _, sf := range p.subFactories {
		if !sf.Accept(t, opts) {
			continue
		}
		st.path = append(st.path, t)
		built, err = sf.Build(t, opts, ctx)
		st.path = st.path[:len(st.path)-1]
		if err != nil {
			return nil, errutil.Err(errors.Wrapf(err, "factory: building codec for %s", t))
		}
		break
	}
	if built == nil {
		return nil, errutil.Err(fmt.Errorf("factory: no sub-factory accepted type %s", t))
	}

	for _, dec := range p.codecDecorators {
		built = dec(t, built)
	}

	if fc, ok := st.inProgress[t]; ok {
		fc.resolve(built)
		delete(st.inProgress, t)
	}
	return built, nil
}
