package el

// A Resolver is a runtime environment supplying values for references. It
// is extended in insertion order as each binding decodes: a fresh frame is
// pushed for each named value made available, shadowing the caller's
// resolver, the way a new stack frame shadows its enclosing scope.
type Resolver interface {
	// Get returns the value bound to name in this resolver, or a nested
	// Resolver if name denotes a sub-object. ok is false if name is not
	// bound here.
	Get(name string) (value interface{}, resolver Resolver, ok bool)
	// ResolveOuter returns the resolver enclosing this one, or nil if this
	// is the outermost resolver.
	ResolveOuter() Resolver
	// OriginalResolver returns the topmost enclosing resolver.
	OriginalResolver() Resolver
}

// MapResolver is a Resolver backed by a plain map, extended by binding one
// name at a time. It models the "linked stack of immutable frames" the
// object codec's decode loop builds as each field is decoded: each Bind
// call conceptually produces a new frame that shadows the outer one, but
// for efficiency MapResolver mutates an owned map in place (the Resolver
// contract only promises readers see each binding's value from the point
// it was bound onward, not true persistence).
type MapResolver struct {
	values map[string]interface{}
	outer  Resolver
}

// NewMapResolver returns a MapResolver layered over outer (which may be
// nil for a root resolver).
func NewMapResolver(outer Resolver) *MapResolver {
	return &MapResolver{values: make(map[string]interface{}), outer: outer}
}

// Bind records the value for name, making it visible to subsequently
// evaluated expressions.
func (r *MapResolver) Bind(name string, value interface{}) {
	r.values[name] = value
}

// Get implements Resolver.
func (r *MapResolver) Get(name string) (interface{}, Resolver, bool) {
	v, ok := r.values[name]
	if !ok {
		return nil, nil, false
	}
	if nested, isResolver := v.(Resolver); isResolver {
		return nil, nested, true
	}
	return v, nil, true
}

// ResolveOuter implements Resolver.
func (r *MapResolver) ResolveOuter() Resolver {
	return r.outer
}

// OriginalResolver implements Resolver.
func (r *MapResolver) OriginalResolver() Resolver {
	if r.outer == nil {
		return r
	}
	return r.outer.OriginalResolver()
}
