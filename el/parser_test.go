package el

import "testing"

// testContext is a minimal ReferenceContext used to exercise the parser and
// reference model without a full codec pipeline. Each property either has a
// leaf type (in fields) or resolves into a nested context (in props); a
// context may also have an elem context, making it indexable.
type testContext struct {
	fields map[string]Type
	props  map[string]*testContext
	elem   *testContext
	outer  *testContext
}

func (c *testContext) ForProperty(name string) (ReferenceContext, Type, error) {
	if sub, ok := c.props[name]; ok {
		return sub, RefType, nil
	}
	if t, ok := c.fields[name]; ok {
		return c, t, nil
	}
	return nil, 0, errNotFound(name)
}

func (c *testContext) ForIndex() (ReferenceContext, Type, error) {
	if c.elem == nil {
		return nil, 0, errNotFound("[]")
	}
	return c.elem, RefType, nil
}

func (c *testContext) ForOuter() (ReferenceContext, error) {
	if c.outer == nil {
		return nil, errNotFound("outer")
	}
	return c.outer, nil
}

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func errNotFound(name string) error { return notFoundError("no such name: " + name) }

func TestParseArithmetic(t *testing.T) {
	ctx := &testContext{fields: map[string]Type{"n": Integer}}
	expr, err := Parse("(n + 1) * 8", ctx)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if expr.Type() != Integer {
		t.Fatalf("expected Integer type, got %s", expr.Type())
	}
	res := NewMapResolver(nil)
	res.Bind("n", int64(4))
	v, err := expr.Evaluate(res)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Int != 40 {
		t.Errorf("expected 40, got %d", v.Int)
	}
	doc := expr.Document()
	for _, want := range []string{"n", "1", "8"} {
		if !contains(doc, want) {
			t.Errorf("Document() = %q does not contain %q", doc, want)
		}
	}
}

func TestParseComparisonAndGuard(t *testing.T) {
	ctx := &testContext{fields: map[string]Type{"flag": Integer}}
	expr, err := Parse("flag == 1", ctx)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if expr.Type() != Boolean {
		t.Fatalf("expected Boolean, got %s", expr.Type())
	}
	res := NewMapResolver(nil)
	res.Bind("flag", int64(1))
	v, err := expr.Evaluate(res)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Bln {
		t.Errorf("expected true")
	}
}

func TestParseLogicalShortCircuit(t *testing.T) {
	ctx := &testContext{fields: map[string]Type{"a": Boolean, "b": Boolean}}
	expr, err := Parse("a or b", ctx)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res := NewMapResolver(nil)
	res.Bind("a", true)
	// b intentionally unbound: short-circuit must avoid evaluating it.
	v, err := expr.Evaluate(res)
	if err != nil {
		t.Fatalf("Evaluate: %v (short-circuit should have skipped b)", err)
	}
	if !v.Bln {
		t.Errorf("expected true")
	}
}

func TestParseIndexAndOuter(t *testing.T) {
	elemCtx := &testContext{fields: map[string]Type{"x": Integer}}
	itemsCtx := &testContext{elem: elemCtx}
	outerCtx := &testContext{fields: map[string]Type{"y": Integer}}
	root := &testContext{
		props: map[string]*testContext{"items": itemsCtx},
		outer: outerCtx,
	}

	expr, err := Parse("items[0].x", root)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if expr.Type() != Integer {
		t.Fatalf("expected Integer, got %s", expr.Type())
	}

	outerExpr, err := Parse("outer.y", root)
	if err != nil {
		t.Fatalf("Parse outer: %v", err)
	}
	if outerExpr.Type() != Integer {
		t.Fatalf("expected Integer, got %s", outerExpr.Type())
	}
}

func TestParseTypeMismatchIsBindingError(t *testing.T) {
	ctx := &testContext{fields: map[string]Type{"s": String, "n": Integer}}
	_, err := Parse("s + n", ctx)
	if err == nil {
		t.Fatalf("expected a type error")
	}
	if _, ok := err.(*BindingError); !ok {
		t.Errorf("expected *BindingError, got %T: %v", err, err)
	}
}

func TestParseUnresolvableReferenceIsBindingError(t *testing.T) {
	ctx := &testContext{fields: map[string]Type{"n": Integer}}
	_, err := Parse("missing + 1", ctx)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(*BindingError); !ok {
		t.Errorf("expected *BindingError, got %T: %v", err, err)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
