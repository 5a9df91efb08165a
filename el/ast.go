package el

import (
	"fmt"

	"github.com/mewkiz/preon/internal/twos"
)

// An Expression is a node of the EL abstract syntax tree. Its static type
// is fixed at construction from its children and never changes.
type Expression interface {
	// Type returns the expression's static type.
	Type() Type
	// IsParameterless reports whether the subtree contains no references,
	// meaning it evaluates to the same value under any Resolver.
	IsParameterless() bool
	// Evaluate computes the expression's value against res.
	Evaluate(res Resolver) (Value, error)
	// Document renders a stable, human-readable form of the expression.
	Document() string
}

// --- literals ---

// IntLiteral is an integer literal.
type IntLiteral struct{ Value int64 }

func (n *IntLiteral) Type() Type                         { return Integer }
func (n *IntLiteral) IsParameterless() bool              { return true }
func (n *IntLiteral) Evaluate(Resolver) (Value, error)   { return IntValue(n.Value), nil }
func (n *IntLiteral) Document() string                   { return fmt.Sprintf("%d", n.Value) }

// BoolLiteral is a boolean literal.
type BoolLiteral struct{ Value bool }

func (n *BoolLiteral) Type() Type                       { return Boolean }
func (n *BoolLiteral) IsParameterless() bool            { return true }
func (n *BoolLiteral) Evaluate(Resolver) (Value, error) { return BoolValue(n.Value), nil }
func (n *BoolLiteral) Document() string                 { return fmt.Sprintf("%t", n.Value) }

// StringLiteral is a string literal.
type StringLiteral struct{ Value string }

func (n *StringLiteral) Type() Type                       { return String }
func (n *StringLiteral) IsParameterless() bool            { return true }
func (n *StringLiteral) Evaluate(Resolver) (Value, error) { return StringValue(n.Value), nil }
func (n *StringLiteral) Document() string                 { return fmt.Sprintf("%q", n.Value) }

// RefExpr wraps a Reference as an Expression.
type RefExpr struct{ Ref *Reference }

func (n *RefExpr) Type() Type              { return n.Ref.Type() }
func (n *RefExpr) IsParameterless() bool   { return false }
func (n *RefExpr) Evaluate(res Resolver) (Value, error) { return n.Ref.Evaluate(res) }
func (n *RefExpr) Document() string        { return "the value of `" + n.Ref.Path() + "`" }

// --- operators ---

// BinOp identifies a binary operator.
type BinOp int

// Binary operators, grouped by the type rule they obey.
const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Pow
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	And
	Or
)

var binSymbol = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%", Pow: "^",
	Lt: "<", Le: "<=", Gt: ">", Ge: ">=", Eq: "==", Ne: "!=",
	And: "and", Or: "or",
}

func (op BinOp) String() string { return binSymbol[op] }

func isArithmetic(op BinOp) bool {
	switch op {
	case Add, Sub, Mul, Div, Mod, Pow:
		return true
	}
	return false
}

func isComparison(op BinOp) bool {
	switch op {
	case Lt, Le, Gt, Ge, Eq, Ne:
		return true
	}
	return false
}

func isLogical(op BinOp) bool {
	return op == And || op == Or
}

// BinaryExpr is a binary operator node. NewBinaryExpr enforces the typing
// rules: arithmetic requires Integer operands and yields Integer;
// comparison yields Boolean (equality accepts any matching operand type,
// ordering accepts Integer or String); logical requires Boolean operands.
type BinaryExpr struct {
	Op          BinOp
	Left, Right Expression
	typ         Type
}

// NewBinaryExpr type-checks op against left and right and returns the
// constructed node, or a BindingError if the operand types are invalid.
func NewBinaryExpr(op BinOp, left, right Expression) (*BinaryExpr, error) {
	switch {
	case isArithmetic(op):
		if left.Type() != Integer || right.Type() != Integer {
			return nil, &BindingError{Path: op.String(), Msg: "arithmetic operators require Integer operands"}
		}
		return &BinaryExpr{Op: op, Left: left, Right: right, typ: Integer}, nil
	case isComparison(op):
		if op == Eq || op == Ne {
			if left.Type() != right.Type() {
				return nil, &BindingError{Path: op.String(), Msg: "equality operands must share a static type"}
			}
		} else {
			if left.Type() != right.Type() || (left.Type() != Integer && left.Type() != String) {
				return nil, &BindingError{Path: op.String(), Msg: "ordering operators require two Integer or two String operands"}
			}
		}
		return &BinaryExpr{Op: op, Left: left, Right: right, typ: Boolean}, nil
	case isLogical(op):
		if left.Type() != Boolean || right.Type() != Boolean {
			return nil, &BindingError{Path: op.String(), Msg: "logical operators require Boolean operands"}
		}
		return &BinaryExpr{Op: op, Left: left, Right: right, typ: Boolean}, nil
	default:
		return nil, &BindingError{Path: op.String(), Msg: "unknown binary operator"}
	}
}

func (n *BinaryExpr) Type() Type { return n.typ }

func (n *BinaryExpr) IsParameterless() bool {
	return n.Left.IsParameterless() && n.Right.IsParameterless()
}

func (n *BinaryExpr) Document() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.Document(), n.Op, n.Right.Document())
}

func (n *BinaryExpr) Evaluate(res Resolver) (Value, error) {
	// Short-circuit evaluation for and/or.
	if n.Op == And {
		l, err := n.Left.Evaluate(res)
		if err != nil {
			return Value{}, err
		}
		if !l.Bln {
			return BoolValue(false), nil
		}
		r, err := n.Right.Evaluate(res)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(r.Bln), nil
	}
	if n.Op == Or {
		l, err := n.Left.Evaluate(res)
		if err != nil {
			return Value{}, err
		}
		if l.Bln {
			return BoolValue(true), nil
		}
		r, err := n.Right.Evaluate(res)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(r.Bln), nil
	}

	l, err := n.Left.Evaluate(res)
	if err != nil {
		return Value{}, err
	}
	r, err := n.Right.Evaluate(res)
	if err != nil {
		return Value{}, err
	}

	switch {
	case isArithmetic(n.Op):
		return IntValue(evalArith(n.Op, l.Int, r.Int)), nil
	case n.Op == Eq:
		return BoolValue(valuesEqual(l, r)), nil
	case n.Op == Ne:
		return BoolValue(!valuesEqual(l, r)), nil
	default:
		if l.Typ == String {
			return BoolValue(compareOrder(n.Op, stringCompare(l.Str, r.Str))), nil
		}
		return BoolValue(compareOrder(n.Op, intCompare(l.Int, r.Int))), nil
	}
}

func evalArith(op BinOp, a, b int64) int64 {
	switch op {
	case Add:
		return a + b
	case Sub:
		return a - b
	case Mul:
		return a * b
	case Div:
		if b == 0 {
			return 0
		}
		return a / b
	case Mod:
		if b == 0 {
			return 0
		}
		return a % b
	case Pow:
		return twos.Pow(a, b)
	}
	panic("el: unreachable arithmetic operator")
}

func valuesEqual(a, b Value) bool {
	switch a.Typ {
	case Integer:
		return a.Int == b.Int
	case Boolean:
		return a.Bln == b.Bln
	case String:
		return a.Str == b.Str
	default:
		return false
	}
}

func intCompare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareOrder(op BinOp, cmp int) bool {
	switch op {
	case Lt:
		return cmp < 0
	case Le:
		return cmp <= 0
	case Gt:
		return cmp > 0
	case Ge:
		return cmp >= 0
	}
	panic("el: unreachable comparison operator")
}

// UnOp identifies a unary operator.
type UnOp int

// Unary operators.
const (
	Neg UnOp = iota // arithmetic negation
	Not             // logical negation
)

// UnaryExpr is a unary operator node.
type UnaryExpr struct {
	Op      UnOp
	Operand Expression
}

// NewUnaryExpr type-checks op against operand.
func NewUnaryExpr(op UnOp, operand Expression) (*UnaryExpr, error) {
	switch op {
	case Neg:
		if operand.Type() != Integer {
			return nil, &BindingError{Path: "-", Msg: "unary minus requires an Integer operand"}
		}
	case Not:
		if operand.Type() != Boolean {
			return nil, &BindingError{Path: "not", Msg: "not requires a Boolean operand"}
		}
	}
	return &UnaryExpr{Op: op, Operand: operand}, nil
}

func (n *UnaryExpr) Type() Type {
	if n.Op == Neg {
		return Integer
	}
	return Boolean
}

func (n *UnaryExpr) IsParameterless() bool { return n.Operand.IsParameterless() }

func (n *UnaryExpr) Document() string {
	if n.Op == Neg {
		return fmt.Sprintf("(-%s)", n.Operand.Document())
	}
	return fmt.Sprintf("(not %s)", n.Operand.Document())
}

func (n *UnaryExpr) Evaluate(res Resolver) (Value, error) {
	v, err := n.Operand.Evaluate(res)
	if err != nil {
		return Value{}, err
	}
	if n.Op == Neg {
		return IntValue(-v.Int), nil
	}
	return BoolValue(!v.Bln), nil
}

// IfExpr is a conditional node used internally by the codec layer to build
// a size expression for a guarded binding ("if(g, childSize, 0)" in
// spec.md §4.5). It is not reachable from EL source text — the grammar has
// no conditional operator — but is a tagged AST variant like any other
// node, so it folds and documents the same way.
type IfExpr struct {
	Guard, Then, Else Expression
}

func (n *IfExpr) Type() Type { return n.Then.Type() }

func (n *IfExpr) IsParameterless() bool {
	return n.Guard.IsParameterless() && n.Then.IsParameterless() && n.Else.IsParameterless()
}

func (n *IfExpr) Document() string {
	return fmt.Sprintf("(if %s then %s else %s)", n.Guard.Document(), n.Then.Document(), n.Else.Document())
}

func (n *IfExpr) Evaluate(res Resolver) (Value, error) {
	g, err := n.Guard.Evaluate(res)
	if err != nil {
		return Value{}, err
	}
	if g.Bln {
		return n.Then.Evaluate(res)
	}
	return n.Else.Evaluate(res)
}

// Fold evaluates e once against a nil-safe empty resolver if
// e.IsParameterless() and returns the resulting literal expression;
// otherwise it returns e unchanged. The pipeline calls this after building
// each node to perform constant folding (spec.md §4.2).
func Fold(e Expression) Expression {
	if !e.IsParameterless() {
		return e
	}
	v, err := e.Evaluate(foldResolver{})
	if err != nil {
		return e
	}
	switch v.Typ {
	case Integer:
		return &IntLiteral{Value: v.Int}
	case Boolean:
		return &BoolLiteral{Value: v.Bln}
	case String:
		return &StringLiteral{Value: v.Str}
	default:
		return e
	}
}

// foldResolver is passed to Evaluate when folding a parameterless
// expression; a parameterless subtree never calls Get/ResolveOuter, so its
// methods are unreachable in practice.
type foldResolver struct{}

func (foldResolver) Get(string) (interface{}, Resolver, bool) { return nil, nil, false }
func (foldResolver) ResolveOuter() Resolver                   { return nil }
func (foldResolver) OriginalResolver() Resolver               { return nil }
