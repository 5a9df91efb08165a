package codec

import (
	"reflect"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
)

// A ChoiceBranch is one guarded alternative of a ChoiceCodec: when
// Guard evaluates true, the field is decoded/encoded with Codec. A
// nil Guard is the default branch and must be last.
type ChoiceBranch struct {
	Guard el.Expression
	Codec Codec
}

// ChoiceCodec decodes and encodes a discriminated union: the first
// branch whose guard holds is used, generalizing the dispatch switch
// in the teacher's meta.NewBlock (there: a fixed switch over
// BlockType; here: an ordered list of EL guards evaluated against the
// Resolver in scope, e.g. a discriminant field decoded earlier in the
// same ObjectCodec) and frame.NewSubFrame's PredMethod switch.
type ChoiceCodec struct {
	GoType   reflect.Type // the union's declared Go type (an interface, typically)
	Branches []ChoiceBranch
}

func (c *ChoiceCodec) Type() reflect.Type { return c.GoType }

// SizeExpr returns a nested if/else chain over each branch's guard,
// bottoming out at the default branch's size (or 0 if there is none),
// mirroring how Decode/Encode choose a branch at runtime.
func (c *ChoiceCodec) SizeExpr() el.Expression {
	var expr el.Expression = &el.IntLiteral{Value: 0}
	for i := len(c.Branches) - 1; i >= 0; i-- {
		br := c.Branches[i]
		if br.Guard == nil {
			expr = br.Codec.SizeExpr()
			continue
		}
		expr = &el.IfExpr{Guard: br.Guard, Then: br.Codec.SizeExpr(), Else: expr}
	}
	return el.Fold(expr)
}

func (c *ChoiceCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	for _, br := range c.Branches {
		if br.Guard != nil {
			g, err := br.Guard.Evaluate(res)
			if err != nil {
				return nil, &DecodingError{Msg: err.Error()}
			}
			if !g.Bln {
				continue
			}
		}
		return br.Codec.Decode(buf, res, b)
	}
	return nil, &DecodingError{Msg: "no choice branch's guard holds and no default branch is present"}
}

func (c *ChoiceCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	vt := reflect.TypeOf(value)
	for _, br := range c.Branches {
		if br.Codec.Type() != vt {
			continue
		}
		if br.Guard != nil {
			g, err := br.Guard.Evaluate(res)
			if err != nil {
				return &EncodingError{Msg: err.Error()}
			}
			if !g.Bln {
				continue
			}
		}
		return br.Codec.Encode(value, ch, res)
	}
	return &EncodingError{Msg: "no choice branch accepts a value of type " + vt.String()}
}
