package codec

import (
	"reflect"
	"testing"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/el"
)

func TestChoiceCodecDispatchesOnGuard(t *testing.T) {
	c := &ChoiceCodec{
		GoType: reflect.TypeOf((*interface{})(nil)).Elem(),
		Branches: []ChoiceBranch{
			{Guard: eqZero{ref: nameRef{name: "kind", typ: el.Integer}}, Codec: NewNumericCodec(reflect.TypeOf(int32(0)), 8, bitio.BigEndian)},
			{Codec: NewNumericCodec(reflect.TypeOf(int8(0)), 8, bitio.BigEndian)},
		},
	}

	res := el.NewMapResolver(nil)
	res.Bind("kind", int64(0))
	ch := bitio.NewBitChannel()
	if err := c.Encode(int32(42), ch, res); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	buf := bitio.NewBitBuffer(ch.Bytes())
	got, err := c.Decode(buf, res, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(int32) != 42 {
		t.Errorf("got %v, want 42", got)
	}
}

func TestChoiceCodecFallsThroughToDefault(t *testing.T) {
	c := &ChoiceCodec{
		GoType: reflect.TypeOf((*interface{})(nil)).Elem(),
		Branches: []ChoiceBranch{
			{Guard: eqZero{ref: nameRef{name: "kind", typ: el.Integer}}, Codec: NewNumericCodec(reflect.TypeOf(int32(0)), 8, bitio.BigEndian)},
			{Codec: NewNumericCodec(reflect.TypeOf(int8(0)), 8, bitio.BigEndian)},
		},
	}
	res := el.NewMapResolver(nil)
	res.Bind("kind", int64(99))
	buf := bitio.NewBitBuffer([]byte{7})
	got, err := c.Decode(buf, res, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(int8) != 7 {
		t.Errorf("got %v, want 7", got)
	}
}

func TestChoiceCodecNoMatchIsDecodingError(t *testing.T) {
	c := &ChoiceCodec{
		Branches: []ChoiceBranch{
			{Guard: &el.BoolLiteral{Value: false}, Codec: NewNumericCodec(reflect.TypeOf(int8(0)), 8, bitio.BigEndian)},
		},
	}
	buf := bitio.NewBitBuffer([]byte{0})
	if _, err := c.Decode(buf, nil, nil); err == nil {
		t.Fatalf("expected an error when no branch matches")
	}
}

// eqZero is a tiny "ref == 0" Boolean expression standing in for a
// parsed *el.BinaryExpr comparison, so these tests can exercise
// ChoiceCodec's guard dispatch without pulling in the full parser.
type eqZero struct{ ref el.Expression }

func (e eqZero) Type() el.Type         { return el.Boolean }
func (e eqZero) IsParameterless() bool { return false }
func (e eqZero) Document() string      { return e.ref.Document() + " == 0" }
func (e eqZero) Evaluate(res el.Resolver) (el.Value, error) {
	v, err := e.ref.Evaluate(res)
	if err != nil {
		return el.Value{}, err
	}
	return el.BoolValue(v.Int == 0), nil
}
