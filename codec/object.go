package codec

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
)

// A Binding is one field of an ObjectCodec: a name (used to extend the
// Resolver so later fields' If/Length/Offset expressions can see this
// field's value), the sub-codec that reads and writes it, and the
// optional If/Offset modifiers from spec.md §4.5.
type Binding struct {
	Name       string
	FieldIndex int
	Codec      Codec
	// If, when non-nil, is evaluated before the field is read/written;
	// a false guard skips the field (it is left at its Go zero value
	// on decode, and its current value is not written on encode).
	If el.Expression
	// Offset, when non-nil, is an absolute bit offset the field is
	// read from (decode) or written at (encode), out of sequence with
	// its neighbors. On decode the buffer's cursor is saved and
	// restored around the seek so subsequent fields continue
	// sequentially. On encode the channel is append-only, so Offset
	// can only move forward: the channel is padded with zero bits up
	// to Offset before the field is written, and it is an
	// EncodingError for Offset to name a position the channel has
	// already passed.
	Offset el.Expression
	// Init, when non-nil, is the value a guarded-false field takes
	// instead of its Go zero value, on both decode and encode.
	Init el.Expression
}

// ObjectCodec decodes and encodes a Go struct as an ordered sequence
// of field bindings, generalizing the field-table decode loop of the
// teacher's frame.NewHeader and meta.NewBlock (there: a fixed, hand-
// written sequence of named reads; here: the same shape driven by
// Bindings built from meta.FieldDescriptor).
type ObjectCodec struct {
	GoType      reflect.Type
	Bindings    []Binding
	Constructor construct.Constructor
	Builder     construct.Builder
}

func (c *ObjectCodec) Type() reflect.Type { return c.GoType }

// SizeExpr returns the sum of each present binding's width, guarding
// each guarded binding's contribution with an IfExpr the way spec.md
// §4.5's size pseudocode aggregates "if(g, childSize, 0)" terms.
func (c *ObjectCodec) SizeExpr() el.Expression {
	var total el.Expression = &el.IntLiteral{Value: 0}
	zero := &el.IntLiteral{Value: 0}
	for _, bd := range c.Bindings {
		term := bd.Codec.SizeExpr()
		if bd.If != nil {
			term = &el.IfExpr{Guard: bd.If, Then: term, Else: zero}
		}
		sum, err := el.NewBinaryExpr(el.Add, total, term)
		if err != nil {
			// Every term here is Integer-typed by construction.
			continue
		}
		total = sum
	}
	return el.Fold(total)
}

func (c *ObjectCodec) constructor() construct.Constructor {
	if c.Constructor != nil {
		return c.Constructor
	}
	return construct.Default{}
}

func (c *ObjectCodec) builder(override construct.Builder) construct.Builder {
	if override != nil {
		return override
	}
	if c.Builder != nil {
		return c.Builder
	}
	return construct.Default{}
}

func (c *ObjectCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	v, err := c.constructor().New(c.GoType)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}

	frame := el.NewMapResolver(res)
	for _, bd := range c.Bindings {
		field := v.Field(bd.FieldIndex)

		present := true
		if bd.If != nil {
			g, err := bd.If.Evaluate(frame)
			if err != nil {
				return nil, &DecodingError{Path: bd.Name, Msg: err.Error()}
			}
			present = g.Bln
		}
		if !present {
			def, err := evalInit(field, bd.Init, frame)
			if err != nil {
				return nil, &DecodingError{Path: bd.Name, Msg: err.Error()}
			}
			if bd.Init != nil {
				field.Set(reflect.ValueOf(def))
			}
			frame.Bind(bd.Name, def)
			continue
		}

		decode := func() (interface{}, error) {
			return bd.Codec.Decode(buf, frame, b)
		}

		var val interface{}
		if bd.Offset != nil {
			off, err := bd.Offset.Evaluate(frame)
			if err != nil {
				return nil, &DecodingError{Path: bd.Name, Msg: err.Error()}
			}
			saved := buf.Position()
			if err := buf.Seek(off.Int); err != nil {
				return nil, &DecodingError{Path: bd.Name, Msg: err.Error()}
			}
			val, err = decode()
			if err != nil {
				return nil, err
			}
			if err := buf.Seek(saved); err != nil {
				return nil, &DecodingError{Path: bd.Name, Msg: err.Error()}
			}
		} else {
			val, err = decode()
			if err != nil {
				return nil, err
			}
		}

		field.Set(reflect.ValueOf(val))
		frame.Bind(bd.Name, val)
	}

	out, err := c.builder(b).Build(v)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	return out, nil
}

func (c *ObjectCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	v := reflect.ValueOf(value)
	frame := el.NewMapResolver(res)
	for _, bd := range c.Bindings {
		field := v.Field(bd.FieldIndex)

		present := true
		if bd.If != nil {
			g, err := bd.If.Evaluate(frame)
			if err != nil {
				return &EncodingError{Path: bd.Name, Msg: err.Error()}
			}
			present = g.Bln
		}
		if !present {
			def, err := evalInit(field, bd.Init, frame)
			if err != nil {
				return &EncodingError{Path: bd.Name, Msg: err.Error()}
			}
			frame.Bind(bd.Name, def)
			continue
		}

		if bd.Offset != nil {
			off, err := bd.Offset.Evaluate(frame)
			if err != nil {
				return &EncodingError{Path: bd.Name, Msg: err.Error()}
			}
			if off.Int < ch.Position() {
				return &EncodingError{Path: bd.Name, Msg: "offset precedes the current write position; BitChannel cannot seek backward"}
			}
			for ch.Position() < off.Int {
				pad := off.Int - ch.Position()
				if pad > 64 {
					pad = 64
				}
				if err := ch.WriteBits(0, uint(pad), bitio.BigEndian); err != nil {
					return &EncodingError{Path: bd.Name, Msg: err.Error()}
				}
			}
		}

		if err := bd.Codec.Encode(field.Interface(), ch, frame); err != nil {
			return err
		}
		frame.Bind(bd.Name, field.Interface())
	}
	return nil
}

// evalInit returns the value a guarded-false field should be bound to:
// field's current (Go zero) value when init is nil, or init evaluated
// against frame and converted to field's type otherwise. The returned
// value always has field's static type, suitable for both field.Set
// (decode) and frame.Bind (decode and encode).
func evalInit(field reflect.Value, init el.Expression, frame el.Resolver) (interface{}, error) {
	if init == nil {
		return field.Interface(), nil
	}
	v, err := init.Evaluate(frame)
	if err != nil {
		return nil, err
	}
	dst := reflect.New(field.Type()).Elem()
	if err := assignElValue(dst, v); err != nil {
		return nil, err
	}
	return dst.Interface(), nil
}

// assignElValue sets dst, a field's own (possibly non-addressable
// temporary) reflect.Value, from an EL Value. EL only carries
// Integer/Boolean/String payloads, so init is only assignable to a
// field whose Go kind is one of those.
func assignElValue(dst reflect.Value, v el.Value) error {
	switch dst.Kind() {
	case reflect.Bool:
		dst.SetBool(v.Bln)
	case reflect.String:
		dst.SetString(v.Str)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		setInt(dst, v.Int)
	default:
		return errors.Errorf("init expression is not assignable to a field of kind %s", dst.Kind())
	}
	return nil
}
