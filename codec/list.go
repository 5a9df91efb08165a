package codec

import (
	"bytes"
	"reflect"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
)

// ListDiscipline selects how a ListCodec knows where its elements end,
// generalizing three patterns the teacher's meta package hand-writes
// once each: a SeekTable's implicit by-count-via-header.Length
// (here, ListByExtent), a CueSheet's explicit leading count field
// (here, ListByCount), and a VorbisComment's read-to-EOF (here,
// ListByTerminator, with an explicit terminator pattern standing in
// for "read until the enclosing limit is exhausted").
type ListDiscipline int

const (
	// ListByCount decodes exactly Count elements.
	ListByCount ListDiscipline = iota
	// ListByExtent decodes elements until Extent bits have been
	// consumed from the buffer.
	ListByExtent
	// ListByTerminator decodes elements until a fixed-width element
	// position exactly matches Terminator, consuming but discarding
	// it. It requires ElemCodec to report a constant, byte-aligned
	// SizeExpr.
	ListByTerminator
)

// ListCodec decodes and encodes a Go slice as a sequence of
// homogeneously-typed elements under one of three disciplines.
type ListCodec struct {
	ElemCodec  Codec
	GoType     reflect.Type // slice type
	Discipline ListDiscipline
	Count      el.Expression // ListByCount
	Extent     el.Expression // ListByExtent, in bits
	Terminator []byte        // ListByTerminator
}

func (c *ListCodec) Type() reflect.Type { return c.GoType }

func (c *ListCodec) SizeExpr() el.Expression {
	switch c.Discipline {
	case ListByExtent:
		return c.Extent
	case ListByCount:
		bin, err := el.NewBinaryExpr(el.Mul, c.Count, c.ElemCodec.SizeExpr())
		if err != nil {
			return c.Count
		}
		return el.Fold(bin)
	default: // ListByTerminator
		// The encoded length depends on how many elements precede the
		// terminator, which is not known statically.
		return &el.IntLiteral{Value: 0}
	}
}

func (c *ListCodec) constantElemBits() (int64, bool) {
	size := c.ElemCodec.SizeExpr()
	if !size.IsParameterless() {
		return 0, false
	}
	v, err := size.Evaluate(nil)
	if err != nil || v.Int%8 != 0 {
		return 0, false
	}
	return v.Int, true
}

func (c *ListCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	slice := reflect.MakeSlice(c.GoType, 0, 0)

	switch c.Discipline {
	case ListByCount:
		n, err := c.Count.Evaluate(res)
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		for i := int64(0); i < n.Int; i++ {
			v, err := c.ElemCodec.Decode(buf, res, b)
			if err != nil {
				return nil, err
			}
			slice = reflect.Append(slice, reflect.ValueOf(v))
		}

	case ListByExtent:
		ext, err := c.Extent.Evaluate(res)
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		end := buf.Position() + ext.Int
		for buf.Position() < end {
			v, err := c.ElemCodec.Decode(buf, res, b)
			if err != nil {
				return nil, err
			}
			slice = reflect.Append(slice, reflect.ValueOf(v))
		}
		if buf.Position() != end {
			return nil, &DecodingError{Msg: "list elements did not exactly fill the declared extent"}
		}

	default: // ListByTerminator
		elemBits, ok := c.constantElemBits()
		if !ok {
			return nil, &DecodingError{Msg: "terminator discipline requires a fixed-width, byte-aligned element codec"}
		}
		for {
			if buf.Remaining() < elemBits {
				break
			}
			pos := buf.Position()
			raw, err := buf.ReadBytes(elemBits / 8)
			if err != nil {
				return nil, &DecodingError{Msg: err.Error()}
			}
			if bytes.Equal(raw, c.Terminator) {
				break
			}
			if err := buf.Seek(pos); err != nil {
				return nil, &DecodingError{Msg: err.Error()}
			}
			v, err := c.ElemCodec.Decode(buf, res, b)
			if err != nil {
				return nil, err
			}
			slice = reflect.Append(slice, reflect.ValueOf(v))
		}
	}

	return slice.Interface(), nil
}

func (c *ListCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	v := reflect.ValueOf(value)
	start := ch.Position()
	for i := 0; i < v.Len(); i++ {
		if err := c.ElemCodec.Encode(v.Index(i).Interface(), ch, res); err != nil {
			return err
		}
	}

	switch c.Discipline {
	case ListByCount:
		n, err := c.Count.Evaluate(res)
		if err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		if n.Int != int64(v.Len()) {
			return &EncodingError{Msg: "list length disagrees with its count binding"}
		}
	case ListByExtent:
		ext, err := c.Extent.Evaluate(res)
		if err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		if ch.Position()-start != ext.Int {
			return &EncodingError{Msg: "encoded list did not exactly fill its declared extent"}
		}
	case ListByTerminator:
		if err := ch.WriteBytes(c.Terminator); err != nil {
			return &EncodingError{Msg: err.Error()}
		}
	}
	return nil
}
