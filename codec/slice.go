package codec

import (
	"reflect"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
)

// SliceCodec decodes Inner against an independent sub-buffer windowed
// to Extent bits (bitio.BitBuffer.Slice), then advances the parent
// buffer's cursor by Extent regardless of how much of the window Inner
// actually consumed. This isolates a field's decode from its
// neighbors when a format declares a region's size without requiring
// every byte of it to be meaningful — the same shape as the teacher's
// io.LimitReader wrapping passed to each metadata block body in
// meta.NewBlock, adapted from a byte-oriented limited reader to a
// bit-addressable windowed buffer.
type SliceCodec struct {
	Inner  Codec
	Extent el.Expression // window size, in bits
}

func (c *SliceCodec) Type() reflect.Type { return c.Inner.Type() }

func (c *SliceCodec) SizeExpr() el.Expression { return c.Extent }

func (c *SliceCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	ext, err := c.Extent.Evaluate(res)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	window, err := buf.Slice(buf.Position(), ext.Int)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	val, err := c.Inner.Decode(window, res, b)
	if err != nil {
		return nil, err
	}
	if err := buf.Seek(buf.Position() + ext.Int); err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	return val, nil
}

func (c *SliceCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	// BitChannel is a sequential, non-windowed writer, so there is no
	// independent sub-region to isolate Inner's writes into; the
	// extent has no effect beyond what Inner itself writes.
	return c.Inner.Encode(value, ch, res)
}
