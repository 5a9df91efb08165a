package factory

import (
	"reflect"

	"github.com/mewkiz/pkg/dbg"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
)

// NewDebugDecorator returns a CodecDecorator that traces every Decode and
// Encode call through dbg.Println, the way the teacher's
// frame/subframe.go traces each subframe's decode steps when dbg.Debug is
// enabled. Registering it with Pipeline.Decorate wraps every codec the
// pipeline builds, including nested field codecs.
func NewDebugDecorator() CodecDecorator {
	return func(t reflect.Type, c codec.Codec) codec.Codec {
		return &debugCodec{inner: c, label: t.String()}
	}
}

type debugCodec struct {
	inner codec.Codec
	label string
}

func (d *debugCodec) Type() reflect.Type      { return d.inner.Type() }
func (d *debugCodec) SizeExpr() el.Expression { return d.inner.SizeExpr() }

func (d *debugCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	dbg.Println("decode:", d.label, "at bit", buf.Position())
	v, err := d.inner.Decode(buf, res, b)
	if err != nil {
		dbg.Println("decode:", d.label, "failed:", err)
		return nil, err
	}
	dbg.Println("decode:", d.label, "=", v)
	return v, nil
}

func (d *debugCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	dbg.Println("encode:", d.label, "=", value, "at bit", ch.Position())
	if err := d.inner.Encode(value, ch, res); err != nil {
		dbg.Println("encode:", d.label, "failed:", err)
		return err
	}
	return nil
}
