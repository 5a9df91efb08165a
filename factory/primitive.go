package factory

import (
	"reflect"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/meta"
)

var boolType = reflect.TypeOf(false)
var stringType = reflect.TypeOf("")

// primitiveFactory builds codecs for Go's sized integers, bool, the two
// IEEE-754 float kinds, []byte, and string — the scalar wire types
// spec.md §3/§6 lists as bit-exact primitives. It has no Choices to
// dispatch on, so a field with Options.Choices set is left for a
// higher-priority sub-factory (registered ahead of it) to claim.
type primitiveFactory struct{}

func (primitiveFactory) Accept(t reflect.Type, opts meta.Options) bool {
	if len(opts.Choices) > 0 {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Bool, reflect.Float32, reflect.Float64, reflect.String:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	}
	return false
}

func (primitiveFactory) Build(t reflect.Type, opts meta.Options, ctx *Context) (codec.Codec, error) {
	endian := bitio.BigEndian
	if opts.Endian == "little" {
		endian = bitio.LittleEndian
	}

	switch {
	case t == boolType:
		return codec.BooleanCodec{}, nil

	case t.Kind() == reflect.Float32:
		return &codec.FloatCodec{Bits: 32, Endian: endian}, nil
	case t.Kind() == reflect.Float64:
		return &codec.FloatCodec{Bits: 64, Endian: endian}, nil

	case t == stringType:
		return buildStringCodec(opts, ctx)

	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		length, err := ctx.ParseExpr(opts.Length)
		if err != nil {
			return nil, err
		}
		return &codec.ByteArrayCodec{Length: length}, nil

	default:
		return codec.NewNumericCodec(t, uint(opts.Bits), endian), nil
	}
}

func buildStringCodec(opts meta.Options, ctx *Context) (codec.Codec, error) {
	switch {
	case opts.Terminator != "":
		return &codec.StringCodec{Mode: codec.StringZeroTerminated, Charset: opts.Charset}, nil
	case opts.Length != "":
		length, err := ctx.ParseExpr(opts.Length)
		if err != nil {
			return nil, err
		}
		return &codec.StringCodec{Mode: codec.StringFixedLength, Length: length, Charset: opts.Charset}, nil
	default:
		bits := opts.Bits
		if bits == 0 {
			bits = 8
		}
		return &codec.StringCodec{Mode: codec.StringLengthPrefixed, PrefixBits: uint(bits), Charset: opts.Charset}, nil
	}
}
