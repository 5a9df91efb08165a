package factory

import (
	"reflect"
	"strconv"

	"github.com/mewkiz/pkg/errutil"

	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/meta"
)

// listFactory builds codec.ListCodec for slice types other than []byte
// (primitiveFactory already claims the raw byte-array case, grounding
// spec.md's scenario A). The element codec is recursively built through
// the same Context, so a list of structs gets an ObjectCodec element
// just as directly as a list of integers gets a NumericCodec one.
type listFactory struct{}

func (listFactory) Accept(t reflect.Type, opts meta.Options) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8
}

func (listFactory) Build(t reflect.Type, opts meta.Options, ctx *Context) (codec.Codec, error) {
	elemRefCtx := &sliceRefContext{elem: t.Elem(), outer: ctx.RefContext()}
	elemCodec, err := ctx.BuildField(t.Elem(), meta.Options{}, elemRefCtx)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.Terminator != "":
		term, err := parseTerminatorBytes(opts.Terminator)
		if err != nil {
			return nil, errutil.Err(err)
		}
		return &codec.ListCodec{
			ElemCodec:  elemCodec,
			GoType:     t,
			Discipline: codec.ListByTerminator,
			Terminator: term,
		}, nil

	case opts.Length != "":
		count, err := ctx.ParseExpr(opts.Length)
		if err != nil {
			return nil, err
		}
		return &codec.ListCodec{
			ElemCodec:  elemCodec,
			GoType:     t,
			Discipline: codec.ListByCount,
			Count:      count,
		}, nil

	default:
		return nil, errutil.Err(errNoListLength(t))
	}
}

// parseTerminatorBytes turns a meta.Options.Terminator string (already
// validated by meta.parseTag to be a single byte value, decimal or
// 0x-prefixed) into the one-byte sentinel codec.ListCodec compares
// against.
func parseTerminatorBytes(s string) ([]byte, error) {
	n, err := strconv.ParseInt(s, 0, 16)
	if err != nil {
		return nil, err
	}
	return []byte{byte(n)}, nil
}

func errNoListLength(t reflect.Type) error {
	return &fieldRefError{msg: "factory: list type " + t.String() + " needs a length or terminator modifier"}
}
