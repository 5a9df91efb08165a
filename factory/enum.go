package factory

import (
	"reflect"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/meta"
)

// ValidValues is implemented by a named integer type to restrict its
// decoded values to a known set, the Go analogue of FLAC's
// ChannelOrder/PredMethod constant families: a plain int-kinded type, but
// decoding an out-of-range value is a DecodingError rather than silently
// accepted. A type that does not implement this interface is left to
// primitiveFactory, which decodes any integer value the width allows.
type ValidValues interface {
	PreonValidValues() []int64
}

var validValuesType = reflect.TypeOf((*ValidValues)(nil)).Elem()

// enumFactory builds codec.EnumCodec for named integer types implementing
// ValidValues, registered ahead of primitiveFactory so it gets first
// refusal on every integer-kinded type.
type enumFactory struct{}

func (enumFactory) Accept(t reflect.Type, opts meta.Options) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return false
	}
	return reflect.PtrTo(t).Implements(validValuesType) || t.Implements(validValuesType)
}

func (enumFactory) Build(t reflect.Type, opts meta.Options, ctx *Context) (codec.Codec, error) {
	endian := bitio.BigEndian
	if opts.Endian == "little" {
		endian = bitio.LittleEndian
	}
	zero := reflect.New(t).Interface().(ValidValues)
	valid := zero.PreonValidValues()
	return codec.NewEnumCodec(t, uint(opts.Bits), endian, valid), nil
}
