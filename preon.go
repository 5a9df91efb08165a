// Package preon implements a declarative binary-format framework: given a
// Go struct type annotated with `preon:"..."` tags, it builds a codec
// once via reflection and uses it to decode and encode values against a
// bit-exact wire layout. It plays the same top-level role in this module
// that package flac's Open/NewStream facade plays for the teacher this
// module is descended from: a small entry point over a much larger
// internal pipeline (meta, construct, codec, factory).
package preon

import (
	"reflect"
	"sync"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/el"
	"github.com/mewkiz/preon/factory"
	"github.com/mewkiz/preon/meta"
)

// Re-exported error kinds (spec.md §7), so callers need not import the
// sub-packages that raise them to write a type switch.
type (
	// ParseError reports malformed EL source text in a struct tag.
	ParseError = el.ParseError
	// BindingError reports a static type mismatch or unresolved
	// reference discovered while building a codec.
	BindingError = el.BindingError
	// DecodingError reports a failure while reading a value.
	DecodingError = codec.DecodingError
	// EncodingError reports a failure while writing a value.
	EncodingError = codec.EncodingError
	// BufferError reports a low-level bit buffer or channel failure.
	BufferError = bitio.BufferError
)

// tagSource is the package-level MetadataSource every default-pipeline
// Decode/Encode call consults. SetChoices registers a type's
// discriminated-union branches here; it must be called before that type
// is first decoded or encoded.
var tagSource = meta.NewStructTagSource()

// SetChoices registers the discriminated-union branches for the named
// field of struct type t, a field whose concrete type a guard selects
// at decode time. See
// meta.StructTagSource.SetChoices.
func SetChoices(t reflect.Type, field string, choices []meta.ChoiceOption) {
	tagSource.SetChoices(t, field, choices)
	codecCache.Delete(t)
}

var (
	pipelineOnce sync.Once
	pipeline     *factory.Pipeline
	codecCache   sync.Map // reflect.Type -> codec.Codec
)

// Pipeline returns the package-level factory.Pipeline used by Decode and
// Encode, wired to the package-level struct-tag MetadataSource. Callers
// needing custom sub-factories or decorators should build their own
// factory.Pipeline directly instead of mutating this one.
func Pipeline() *factory.Pipeline {
	pipelineOnce.Do(func() {
		pipeline = factory.NewPipeline(tagSource)
	})
	return pipeline
}

func codecFor(t reflect.Type) (codec.Codec, error) {
	if c, ok := codecCache.Load(t); ok {
		return c.(codec.Codec), nil
	}
	c, err := Pipeline().Build(t, nil)
	if err != nil {
		return nil, err
	}
	codecCache.Store(t, c)
	return c, nil
}

// Decode reads data into out, which must be a non-nil pointer to the
// struct (or other registered) type a codec is to be built for. The
// codec for out's pointed-to type is built on first use and cached for
// subsequent calls.
func Decode(data []byte, out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &DecodingError{Msg: "preon.Decode: out must be a non-nil pointer"}
	}
	t := rv.Elem().Type()
	c, err := codecFor(t)
	if err != nil {
		return err
	}
	buf := bitio.NewBitBuffer(data)
	val, err := c.Decode(buf, nil, nil)
	if err != nil {
		return err
	}
	rv.Elem().Set(reflect.ValueOf(val))
	return nil
}

// Encode writes value's bit-exact wire representation, building (and
// caching) a codec for its runtime type on first use.
func Encode(value interface{}) ([]byte, error) {
	t := reflect.TypeOf(value)
	c, err := codecFor(t)
	if err != nil {
		return nil, err
	}
	ch := bitio.NewBitChannel()
	if err := c.Encode(value, ch, nil); err != nil {
		return nil, err
	}
	if err := ch.Close(); err != nil {
		return nil, err
	}
	return ch.Bytes(), nil
}

// Size returns the bit width a value of type t would decode to or
// encode as, evaluated with no enclosing Resolver (suitable only for a
// type whose SizeExpr is parameterless — a fixed-width wire layout with
// no guarded or variable-length fields).
func Size(t reflect.Type) (int64, error) {
	c, err := codecFor(t)
	if err != nil {
		return 0, err
	}
	v, err := c.SizeExpr().Evaluate(nil)
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}
