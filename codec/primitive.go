package codec

import (
	"reflect"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
	"github.com/pkg/errors"
)

// NumericCodec reads and writes a fixed-width, possibly signed
// integer field: one of Go's sized integer kinds, or a named type
// whose underlying kind is one of those (an EnumCodec is the same
// shape with a distinct name, kept separate so the factory can choose
// between them by whether the field's type implements
// factory.ValidValues).
type NumericCodec struct {
	GoType reflect.Type
	Bits   uint
	Signed bool
	Endian bitio.Endian
}

// NewNumericCodec returns a NumericCodec for t, defaulting bits to t's
// natural width when bits is 0.
func NewNumericCodec(t reflect.Type, bits uint, endian bitio.Endian) *NumericCodec {
	if bits == 0 {
		bits = intBits(t)
	}
	return &NumericCodec{GoType: t, Bits: bits, Signed: isSigned(t), Endian: endian}
}

func (c *NumericCodec) Type() reflect.Type { return c.GoType }

func (c *NumericCodec) SizeExpr() el.Expression { return &el.IntLiteral{Value: int64(c.Bits)} }

func (c *NumericCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	if c.Signed {
		v, err := buf.ReadSigned(c.Bits, c.Endian)
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		rv := reflect.New(c.GoType).Elem()
		setInt(rv, v)
		return rv.Interface(), nil
	}
	v, err := buf.ReadBits(c.Bits, c.Endian)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	rv := reflect.New(c.GoType).Elem()
	setInt(rv, int64(v))
	return rv.Interface(), nil
}

func (c *NumericCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	rv := reflect.ValueOf(value)
	n := getInt(rv)
	if c.Signed {
		if err := ch.WriteSigned(n, c.Bits, c.Endian); err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		return nil
	}
	if err := ch.WriteBits(uint64(n), c.Bits, c.Endian); err != nil {
		return &EncodingError{Msg: err.Error()}
	}
	return nil
}

// EnumCodec reads and writes a named integer type whose valid values
// are restricted to a registered set of constants (a FLAC-style
// ChannelOrder/PredMethod kind of field). It behaves identically to
// NumericCodec on the wire; the distinct type exists so a factory can
// attach a Valid set for decode-time validation without
// complicating NumericCodec's zero-configuration default path.
type EnumCodec struct {
	NumericCodec
	Valid map[int64]bool
}

// NewEnumCodec returns an EnumCodec for t restricted to the given
// valid values; an empty valid set disables validation.
func NewEnumCodec(t reflect.Type, bits uint, endian bitio.Endian, valid []int64) *EnumCodec {
	c := &EnumCodec{NumericCodec: *NewNumericCodec(t, bits, endian)}
	if len(valid) > 0 {
		c.Valid = make(map[int64]bool, len(valid))
		for _, v := range valid {
			c.Valid[v] = true
		}
	}
	return c
}

func (c *EnumCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	v, err := c.NumericCodec.Decode(buf, res, b)
	if err != nil {
		return nil, err
	}
	if c.Valid != nil {
		n := getInt(reflect.ValueOf(v))
		if !c.Valid[n] {
			return nil, &DecodingError{Msg: errors.Errorf("value %d is not a valid %s", n, c.GoType).Error()}
		}
	}
	return v, nil
}

// BooleanCodec reads and writes a single-bit boolean field.
type BooleanCodec struct{}

func (BooleanCodec) Type() reflect.Type { return reflect.TypeOf(false) }

func (BooleanCodec) SizeExpr() el.Expression { return &el.IntLiteral{Value: 1} }

func (BooleanCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	v, err := buf.ReadBool()
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	return v, nil
}

func (BooleanCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	if err := ch.WriteBool(value.(bool)); err != nil {
		return &EncodingError{Msg: err.Error()}
	}
	return nil
}

// FloatCodec reads and writes an IEEE-754 float32 or float64 field.
type FloatCodec struct {
	Bits   uint // 32 or 64
	Endian bitio.Endian
}

func (c *FloatCodec) Type() reflect.Type {
	if c.Bits == 32 {
		return reflect.TypeOf(float32(0))
	}
	return reflect.TypeOf(float64(0))
}

func (c *FloatCodec) SizeExpr() el.Expression { return &el.IntLiteral{Value: int64(c.Bits)} }

func (c *FloatCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	if c.Bits == 32 {
		v, err := buf.ReadFloat32(c.Endian)
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		return v, nil
	}
	v, err := buf.ReadFloat64(c.Endian)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	return v, nil
}

func (c *FloatCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	var err error
	if c.Bits == 32 {
		err = ch.WriteFloat32(value.(float32), c.Endian)
	} else {
		err = ch.WriteFloat64(value.(float64), c.Endian)
	}
	if err != nil {
		return &EncodingError{Msg: err.Error()}
	}
	return nil
}

// ByteArrayCodec reads and writes a []byte field whose length is
// given by Length, an Integer EL expression evaluated against the
// Resolver in scope (typically a reference to a sibling field decoded
// earlier in the same ObjectCodec).
type ByteArrayCodec struct {
	Length el.Expression
}

func (c *ByteArrayCodec) Type() reflect.Type { return reflect.TypeOf([]byte(nil)) }

func (c *ByteArrayCodec) SizeExpr() el.Expression {
	eight := &el.IntLiteral{Value: 8}
	bin, err := el.NewBinaryExpr(el.Mul, c.Length, eight)
	if err != nil {
		// Length is always Integer-typed by construction; this cannot
		// fail in practice, but fall back to the unscaled expression
		// rather than panic.
		return c.Length
	}
	return el.Fold(bin)
}

func (c *ByteArrayCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	n, err := c.Length.Evaluate(res)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	out, err := buf.ReadBytes(n.Int)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	return out, nil
}

func (c *ByteArrayCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	if err := ch.WriteBytes(value.([]byte)); err != nil {
		return &EncodingError{Msg: err.Error()}
	}
	return nil
}

// StringTermination selects how a StringCodec locates the end of a
// string's encoded bytes.
type StringTermination int

const (
	// StringFixedLength reads/writes exactly Length bytes.
	StringFixedLength StringTermination = iota
	// StringZeroTerminated reads bytes up to and including a 0x00
	// byte, excluding the terminator from the decoded value, and
	// appends one on encode.
	StringZeroTerminated
	// StringLengthPrefixed reads a Preon Integer-typed length prefix of
	// PrefixBits bits immediately before the string bytes, then that
	// many bytes; on encode it writes the prefix followed by the bytes.
	StringLengthPrefixed
)

// StringCodec reads and writes a string field under one of three wire
// disciplines, generalizing the length-prefixed string reads in the
// teacher's vorbis comment and cue sheet parsing.
type StringCodec struct {
	Mode       StringTermination
	Length     el.Expression // used when Mode == StringFixedLength
	PrefixBits uint          // used when Mode == StringLengthPrefixed
	// Charset is "ascii" or "utf8" ("" defaults to "utf8"). "ascii"
	// rejects bytes outside the 7-bit range on both decode and encode;
	// "utf8" accepts any byte sequence, the same as Go's native string
	// representation.
	Charset string
}

func (c *StringCodec) checkCharset(raw []byte) error {
	if c.Charset != "ascii" {
		return nil
	}
	for _, b := range raw {
		if b > 0x7F {
			return errors.Errorf("byte 0x%02X is not valid ascii", b)
		}
	}
	return nil
}

func (c *StringCodec) Type() reflect.Type { return reflect.TypeOf("") }

func (c *StringCodec) SizeExpr() el.Expression {
	switch c.Mode {
	case StringFixedLength:
		eight := &el.IntLiteral{Value: 8}
		bin, err := el.NewBinaryExpr(el.Mul, c.Length, eight)
		if err != nil {
			return c.Length
		}
		return el.Fold(bin)
	default:
		// Zero-terminated and length-prefixed strings have a size that
		// depends on the decoded content itself, not on any binding
		// visible before decoding; their static size is unknown, so
		// SizeExpr returns a zero placeholder. The codec's actual read
		// advances the buffer by however many bits it consumes.
		return &el.IntLiteral{Value: 0}
	}
}

func (c *StringCodec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	switch c.Mode {
	case StringFixedLength:
		n, err := c.Length.Evaluate(res)
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		raw, err := buf.ReadBytes(n.Int)
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		if err := c.checkCharset(raw); err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		return string(raw), nil
	case StringLengthPrefixed:
		n, err := buf.ReadBits(c.PrefixBits, bitio.BigEndian)
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		raw, err := buf.ReadBytes(int64(n))
		if err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		if err := c.checkCharset(raw); err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		return string(raw), nil
	default: // StringZeroTerminated
		var out []byte
		for {
			v, err := buf.ReadBits(8, bitio.BigEndian)
			if err != nil {
				return nil, &DecodingError{Msg: err.Error()}
			}
			if v == 0 {
				break
			}
			out = append(out, byte(v))
		}
		if err := c.checkCharset(out); err != nil {
			return nil, &DecodingError{Msg: err.Error()}
		}
		return string(out), nil
	}
}

func (c *StringCodec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	s := value.(string)
	if err := c.checkCharset([]byte(s)); err != nil {
		return &EncodingError{Msg: err.Error()}
	}
	switch c.Mode {
	case StringFixedLength:
		n, err := c.Length.Evaluate(res)
		if err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		if int64(len(s)) != n.Int {
			return &EncodingError{Msg: "string length disagrees with its length binding"}
		}
		if err := ch.WriteBytes([]byte(s)); err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		return nil
	case StringLengthPrefixed:
		if err := ch.WriteBits(uint64(len(s)), c.PrefixBits, bitio.BigEndian); err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		if err := ch.WriteBytes([]byte(s)); err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		return nil
	default: // StringZeroTerminated
		if err := ch.WriteBytes([]byte(s)); err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		if err := ch.WriteBits(0, 8, bitio.BigEndian); err != nil {
			return &EncodingError{Msg: err.Error()}
		}
		return nil
	}
}
