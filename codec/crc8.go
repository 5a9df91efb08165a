package codec

import (
	"fmt"
	"reflect"

	"github.com/mewkiz/pkg/hashutil/crc8"
	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/construct"
	"github.com/mewkiz/preon/el"
)

// CRC8Codec wraps Inner with a trailing 8-bit CRC-8/ATM checksum
// covering exactly the bytes Inner decodes or encodes, the same
// checksum construction frame.NewHeader verifies via a crc8.NewATM
// hash tee'd across the header's field reads. Inner must occupy a
// whole number of bytes, both in position and in length.
type CRC8Codec struct {
	Inner Codec
}

func (c *CRC8Codec) Type() reflect.Type { return c.Inner.Type() }

func (c *CRC8Codec) SizeExpr() el.Expression {
	eight := &el.IntLiteral{Value: 8}
	sum, err := el.NewBinaryExpr(el.Add, c.Inner.SizeExpr(), eight)
	if err != nil {
		return c.Inner.SizeExpr()
	}
	return el.Fold(sum)
}

func (c *CRC8Codec) Decode(buf *bitio.BitBuffer, res el.Resolver, b construct.Builder) (interface{}, error) {
	start := buf.Position()
	val, err := c.Inner.Decode(buf, res, b)
	if err != nil {
		return nil, err
	}
	end := buf.Position()
	if start%8 != 0 || (end-start)%8 != 0 {
		return nil, &DecodingError{Msg: "crc8: wrapped field must be byte-aligned in both position and length"}
	}

	if err := buf.Seek(start); err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	raw, err := buf.ReadBytes((end - start) / 8)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}

	h := crc8.NewATM()
	h.Write(raw)
	want, err := buf.ReadBits(8, bitio.BigEndian)
	if err != nil {
		return nil, &DecodingError{Msg: err.Error()}
	}
	if got := h.Sum8(); byte(want) != got {
		return nil, &DecodingError{Msg: fmt.Sprintf("crc8 checksum mismatch; expected 0x%02X, got 0x%02X", want, got)}
	}
	return val, nil
}

func (c *CRC8Codec) Encode(value interface{}, ch *bitio.BitChannel, res el.Resolver) error {
	start := ch.Position()
	if start%8 != 0 {
		return &EncodingError{Msg: "crc8: wrapped field must start at a byte boundary"}
	}
	if err := c.Inner.Encode(value, ch, res); err != nil {
		return err
	}
	end := ch.Position()
	if (end-start)%8 != 0 {
		return &EncodingError{Msg: "crc8: wrapped field must occupy a whole number of bytes"}
	}

	raw := ch.Bytes()[start/8 : end/8]
	h := crc8.NewATM()
	h.Write(raw)
	if err := ch.WriteBits(uint64(h.Sum8()), 8, bitio.BigEndian); err != nil {
		return &EncodingError{Msg: err.Error()}
	}
	return nil
}
