package bitio

import (
	"bytes"
	"io"
	"math"

	"github.com/icza/bitio"
	"github.com/mewkiz/preon/internal/twos"
)

// A BitChannel is a sequential, most-significant-bit-first bit writer. It
// buffers a partial trailing byte internally; Close flushes it, padding the
// remaining low bits with zero.
type BitChannel struct {
	bw  *bitio.Writer
	buf *bytes.Buffer
	pos int64
}

// NewBitChannel returns a BitChannel that accumulates written bits in an
// internal buffer, retrievable with Bytes after Close.
func NewBitChannel() *BitChannel {
	buf := new(bytes.Buffer)
	return &BitChannel{bw: bitio.NewWriter(buf), buf: buf}
}

// Position returns the number of bits written so far.
func (c *BitChannel) Position() int64 {
	return c.pos
}

// WriteBits writes the low n bits (1 <= n <= 64) of v, most-significant-bit
// first, truncating v to its low n bits first. For byte-aligned widths of
// 16 bits or more, endian selects the byte order the value is split into
// before writing.
func (c *BitChannel) WriteBits(v uint64, n uint, endian Endian) error {
	if n < 1 || n > 64 {
		return newBufferError("WriteBits", c.pos, "invalid width %d; must be in [1, 64]", n)
	}
	v &= maskN(n)
	if endian == LittleEndian && n%8 == 0 && n > 8 {
		v = swapBytes(v, n/8)
	}
	if err := c.bw.WriteBits(v, uint8(n)); err != nil {
		return newBufferError("WriteBits", c.pos, "%v", err)
	}
	c.pos += int64(n)
	return nil
}

// WriteSigned truncates v to its low n bits (two's complement) and writes
// them most-significant-bit first.
func (c *BitChannel) WriteSigned(v int64, n uint, endian Endian) error {
	return c.WriteBits(twos.Truncate(v, n), n, endian)
}

// WriteBool writes a single bit: 1 for true, 0 for false.
func (c *BitChannel) WriteBool(v bool) error {
	var bit uint64
	if v {
		bit = 1
	}
	return c.WriteBits(bit, 1, BigEndian)
}

// WriteFloat32 writes v as 32 bits of IEEE-754 single precision.
func (c *BitChannel) WriteFloat32(v float32, endian Endian) error {
	return c.WriteBits(uint64(math.Float32bits(v)), 32, endian)
}

// WriteFloat64 writes v as 64 bits of IEEE-754 double precision.
func (c *BitChannel) WriteFloat64(v float64, endian Endian) error {
	return c.WriteBits(math.Float64bits(v), 64, endian)
}

// WriteBytes writes each byte of p as 8 bits, most-significant-bit first.
func (c *BitChannel) WriteBytes(p []byte) error {
	for _, b := range p {
		if err := c.WriteBits(uint64(b), 8, BigEndian); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes any buffered partial byte, padding the trailing bits with
// zero. The channel must not be written to after Close.
func (c *BitChannel) Close() error {
	if err := c.bw.Close(); err != nil {
		return newBufferError("Close", c.pos, "%v", err)
	}
	return nil
}

// Bytes returns the bytes written so far, including the zero-padded final
// partial byte if Close has been called. The caller must not modify the
// returned slice.
func (c *BitChannel) Bytes() []byte {
	return c.buf.Bytes()
}

// WriteTo copies the channel's accumulated bytes to w. Close must be called
// first to flush any pending partial byte.
func (c *BitChannel) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.buf.Bytes())
	return int64(n), err
}
