package codec

import (
	"reflect"
	"testing"

	"github.com/mewkiz/pkg/hashutil/crc8"
	"github.com/mewkiz/preon/bitio"
)

func TestCRC8CodecRoundTrip(t *testing.T) {
	inner := NewNumericCodec(reflect.TypeOf(uint32(0)), 32, bitio.BigEndian)
	c := &CRC8Codec{Inner: inner}

	ch := bitio.NewBitChannel()
	if err := c.Encode(uint32(0xDEADBEEF), ch, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	raw := ch.Bytes()
	if len(raw) != 5 {
		t.Fatalf("got %d bytes, want 5 (4 for the field, 1 for the checksum)", len(raw))
	}

	h := crc8.NewATM()
	h.Write(raw[:4])
	if raw[4] != h.Sum8() {
		t.Fatalf("checksum byte = 0x%02X, want 0x%02X", raw[4], h.Sum8())
	}

	buf := bitio.NewBitBuffer(raw)
	got, err := c.Decode(buf, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(uint32) != 0xDEADBEEF {
		t.Errorf("got 0x%08X, want 0xDEADBEEF", got)
	}
}

func TestCRC8CodecDetectsCorruption(t *testing.T) {
	inner := NewNumericCodec(reflect.TypeOf(uint32(0)), 32, bitio.BigEndian)
	c := &CRC8Codec{Inner: inner}

	ch := bitio.NewBitChannel()
	if err := c.Encode(uint32(1), ch, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	raw := ch.Bytes()
	raw[0] ^= 0xFF // corrupt the field, leaving the checksum stale

	buf := bitio.NewBitBuffer(raw)
	if _, err := c.Decode(buf, nil, nil); err == nil {
		t.Fatalf("expected a checksum mismatch error")
	}
}
