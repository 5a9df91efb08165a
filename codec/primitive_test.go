package codec

import (
	"reflect"
	"testing"

	"github.com/mewkiz/preon/bitio"
)

func roundTripEncode(t *testing.T, c Codec, value interface{}) []byte {
	t.Helper()
	ch := bitio.NewBitChannel()
	if err := c.Encode(value, ch, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return ch.Bytes()
}

func TestNumericCodecRoundTrip(t *testing.T) {
	golden := []struct {
		name   string
		codec  *NumericCodec
		value  int64
	}{
		{"uint12", NewNumericCodec(reflect.TypeOf(uint16(0)), 12, bitio.BigEndian), 0xABC},
		{"int8", NewNumericCodec(reflect.TypeOf(int8(0)), 8, bitio.BigEndian), -5},
		{"uint32 little", NewNumericCodec(reflect.TypeOf(uint32(0)), 32, bitio.LittleEndian), 0x01020304},
	}
	for _, g := range golden {
		rv := reflect.New(g.codec.GoType).Elem()
		setInt(rv, g.value)
		raw := roundTripEncode(t, g.codec, rv.Interface())

		buf := bitio.NewBitBuffer(raw)
		got, err := g.codec.Decode(buf, nil, nil)
		if err != nil {
			t.Fatalf("%s: Decode: %v", g.name, err)
		}
		if gotN := getInt(reflect.ValueOf(got)); gotN != g.value {
			t.Errorf("%s: got %d, want %d", g.name, gotN, g.value)
		}
	}
}

func TestBooleanCodecRoundTrip(t *testing.T) {
	c := BooleanCodec{}
	for _, v := range []bool{true, false} {
		raw := roundTripEncode(t, c, v)
		buf := bitio.NewBitBuffer(raw)
		got, err := c.Decode(buf, nil, nil)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got.(bool) != v {
			t.Errorf("got %v, want %v", got, v)
		}
	}
}

func TestFloatCodecRoundTrip(t *testing.T) {
	c := &FloatCodec{Bits: 32, Endian: bitio.BigEndian}
	raw := roundTripEncode(t, c, float32(3.5))
	buf := bitio.NewBitBuffer(raw)
	got, err := c.Decode(buf, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(float32) != 3.5 {
		t.Errorf("got %v, want 3.5", got)
	}
}

func TestStringCodecZeroTerminated(t *testing.T) {
	c := &StringCodec{Mode: StringZeroTerminated}
	raw := roundTripEncode(t, c, "hello")
	buf := bitio.NewBitBuffer(raw)
	got, err := c.Decode(buf, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(string) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestStringCodecLengthPrefixed(t *testing.T) {
	c := &StringCodec{Mode: StringLengthPrefixed, PrefixBits: 8}
	raw := roundTripEncode(t, c, "preon")
	buf := bitio.NewBitBuffer(raw)
	got, err := c.Decode(buf, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(string) != "preon" {
		t.Errorf("got %q, want %q", got, "preon")
	}
}

func TestEnumCodecRejectsInvalidValue(t *testing.T) {
	c := NewEnumCodec(reflect.TypeOf(int32(0)), 4, bitio.BigEndian, []int64{0, 1, 2})
	ch := bitio.NewBitChannel()
	if err := ch.WriteBits(7, 4, bitio.BigEndian); err != nil {
		t.Fatalf("WriteBits: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	buf := bitio.NewBitBuffer(ch.Bytes())
	if _, err := c.Decode(buf, nil, nil); err == nil {
		t.Fatalf("expected an error for an out-of-range enum value")
	}
}
