package codec

import (
	"reflect"
	"testing"

	"github.com/mewkiz/preon/bitio"
	"github.com/mewkiz/preon/el"
)

func byteElemCodec() *NumericCodec {
	return NewNumericCodec(reflect.TypeOf(uint8(0)), 8, bitio.BigEndian)
}

func TestListCodecByCount(t *testing.T) {
	c := &ListCodec{
		ElemCodec:  byteElemCodec(),
		GoType:     reflect.TypeOf([]uint8{}),
		Discipline: ListByCount,
		Count:      &el.IntLiteral{Value: 3},
	}
	ch := bitio.NewBitChannel()
	if err := c.Encode([]uint8{1, 2, 3}, ch, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	buf := bitio.NewBitBuffer(ch.Bytes())
	got, err := c.Decode(buf, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []uint8{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestListCodecByExtent(t *testing.T) {
	c := &ListCodec{
		ElemCodec:  byteElemCodec(),
		GoType:     reflect.TypeOf([]uint8{}),
		Discipline: ListByExtent,
		Extent:     &el.IntLiteral{Value: 24}, // 3 bytes
	}
	raw := []uint8{9, 8, 7}
	ch := bitio.NewBitChannel()
	if err := c.Encode(raw, ch, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	buf := bitio.NewBitBuffer(ch.Bytes())
	got, err := c.Decode(buf, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, []uint8(raw)) {
		t.Errorf("got %v, want %v", got, raw)
	}
}

func TestListCodecByTerminator(t *testing.T) {
	c := &ListCodec{
		ElemCodec:  byteElemCodec(),
		GoType:     reflect.TypeOf([]uint8{}),
		Discipline: ListByTerminator,
		Terminator: []byte{0xFF},
	}
	raw := append([]byte{1, 2, 3}, 0xFF)
	buf := bitio.NewBitBuffer(raw)
	got, err := c.Decode(buf, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []uint8{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	ch := bitio.NewBitChannel()
	if err := c.Encode(want, ch, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !reflect.DeepEqual(ch.Bytes(), raw) {
		t.Errorf("got % X, want % X", ch.Bytes(), raw)
	}
}

func TestListCodecByCountLengthMismatchIsEncodingError(t *testing.T) {
	c := &ListCodec{
		ElemCodec:  byteElemCodec(),
		GoType:     reflect.TypeOf([]uint8{}),
		Discipline: ListByCount,
		Count:      &el.IntLiteral{Value: 3},
	}
	ch := bitio.NewBitChannel()
	if err := c.Encode([]uint8{1, 2}, ch, nil); err == nil {
		t.Fatalf("expected an error when the slice length disagrees with Count")
	}
}
