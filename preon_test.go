package preon

import (
	"reflect"
	"testing"

	"github.com/mewkiz/preon/meta"
)

type pointRecord struct {
	X uint8 `preon:"bits=8"`
	Y uint8 `preon:"bits=8"`
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	raw := []byte{0x01, 0x02}
	var p pointRecord
	if err := Decode(raw, &p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.X != 1 || p.Y != 2 {
		t.Fatalf("got %+v", p)
	}

	out, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !reflect.DeepEqual(out, raw) {
		t.Errorf("got % X, want % X", out, raw)
	}
}

func TestDecodeRejectsNonPointer(t *testing.T) {
	if err := Decode([]byte{0x00}, pointRecord{}); err == nil {
		t.Fatal("expected an error for a non-pointer out")
	}
}

func TestSizeOfFixedWidthType(t *testing.T) {
	size, err := Size(reflect.TypeOf(pointRecord{}))
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 16 {
		t.Errorf("got %d, want 16", size)
	}
}

// shapeA and shapeB are the two branches of a discriminated union
// keyed on shapeMsg.Kind, registered through SetChoices since a
// struct tag cannot name a Go type.
type shapeA struct {
	X uint8 `preon:"bits=8"`
}

type shapeB struct {
	Y uint16 `preon:"bits=16,endian=big"`
}

type shapeMsg struct {
	Kind uint8 `preon:"bits=8"`
	Body interface{}
}

func init() {
	SetChoices(reflect.TypeOf(shapeMsg{}), "Body", []meta.ChoiceOption{
		{Guard: "Kind == 0", GoType: reflect.TypeOf(shapeA{})},
		{Guard: "", GoType: reflect.TypeOf(shapeB{})},
	})
}

func TestDecodeDiscriminatedUnion(t *testing.T) {
	var m shapeMsg
	if err := Decode([]byte{0x00, 0x07}, &m); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a, ok := m.Body.(shapeA)
	if !ok || a.X != 7 {
		t.Fatalf("got %+v, want shapeA{X:7}", m.Body)
	}

	var m2 shapeMsg
	if err := Decode([]byte{0x01, 0x00, 0x2A}, &m2); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, ok := m2.Body.(shapeB)
	if !ok || b.Y != 42 {
		t.Fatalf("got %+v, want shapeB{Y:42}", m2.Body)
	}
}

func TestEncodeDiscriminatedUnion(t *testing.T) {
	m := shapeMsg{Kind: 0, Body: shapeA{X: 7}}
	out, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0x00, 0x07}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got % X, want % X", out, want)
	}
}
