package twos

import "testing"

func TestSignExtend(t *testing.T) {
	golden := []struct {
		x    uint64
		n    uint
		want int64
	}{
		{x: 0b011, n: 3, want: 3},
		{x: 0b010, n: 3, want: 2},
		{x: 0b001, n: 3, want: 1},
		{x: 0b000, n: 3, want: 0},
		{x: 0b111, n: 3, want: -1},
		{x: 0b110, n: 3, want: -2},
		{x: 0b101, n: 3, want: -3},
		{x: 0b100, n: 3, want: -4},
		{x: 1, n: 1, want: -1},
		{x: 0, n: 1, want: 0},
		{x: 0xFFFFFFFFFFFFFFFF, n: 64, want: -1},
	}
	for _, g := range golden {
		got := SignExtend(g.x, g.n)
		if g.want != got {
			t.Errorf("result mismatch of SignExtend(x=0b%b, n=%d); expected %d, got %d", g.x, g.n, g.want, got)
			continue
		}
	}
}

func TestTruncate(t *testing.T) {
	golden := []struct {
		v    int64
		n    uint
		want uint64
	}{
		{v: -1, n: 3, want: 0b111},
		{v: -4, n: 3, want: 0b100},
		{v: 3, n: 3, want: 0b011},
		{v: -1, n: 64, want: 0xFFFFFFFFFFFFFFFF},
	}
	for _, g := range golden {
		got := Truncate(g.v, g.n)
		if g.want != got {
			t.Errorf("result mismatch of Truncate(v=%d, n=%d); expected 0b%b, got 0b%b", g.v, g.n, g.want, got)
			continue
		}
	}
}

func TestPow(t *testing.T) {
	golden := []struct {
		base, exp, want int64
	}{
		{base: 2, exp: 10, want: 1024},
		{base: 3, exp: 0, want: 1},
		{base: 5, exp: -1, want: 0},
		{base: 2, exp: 1, want: 2},
	}
	for _, g := range golden {
		got := Pow(g.base, g.exp)
		if g.want != got {
			t.Errorf("result mismatch of Pow(base=%d, exp=%d); expected %d, got %d", g.base, g.exp, g.want, got)
			continue
		}
	}
}
