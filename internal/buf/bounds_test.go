package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestOffset(t *testing.T) {
	if off, ok := Offset(0x1000, 0x1010); !ok || off != 0x10 {
		t.Fatalf("Offset(0x1000,0x1010)=%d,%v want 16,true", off, ok)
	}
	if _, ok := Offset(0x1000, 0xfff); ok {
		t.Fatalf("Offset should fail when addr precedes base")
	}
	if _, ok := Offset(0, math.MaxUint64); ok {
		t.Fatalf("Offset should fail when distance exceeds MaxInt")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		off, n, limit, want int
	}{
		{0, 4, 8, 4},
		{6, 4, 8, 2},
		{8, 4, 8, 0},
		{-1, 4, 8, 0},
		{2, 0, 8, 0},
		{2, -3, 8, 0},
	}
	for _, c := range cases {
		if got := Clamp(c.off, c.n, c.limit); got != c.want {
			t.Fatalf("Clamp(%d,%d,%d)=%d want %d", c.off, c.n, c.limit, got, c.want)
		}
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}

	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}

func TestFill(t *testing.T) {
	b := make([]byte, 4)
	Fill(b, 0xFF)
	for i, c := range b {
		if c != 0xFF {
			t.Fatalf("byte %d = 0x%x, want 0xff", i, c)
		}
	}
}
