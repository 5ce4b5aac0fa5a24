package buf

import (
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Offset converts the distance from base to addr into a buffer offset.
// ok is false when addr precedes base or the distance does not fit in int.
func Offset(base, addr uint64) (int, bool) {
	if addr < base {
		return 0, false
	}
	d := addr - base
	if d > math.MaxInt {
		return 0, false
	}
	return int(d), true
}

// Clamp limits n so that off+n does not pass limit. It returns 0 when off is
// already outside [0, limit].
func Clamp(off, n, limit int) int {
	if off < 0 || n <= 0 || off >= limit {
		return 0
	}
	if n > limit-off {
		return limit - off
	}
	return n
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Fill sets every byte of b to v.
func Fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
