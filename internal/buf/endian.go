// Package buf contains bounds-checked helpers for slicing and decoding
// windows of memory.
package buf

import "encoding/binary"

// Widths accepted by LE.
const (
	Width16 = 2
	Width32 = 4
	Width64 = 8
)

// LE decodes a little-endian unsigned value of width bytes at off.
// ok is false when the bytes are out of range or width is unsupported.
func LE(b []byte, off, width int) (uint64, bool) {
	s, ok := Slice(b, off, width)
	if !ok {
		return 0, false
	}
	switch width {
	case Width16:
		return uint64(binary.LittleEndian.Uint16(s)), true
	case Width32:
		return uint64(binary.LittleEndian.Uint32(s)), true
	case Width64:
		return binary.LittleEndian.Uint64(s), true
	default:
		return 0, false
	}
}

// AllEqual reports whether every byte of b[off:off+n] equals v. Used to check
// that a decoded value is fully backed by valid mask bytes.
func AllEqual(b []byte, off, n int, v byte) bool {
	s, ok := Slice(b, off, n)
	if !ok {
		return false
	}
	for _, c := range s {
		if c != v {
			return false
		}
	}
	return true
}
