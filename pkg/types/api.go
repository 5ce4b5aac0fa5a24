package types

import (
	"fmt"
	"math"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindInvalidInput     ErrKind = iota // empty or unaddressable region payload
	ErrKindManifestNotFound                // manifest directory or file absent
	ErrKindManifestParse                   // manifest is not a JSON array
	ErrKindSegmentSkipped                  // one manifest segment could not be loaded
)

// String implements the Stringer interface for ErrKind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidInput:
		return "invalid input"
	case ErrKindManifestNotFound:
		return "manifest not found"
	case ErrKindManifestParse:
		return "manifest parse error"
	case ErrKindSegmentSkipped:
		return "segment skipped"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same kind, so a detailed error still satisfies
// errors.Is against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapErr builds an *Error of the given kind around cause.
func WrapErr(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinels commonly returned by implementations.
var (
	// ErrInvalidInput indicates an empty or unaddressable region payload.
	ErrInvalidInput = &Error{Kind: ErrKindInvalidInput, Msg: "invalid region input"}
	// ErrManifestNotFound indicates the dump directory or its manifest is missing.
	ErrManifestNotFound = &Error{Kind: ErrKindManifestNotFound, Msg: "manifest not found"}
	// ErrManifestParse indicates the manifest is not a JSON array of segments.
	ErrManifestParse = &Error{Kind: ErrKindManifestParse, Msg: "malformed manifest"}
	// ErrSegmentSkipped marks a per-segment, non-fatal load failure.
	ErrSegmentSkipped = &Error{Kind: ErrKindSegmentSkipped, Msg: "segment skipped"}
)

// -----------------------------------------------------------------------------
// Validity Mask
// -----------------------------------------------------------------------------

// Mask sentinels. A mask byte parallels one data byte of a Snapshot.
const (
	MaskUnknown byte = 0x00 // unreadable or not captured
	MaskValid   byte = 0xFF // known-good
)

// -----------------------------------------------------------------------------
// Regions, Windows & Ranges
// -----------------------------------------------------------------------------

// Region is a contiguous run of injected bytes at a base address.
type Region struct {
	Base uint64
	Data []byte
}

// Len returns the number of bytes in the region.
func (r Region) Len() int { return len(r.Data) }

// Last returns the inclusive address of the final byte. ok is false for an
// empty region or one that would run past the top of the address space.
func (r Region) Last() (uint64, bool) {
	return lastAddr(r.Base, len(r.Data))
}

// String renders the region as a half-open range.
func (r Region) String() string {
	return fmt.Sprintf("region[%#x+%d]", r.Base, len(r.Data))
}

// Window is the half-open address range [Address, Address+Length) a consumer
// wants to read. Windows that run past 2^64 are clamped to the top of the
// address space; Length <= 0 selects nothing.
type Window struct {
	Address uint64
	Length  int
}

// Empty reports whether the window selects no bytes.
func (w Window) Empty() bool { return w.Length <= 0 }

// Last returns the inclusive address of the final byte in the window,
// clamped to math.MaxUint64. ok is false for an empty window.
func (w Window) Last() (uint64, bool) {
	if w.Length <= 0 {
		return 0, false
	}
	if last, ok := lastAddr(w.Address, w.Length); ok {
		return last, true
	}
	return math.MaxUint64, true
}

// Contains reports whether addr lies inside the window.
func (w Window) Contains(addr uint64) bool {
	last, ok := w.Last()
	return ok && addr >= w.Address && addr <= last
}

// String renders the window as a half-open range.
func (w Window) String() string {
	return fmt.Sprintf("window[%#x+%d]", w.Address, w.Length)
}

// Range is an inclusive address span [Start, Last]. Inclusive bounds keep the
// final byte of the address space representable.
type Range struct {
	Start uint64
	Last  uint64
}

// Size returns the number of bytes in the range. A range covering the whole
// address space reports math.MaxUint64.
func (r Range) Size() uint64 {
	n := r.Last - r.Start
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}

// Intersect returns the overlap of two inclusive ranges.
func Intersect(a, b Range) (Range, bool) {
	start := max(a.Start, b.Start)
	last := min(a.Last, b.Last)
	if start > last {
		return Range{}, false
	}
	return Range{Start: start, Last: last}, true
}

func lastAddr(base uint64, n int) (uint64, bool) {
	if n <= 0 {
		return 0, false
	}
	span := uint64(n) - 1
	if base > math.MaxUint64-span {
		return 0, false
	}
	return base + span, true
}

// -----------------------------------------------------------------------------
// Snapshots
// -----------------------------------------------------------------------------

// Snapshot is a best-effort read of a window from a primary memory source.
// Mask parallels Data; Delta is an opaque source value passed through
// unchanged. Snapshots are owned by the caller; the compositor mutates them
// in place but never retains them.
type Snapshot struct {
	Data  []byte
	Mask  []byte
	Delta any
}

// NewSnapshot allocates a snapshot of n bytes with every byte unknown.
func NewSnapshot(n int) *Snapshot {
	if n < 0 {
		n = 0
	}
	return &Snapshot{
		Data: make([]byte, n),
		Mask: make([]byte, n),
	}
}

// Valid reports whether the byte at offset i is known-good.
func (s *Snapshot) Valid(i int) bool {
	return s != nil && i >= 0 && i < len(s.Mask) && s.Mask[i] == MaskValid
}

// ValidCount returns the number of known-good bytes.
func (s *Snapshot) ValidCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, m := range s.Mask {
		if m == MaskValid {
			n++
		}
	}
	return n
}

// -----------------------------------------------------------------------------
// Manifest Load Results
// -----------------------------------------------------------------------------

// SkippedSegment records one manifest descriptor that did not load.
type SkippedSegment struct {
	Index       int    // position in the manifest array
	Name        string // optional descriptor name
	ContentFile string // content_file as written in the manifest
	Err         error  // wraps ErrSegmentSkipped
}

// LoadResult summarizes a manifest load. Partial success is the expected
// outcome; Successful == 0 means the load effectively failed even though no
// hard error was returned.
type LoadResult struct {
	ID         string // correlates log records of one load run
	Successful int
	Total      int
	Skipped    []SkippedSegment
}

// Failed reports whether no segment was loaded.
func (r *LoadResult) Failed() bool {
	return r == nil || r.Successful == 0
}
