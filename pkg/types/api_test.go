package types

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := Errorf(ErrKindManifestParse, "manifest: %s is empty", "segments.json")
	assert.ErrorIs(t, err, ErrManifestParse)
	assert.NotErrorIs(t, err, ErrManifestNotFound)

	wrapped := fmt.Errorf("load: %w", err)
	assert.ErrorIs(t, wrapped, ErrManifestParse)

	var typed *Error
	require.ErrorAs(t, wrapped, &typed)
	assert.Equal(t, ErrKindManifestParse, typed.Kind)
}

func TestError_WrapErr(t *testing.T) {
	err := WrapErr(ErrKindSegmentSkipped, "segment 3", io.ErrUnexpectedEOF)
	assert.Equal(t, "segment 3: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, ErrSegmentSkipped)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.False(t, errors.Is(nilErr, ErrSegmentSkipped))
}

func TestErrKind_String(t *testing.T) {
	assert.Equal(t, "invalid input", ErrKindInvalidInput.String())
	assert.Equal(t, "manifest not found", ErrKindManifestNotFound.String())
	assert.Equal(t, "ErrKind(42)", ErrKind(42).String())
}

func TestRegion_Last(t *testing.T) {
	last, ok := Region{Base: 0x100, Data: []byte{1, 2, 3}}.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(0x102), last)

	_, ok = Region{Base: 0x100}.Last()
	assert.False(t, ok, "empty region has no last byte")

	last, ok = Region{Base: math.MaxUint64, Data: []byte{1}}.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), last)

	_, ok = Region{Base: math.MaxUint64, Data: []byte{1, 2}}.Last()
	assert.False(t, ok)
}

func TestWindow_Last(t *testing.T) {
	tests := []struct {
		name   string
		w      Window
		want   uint64
		wantOK bool
	}{
		{"plain", Window{Address: 0x100, Length: 8}, 0x107, true},
		{"single byte", Window{Address: 5, Length: 1}, 5, true},
		{"empty", Window{Address: 0x100}, 0, false},
		{"negative", Window{Address: 0x100, Length: -4}, 0, false},
		{"clamped", Window{Address: math.MaxUint64 - 1, Length: 16}, math.MaxUint64, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.w.Last()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := Window{Address: 0x100, Length: 8}
	assert.True(t, w.Contains(0x100))
	assert.True(t, w.Contains(0x107))
	assert.False(t, w.Contains(0x108))
	assert.False(t, w.Contains(0xFF))
	assert.False(t, Window{Address: 0x100}.Contains(0x100))
}

func TestRange_SizeAndIntersect(t *testing.T) {
	assert.Equal(t, uint64(1), Range{Start: 7, Last: 7}.Size())
	assert.Equal(t, uint64(math.MaxUint64), Range{Start: 0, Last: math.MaxUint64}.Size())

	got, ok := Intersect(Range{Start: 0x100, Last: 0x107}, Range{Start: 0x102, Last: 0x104})
	require.True(t, ok)
	assert.Equal(t, Range{Start: 0x102, Last: 0x104}, got)

	got, ok = Intersect(Range{Start: 0x100, Last: 0x107}, Range{Start: 0x107, Last: 0x200})
	require.True(t, ok)
	assert.Equal(t, Range{Start: 0x107, Last: 0x107}, got)

	_, ok = Intersect(Range{Start: 0x100, Last: 0x107}, Range{Start: 0x108, Last: 0x200})
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	s := NewSnapshot(4)
	assert.Len(t, s.Data, 4)
	assert.Zero(t, s.ValidCount())

	s.Mask[1] = MaskValid
	s.Mask[3] = MaskValid
	assert.Equal(t, 2, s.ValidCount())
	assert.True(t, s.Valid(1))
	assert.False(t, s.Valid(2))
	assert.False(t, s.Valid(4))
	assert.False(t, s.Valid(-1))

	assert.Empty(t, NewSnapshot(-1).Data)

	var nilSnap *Snapshot
	assert.Zero(t, nilSnap.ValidCount())
}

func TestLoadResult_Failed(t *testing.T) {
	var nilRes *LoadResult
	assert.True(t, nilRes.Failed())
	assert.True(t, (&LoadResult{Total: 3}).Failed())
	assert.False(t, (&LoadResult{Successful: 1, Total: 3}).Failed())
}
