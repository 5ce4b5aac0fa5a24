package source

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/overlaykit/internal/testutil"
	"github.com/joshuapare/overlaykit/pkg/types"
)

func openImage(t *testing.T, base uint64, data []byte) *Image {
	t.Helper()
	path := testutil.WriteFile(t, t.TempDir(), "image.bin", data)
	img, err := OpenImage(path, base)
	require.NoError(t, err)
	t.Cleanup(func() { _ = img.Close() })
	return img
}

func TestNull_Read(t *testing.T) {
	snap, err := Null{}.Read(context.Background(), 0x1000, 16)
	require.NoError(t, err)
	assert.Len(t, snap.Data, 16)
	assert.Len(t, snap.Mask, 16)
	assert.Zero(t, snap.ValidCount())
	assert.Nil(t, snap.Delta)

	snap, err = Null{}.Read(context.Background(), 0, -1)
	require.NoError(t, err)
	assert.Empty(t, snap.Data)
}

func TestNull_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Null{}.Read(ctx, 0, 8)
	require.ErrorIs(t, err, context.Canceled)
}

func TestImage_Read(t *testing.T) {
	img := openImage(t, 0x100, []byte{1, 2, 3, 4})

	tests := []struct {
		name     string
		address  uint64
		length   int
		wantData []byte
		wantMask []byte
	}{
		{"exact", 0x100, 4, []byte{1, 2, 3, 4}, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"inside", 0x101, 2, []byte{2, 3}, []byte{0xFF, 0xFF}},
		{"straddles start", 0xFE, 4, []byte{0, 0, 1, 2}, []byte{0, 0, 0xFF, 0xFF}},
		{"straddles end", 0x102, 4, []byte{3, 4, 0, 0}, []byte{0xFF, 0xFF, 0, 0}},
		{"covers", 0xFF, 6, []byte{0, 1, 2, 3, 4, 0}, []byte{0, 0xFF, 0xFF, 0xFF, 0xFF, 0}},
		{"before", 0xF0, 16, make([]byte, 16), make([]byte, 16)},
		{"after", 0x104, 4, make([]byte, 4), make([]byte, 4)},
		{"empty", 0x100, 0, []byte{}, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := img.Read(context.Background(), tt.address, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, snap.Data)
			assert.Equal(t, tt.wantMask, snap.Mask)
		})
	}
}

func TestImage_ReadDoesNotAlias(t *testing.T) {
	img := openImage(t, 0, []byte{9, 9})

	snap, err := img.Read(context.Background(), 0, 2)
	require.NoError(t, err)
	snap.Data[0] = 0

	again, err := img.Read(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, again.Data)
}

func TestImage_TopOfAddressSpace(t *testing.T) {
	img := openImage(t, math.MaxUint64-1, []byte{0xAA, 0xBB})

	snap, err := img.Read(context.Background(), math.MaxUint64-2, 8)
	require.NoError(t, err)
	assert.Len(t, snap.Data, 8)
	assert.Equal(t, []byte{0, 0xAA, 0xBB}, snap.Data[:3])
	assert.Equal(t, 2, snap.ValidCount())
}

func TestImage_Delta(t *testing.T) {
	img := openImage(t, 0x400000, []byte{1, 2, 3})

	d, ok := img.Delta().(ImageDelta)
	require.True(t, ok)
	assert.Equal(t, uint64(0x400000), d.Base)
	assert.Equal(t, 3, d.Size)
	assert.Equal(t, "image.bin", filepath.Base(d.Path))

	snap, err := img.Read(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, d, snap.Delta)
}

func TestImage_Close(t *testing.T) {
	img := openImage(t, 0, []byte{1})
	require.NoError(t, img.Close())
	require.NoError(t, img.Close())
	assert.Zero(t, img.Size())

	_, err := img.Read(context.Background(), 0, 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestOpenImage_Rejects(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenImage(filepath.Join(dir, "absent.bin"), 0)
	require.Error(t, err)

	empty := testutil.WriteFile(t, dir, "empty.bin", nil)
	_, err = OpenImage(empty, 0)
	require.ErrorIs(t, err, types.ErrInvalidInput)

	two := testutil.WriteFile(t, dir, "two.bin", []byte{1, 2})
	_, err = OpenImage(two, math.MaxUint64)
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

var (
	_ Source = Null{}
	_ Source = (*Image)(nil)
)
