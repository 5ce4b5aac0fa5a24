package manifest

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/overlaykit/overlay/store"
)

func TestSave_RoundTrip(t *testing.T) {
	src := store.New()
	require.NoError(t, src.Insert(0x401000, []byte("text section")))
	require.NoError(t, src.Insert(0x7ffd0000, make([]byte, 4096)))
	require.NoError(t, src.Insert(0, []byte{0}))
	require.NoError(t, src.Insert(math.MaxUint64, []byte{0xFF}))

	dir := filepath.Join(t.TempDir(), "dump")
	n, err := Save(context.Background(), dir, src, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	dst := store.New()
	res, err := Load(context.Background(), dir, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Successful)
	assert.Equal(t, 4, res.Total)

	var want, got []uint64
	for r := range src.All() {
		want = append(want, r.Base)
		other, ok := dst.Get(r.Base)
		require.True(t, ok)
		assert.Equal(t, r.Data, other.Data)
	}
	for r := range dst.All() {
		got = append(got, r.Base)
	}
	assert.Equal(t, want, got)
}

func TestSave_ManifestShape(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Insert(0x1000, []byte{1}))

	dir := t.TempDir()
	_, err := Save(context.Background(), dir, s, nil)
	require.NoError(t, err)

	doc, err := os.ReadFile(filepath.Join(dir, "segments.json"))
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(doc, &got))
	assert.Equal(t, []map[string]string{
		{"start": "0x1000", "content_file": PayloadName(0x1000)},
	}, got)
	assert.FileExists(t, filepath.Join(dir, "seg_0000000000001000.bin"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temporary file left behind")
	}
}

func TestSave_EmptyStore(t *testing.T) {
	dir := t.TempDir()
	n, err := Save(context.Background(), dir, store.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	res, err := Load(context.Background(), dir, store.New(), nil)
	require.NoError(t, err)
	assert.True(t, res.Failed())
}

func TestSave_Cancelled(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Insert(0x10, []byte{1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Save(ctx, t.TempDir(), s, nil)
	require.ErrorIs(t, err, context.Canceled)
}
