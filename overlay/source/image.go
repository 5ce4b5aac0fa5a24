package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/joshuapare/overlaykit/internal/buf"
	"github.com/joshuapare/overlaykit/internal/mmfile"
	"github.com/joshuapare/overlaykit/pkg/types"
)

// Image is a flat binary file mapped at a base address, such as a raw dump of
// one mapping. Bytes inside the image read as valid; everything else is
// unknown.
type Image struct {
	path string
	base uint64

	mu      sync.RWMutex
	data    []byte
	release func() error
}

// ImageDelta is the Delta value of snapshots read from an Image.
type ImageDelta struct {
	Path string
	Base uint64
	Size int
}

// OpenImage maps the file at path so that its first byte sits at base. The
// image must be non-empty and must fit below the top of the address space.
func OpenImage(path string, base uint64) (*Image, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("source: open image: %w", err)
	}
	if len(data) == 0 {
		_ = release()
		return nil, types.Errorf(types.ErrKindInvalidInput, "source: image %s is empty", path)
	}
	if _, ok := (types.Region{Base: base, Data: data}).Last(); !ok {
		_ = release()
		return nil, types.Errorf(types.ErrKindInvalidInput,
			"source: image %s at %#x runs past the end of the address space", path, base)
	}
	return &Image{path: path, base: base, data: data, release: release}, nil
}

// Base returns the address of the image's first byte.
func (img *Image) Base() uint64 { return img.base }

// Size returns the image length in bytes, or 0 once closed.
func (img *Image) Size() int {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return len(img.data)
}

// Read copies the part of the image inside [address, address+length) into
// a new snapshot and marks those bytes valid.
func (img *Image) Read(ctx context.Context, address uint64, length int) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img.mu.RLock()
	defer img.mu.RUnlock()
	if img.data == nil {
		return nil, ErrClosed
	}

	snap := types.NewSnapshot(length)
	snap.Delta = img.delta()

	wLast, ok := types.Window{Address: address, Length: length}.Last()
	if !ok {
		return snap, nil
	}
	last, _ := (types.Region{Base: img.base, Data: img.data}).Last()
	overlap, ok := types.Intersect(
		types.Range{Start: address, Last: wLast},
		types.Range{Start: img.base, Last: last},
	)
	if !ok {
		return snap, nil
	}

	dst, _ := buf.Offset(address, overlap.Start)
	src, _ := buf.Offset(img.base, overlap.Start)
	n := int(overlap.Last-overlap.Start) + 1
	copy(snap.Data[dst:dst+n], img.data[src:src+n])
	buf.Fill(snap.Mask[dst:dst+n], types.MaskValid)
	return snap, nil
}

// Delta returns an ImageDelta describing the image.
func (img *Image) Delta() any {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.delta()
}

func (img *Image) delta() ImageDelta {
	return ImageDelta{Path: img.path, Base: img.base, Size: len(img.data)}
}

// Close releases the mapping. Reads after Close fail with ErrClosed. Close is
// idempotent.
func (img *Image) Close() error {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.data == nil {
		return nil
	}
	img.data = nil
	return img.release()
}
