// Package source provides primary memory sources that the view controller
// reads a window from before injected regions are composed over it.
//
// A Source is best-effort: bytes it cannot supply are reported through the
// snapshot mask, never as an error. Errors are reserved for the source itself
// being unusable (closed, cancelled).
package source

import (
	"context"
	"errors"

	"github.com/joshuapare/overlaykit/pkg/types"
)

// ErrClosed is returned by Read on a source that has been closed.
var ErrClosed = errors.New("source: closed")

// Source reads a window of primary memory.
type Source interface {
	// Read returns a fresh snapshot of length bytes starting at address. The
	// caller owns the result. Data and Mask are exactly length bytes long
	// (zero for length <= 0).
	Read(ctx context.Context, address uint64, length int) (*types.Snapshot, error)

	// Delta returns the opaque value attached to snapshots from this source.
	Delta() any
}

// Null is a source with nothing in it: every byte is unknown.
type Null struct{}

// Read returns a zeroed snapshot with every mask byte types.MaskUnknown.
func (Null) Read(ctx context.Context, _ uint64, length int) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return types.NewSnapshot(length), nil
}

// Delta returns nil.
func (Null) Delta() any { return nil }
