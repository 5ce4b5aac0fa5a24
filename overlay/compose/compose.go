// Package compose layers stored regions over a base snapshot.
//
// Two entry points with deliberately different contracts:
//
//   - Compose merges every overlapping region into the snapshot. Regions are
//     applied in ascending base order and the last one applied wins a
//     contested byte, so where injected regions overlap each other the one
//     with the highest base address is visible.
//   - QueryOverlap returns only the first overlapping region (lowest base)
//     clipped to the window. It does not merge and does not apply
//     last-write-wins.
//
// Consumers may depend on either behavior; the two are not unified.
package compose

import (
	"slices"

	"github.com/joshuapare/overlaykit/internal/buf"
	"github.com/joshuapare/overlaykit/overlay/store"
	"github.com/joshuapare/overlaykit/pkg/types"
)

// Stats describes what one Compose call changed.
type Stats struct {
	Regions int // regions that contributed at least one byte
	Bytes   int // destination bytes written (a byte hit twice counts twice)
}

// Compose overlays every region of s that intersects w onto snap, in place,
// and returns snap. Copied bytes are marked types.MaskValid. Writes are
// clamped to the snapshot's buffers; callers are expected to size Data and
// Mask to w.Length.
func Compose(w types.Window, snap *types.Snapshot, s *store.Store) *types.Snapshot {
	ComposeStats(w, snap, s)
	return snap
}

// ComposeStats is Compose, reporting how many regions and bytes were applied.
func ComposeStats(w types.Window, snap *types.Snapshot, s *store.Store) Stats {
	var st Stats
	if snap == nil || s == nil || s.Len() == 0 {
		return st
	}
	wLast, ok := w.Last()
	if !ok {
		return st
	}
	win := types.Range{Start: w.Address, Last: wLast}

	for r := range s.Overlapping(w) {
		if n := apply(win, r, snap); n > 0 {
			st.Regions++
			st.Bytes += n
		}
	}
	return st
}

// apply copies the part of r inside win into snap and returns the number of
// bytes written.
func apply(win types.Range, r types.Region, snap *types.Snapshot) int {
	rLast, ok := r.Last()
	if !ok {
		return 0
	}
	overlap, ok := types.Intersect(win, types.Range{Start: r.Base, Last: rLast})
	if !ok {
		return 0
	}

	destOff, ok := buf.Offset(win.Start, overlap.Start)
	if !ok {
		return 0
	}
	srcOff, ok := buf.Offset(r.Base, overlap.Start)
	if !ok {
		return 0
	}
	// overlap lies inside r, so its size fits in int.
	n := int(overlap.Last-overlap.Start) + 1
	n = buf.Clamp(destOff, n, len(snap.Data))
	if n == 0 {
		return 0
	}

	copy(snap.Data[destOff:destOff+n], r.Data[srcOff:srcOff+n])
	if m := buf.Clamp(destOff, n, len(snap.Mask)); m > 0 {
		buf.Fill(snap.Mask[destOff:destOff+m], types.MaskValid)
	}
	return n
}

// QueryOverlap returns the first region of s, in store order, that overlaps
// w, together with a copy of the part of that region inside w. It does not
// merge multiple regions.
func QueryOverlap(w types.Window, s *store.Store) (uint64, []byte, bool) {
	if s == nil {
		return 0, nil, false
	}
	wLast, ok := w.Last()
	if !ok {
		return 0, nil, false
	}
	win := types.Range{Start: w.Address, Last: wLast}

	for r := range s.Overlapping(w) {
		rLast, ok := r.Last()
		if !ok {
			continue
		}
		overlap, ok := types.Intersect(win, types.Range{Start: r.Base, Last: rLast})
		if !ok {
			continue
		}
		srcOff, _ := buf.Offset(r.Base, overlap.Start)
		n := int(overlap.Last-overlap.Start) + 1
		return r.Base, slices.Clone(r.Data[srcOff : srcOff+n]), true
	}
	return 0, nil, false
}
