package store

import (
	"math"

	"github.com/joshuapare/overlaykit/pkg/types"
)

// Coverage returns the union of all stored byte ranges as sorted,
// non-overlapping, non-adjacent inclusive ranges.
//
//	Regions: [0x100+4, 0x102+4, 0x106+2, 0x200+1] → [0x100-0x107, 0x200-0x200]
func (s *Store) Coverage() []types.Range {
	var (
		merged []types.Range
		cur    types.Range
		have   bool
	)
	for r := range s.All() {
		last, _ := r.Last()
		next := types.Range{Start: r.Base, Last: last}
		if !have {
			cur, have = next, true
			continue
		}
		// Merge when next overlaps or touches cur.
		if cur.Last == math.MaxUint64 || next.Start <= cur.Last+1 {
			cur.Last = max(cur.Last, next.Last)
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	if have {
		merged = append(merged, cur)
	}
	return merged
}

// CoveredBytes returns the number of distinct addresses covered by at least
// one region, saturating at math.MaxUint64.
func (s *Store) CoveredBytes() uint64 {
	var total uint64
	for _, r := range s.Coverage() {
		size := r.Size()
		if total > math.MaxUint64-size {
			return math.MaxUint64
		}
		total += size
	}
	return total
}
