// Package store holds caller-injected memory regions keyed by base address.
//
// # Overview
//
// A Store is a sparse container: each region is a contiguous run of bytes at
// a base address, and regions at different bases may overlap one another.
// Overlap is not resolved here; the compose package decides which region wins
// a contested byte.
//
// # Ownership
//
// Insert copies the caller's bytes, so the store never aliases caller memory.
// Get returns a copy. Sequences returned by Overlapping and All yield regions
// that share the store's buffers; those buffers are never mutated in place
// (a re-insert swaps in a new buffer), but callers must treat them as
// read-only.
//
// # Ordering
//
// Iteration is ascending by base address. Overlapping therefore yields the
// lowest-based match first, which is what compose.QueryOverlap reports, and
// compose.Compose applies regions in the same order with last-write-wins.
//
// # Thread Safety
//
// A Store is safe for concurrent use. Reads take a shared lock and mutations
// an exclusive one; sequences capture their matches under the lock before
// yielding, so loop bodies may call back into the store.
package store

import (
	"iter"
	"slices"
	"sync"

	"github.com/joshuapare/overlaykit/pkg/types"
)

// Store is a sparse, base-keyed collection of injected regions.
type Store struct {
	mu      sync.RWMutex
	regions map[uint64][]byte
	bases   []uint64 // sorted ascending; mirrors the keys of regions
	maxLen  int      // longest stored region, bounds the overlap scan
}

// New creates an empty Store.
func New() *Store {
	return &Store{regions: make(map[uint64][]byte)}
}

// Insert stores a copy of data at address, replacing any region with the
// identical base. Empty data, or data that would run past the top of the
// address space, is rejected with types.ErrInvalidInput.
func (s *Store) Insert(address uint64, data []byte) error {
	if len(data) == 0 {
		return types.Errorf(types.ErrKindInvalidInput, "store: empty region at %#x", address)
	}
	if _, ok := (types.Region{Base: address, Data: data}).Last(); !ok {
		return types.Errorf(types.ErrKindInvalidInput,
			"store: region at %#x of %d bytes runs past the end of the address space", address, len(data))
	}
	owned := slices.Clone(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.regions[address]
	if !exists {
		i, _ := slices.BinarySearch(s.bases, address)
		s.bases = slices.Insert(s.bases, i, address)
	}
	s.regions[address] = owned

	switch {
	case len(owned) > s.maxLen:
		s.maxLen = len(owned)
	case exists && len(old) == s.maxLen && len(owned) < len(old):
		s.recomputeMaxLen()
	}
	return nil
}

// Remove deletes the region whose base is exactly address. It reports
// whether a region was removed; removing an absent address is a no-op.
func (s *Store) Remove(address uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.regions[address]
	if !ok {
		return false
	}
	delete(s.regions, address)
	if i, found := slices.BinarySearch(s.bases, address); found {
		s.bases = slices.Delete(s.bases, i, i+1)
	}
	if len(old) == s.maxLen {
		s.recomputeMaxLen()
	}
	return true
}

// Clear removes every region.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.regions)
	s.bases = s.bases[:0]
	s.maxLen = 0
}

// Len returns the number of stored regions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Get returns a copy of the region based exactly at address.
func (s *Store) Get(address uint64) (types.Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.regions[address]
	if !ok {
		return types.Region{}, false
	}
	return types.Region{Base: address, Data: slices.Clone(data)}, true
}

// All yields every region in ascending base order.
func (s *Store) All() iter.Seq[types.Region] {
	return func(yield func(types.Region) bool) {
		s.mu.RLock()
		all := make([]types.Region, 0, len(s.bases))
		for _, base := range s.bases {
			all = append(all, types.Region{Base: base, Data: s.regions[base]})
		}
		s.mu.RUnlock()

		for _, r := range all {
			if !yield(r) {
				return
			}
		}
	}
}

// Overlapping yields every region whose byte range intersects w, in
// ascending base order. The sequence is evaluated when ranged over.
func (s *Store) Overlapping(w types.Window) iter.Seq[types.Region] {
	return func(yield func(types.Region) bool) {
		for _, r := range s.overlapping(w) {
			if !yield(r) {
				return
			}
		}
	}
}

func (s *Store) overlapping(w types.Window) []types.Region {
	wLast, ok := w.Last()
	if !ok {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.bases) == 0 {
		return nil
	}

	// A region can only reach w.Address if it starts no more than maxLen-1
	// bytes before it.
	low := uint64(0)
	if reach := uint64(s.maxLen - 1); w.Address > reach {
		low = w.Address - reach
	}
	i, _ := slices.BinarySearch(s.bases, low)

	var out []types.Region
	for ; i < len(s.bases); i++ {
		base := s.bases[i]
		if base > wLast {
			break
		}
		data := s.regions[base]
		r := types.Region{Base: base, Data: data}
		last, _ := r.Last()
		if last < w.Address {
			continue
		}
		out = append(out, r)
	}
	return out
}

// recomputeMaxLen rescans the regions; callers hold the write lock.
func (s *Store) recomputeMaxLen() {
	s.maxLen = 0
	for _, data := range s.regions {
		s.maxLen = max(s.maxLen, len(data))
	}
}
