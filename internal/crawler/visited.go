package crawler

import (
	"sort"

	"wikiharvest/internal/types"
)

// VisitedSet tracks which pages have been processed. Identifiers are added
// at dequeue time, never at enqueue time, and are never removed during a
// crawl. The crawler owns the set exclusively for one invocation, so no
// locking is needed.
type VisitedSet struct {
	seen map[types.PageID]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[types.PageID]struct{})}
}

// Contains reports whether id has been processed.
func (v *VisitedSet) Contains(id types.PageID) bool {
	_, ok := v.seen[id]
	return ok
}

// Add marks id as processed. Adding an existing id is a no-op.
func (v *VisitedSet) Add(id types.PageID) {
	v.seen[id] = struct{}{}
}

// Len returns the number of distinct processed identifiers.
func (v *VisitedSet) Len() int {
	return len(v.seen)
}

// Export returns all identifiers in sorted order for checkpointing.
func (v *VisitedSet) Export() []types.PageID {
	ids := make([]types.PageID, 0, len(v.seen))
	for id := range v.seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Import loads identifiers from a checkpoint.
func (v *VisitedSet) Import(ids []types.PageID) {
	for _, id := range ids {
		v.seen[id] = struct{}{}
	}
}
