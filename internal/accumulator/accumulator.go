// Package accumulator persists cumulative word counts across crawl runs.
package accumulator

import "context"

// Store is a durable word -> cumulative count record. The record is read
// once at crawl start and replaced whole at crawl end; concurrent writers
// against the same record are unsupported (single-writer discipline).
type Store interface {
	// Load returns the persisted counts, or an empty map when no record
	// exists yet. A present-but-unreadable record is an error.
	Load(ctx context.Context) (map[string]int, error)

	// Save atomically replaces the persisted record with counts.
	Save(ctx context.Context, counts map[string]int) error

	// Name returns the backend identifier.
	Name() string

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Merge adds every count in page to dst, creating absent entries. The
// operation is additive and commutative: merging pages in any order yields
// the same mapping. dst is mutated and returned for chaining.
func Merge(dst, page map[string]int) map[string]int {
	for word, count := range page {
		dst[word] += count
	}
	return dst
}
