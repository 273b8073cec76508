package crawler

import "wikiharvest/internal/types"

// Entry is a queued page with its breadth-first distance from the start.
type Entry struct {
	ID    types.PageID `json:"id"`
	Depth int          `json:"depth"`
}

// fifoQueue is a first-in-first-out queue of crawl entries. The head index
// avoids reslicing on every pop; the backing array is compacted once half
// of it is dead.
type fifoQueue struct {
	entries []Entry
	head    int
}

func (q *fifoQueue) Push(e Entry) {
	q.entries = append(q.entries, e)
}

func (q *fifoQueue) Pop() (Entry, bool) {
	if q.head >= len(q.entries) {
		return Entry{}, false
	}
	e := q.entries[q.head]
	q.head++
	if q.head > len(q.entries)/2 && q.head > 64 {
		q.entries = append([]Entry(nil), q.entries[q.head:]...)
		q.head = 0
	}
	return e, true
}

func (q *fifoQueue) Len() int {
	return len(q.entries) - q.head
}

// Pending returns the entries not yet popped, oldest first.
func (q *fifoQueue) Pending() []Entry {
	pending := make([]Entry, q.Len())
	copy(pending, q.entries[q.head:])
	return pending
}
