// Package wordcount turns article text into per-page word frequencies.
package wordcount

import (
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"
)

const edgePunctuation = ".,!?;:()[]\"'"

// Counter produces word -> occurrence mappings for a single page.
// The zero value counts every word verbatim; options narrow the output.
type Counter struct {
	stop     map[string]struct{}
	stemming bool
}

// Option configures a Counter.
type Option func(*Counter)

// WithStopwords filters the given words out of every count.
// Pass DefaultStopwords() for a common English set.
func WithStopwords(stop map[string]struct{}) Option {
	return func(c *Counter) { c.stop = stop }
}

// WithStemming reduces words to their Snowball stem before counting.
func WithStemming() Option {
	return func(c *Counter) { c.stemming = true }
}

// NewCounter builds a Counter.
func NewCounter(opts ...Option) *Counter {
	c := &Counter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Count maps each normalized word in text to its occurrence count.
// Words are lowercased and stripped of edge punctuation only, so
// contractions ("don't") and hyphenations ("mid-air") survive intact.
func (c *Counter) Count(text string) map[string]int {
	counts := make(map[string]int)
	for _, raw := range strings.Fields(text) {
		word := strings.Trim(raw, edgePunctuation)
		word = strings.ToLower(word)
		if word == "" {
			continue
		}
		if c.stop != nil {
			if _, skip := c.stop[word]; skip {
				continue
			}
		}
		if c.stemming {
			if s := english.Stem(word, true); s != "" {
				word = s
			}
		}
		counts[word]++
	}
	return counts
}

// Entry is a single word with its cumulative count.
type Entry struct {
	Word  string
	Count int
}

// TopN returns the n highest-count entries, ties broken by word ascending
// so the output is deterministic. n <= 0 returns all entries sorted.
func TopN(counts map[string]int, n int) []Entry {
	entries := make([]Entry, 0, len(counts))
	for w, c := range counts {
		entries = append(entries, Entry{Word: w, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
