// Package crawler implements the breadth-first wiki traversal that feeds
// per-page word counts into the durable accumulator.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wikiharvest/internal/accumulator"
	"wikiharvest/internal/observability"
	"wikiharvest/internal/types"
)

// Fetcher retrieves raw pages.
type Fetcher interface {
	Fetch(ctx context.Context, id types.PageID) (*types.Page, error)
}

// ContentParser extracts text and outbound links from a fetched page.
type ContentParser interface {
	FullText(page *types.Page) (string, error)
	InternalLinks(page *types.Page) ([]types.PageID, error)
}

// WordCounter maps page text to per-page word frequencies.
type WordCounter interface {
	Count(text string) map[string]int
}

// Failure records one non-fatal per-page error.
type Failure struct {
	ID  types.PageID
	Err error
}

// Report summarizes one crawl invocation. Counts holds the updated
// accumulator mapping even when the final save fails, so callers can retry
// persistence without re-crawling.
type Report struct {
	Counts   map[string]int
	Visited  int
	Fetched  int
	Failures []Failure
	Elapsed  time.Duration
}

// Deps are the collaborators a Crawler composes. Fetcher, Parser, Counter,
// and Store are required; Delayer defaults to no pause, Logger to
// slog.Default(). Checkpoint and Metrics are optional.
type Deps struct {
	Fetcher    Fetcher
	Parser     ContentParser
	Counter    WordCounter
	Store      accumulator.Store
	Delayer    Delayer
	Checkpoint *Checkpoint
	Metrics    *observability.Metrics
	Logger     *slog.Logger
}

// Crawler walks the wiki link graph breadth-first, visiting each page at
// most once per invocation and merging its word counts into the
// accumulator. Traversal is single-threaded; the politeness delay between
// fetches is the only suspension point.
type Crawler struct {
	fetcher    Fetcher
	parser     ContentParser
	counter    WordCounter
	store      accumulator.Store
	delayer    Delayer
	checkpoint *Checkpoint
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a Crawler from its dependencies.
func New(deps Deps) (*Crawler, error) {
	if deps.Fetcher == nil || deps.Parser == nil || deps.Counter == nil || deps.Store == nil {
		return nil, errors.New("crawler: fetcher, parser, counter, and store are required")
	}
	if deps.Delayer == nil {
		deps.Delayer = NewSleepDelayer(0)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Crawler{
		fetcher:    deps.Fetcher,
		parser:     deps.Parser,
		counter:    deps.Counter,
		store:      deps.Store,
		delayer:    deps.Delayer,
		checkpoint: deps.Checkpoint,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("component", "crawler"),
	}, nil
}

// Crawl traverses the link graph from start to maxDepth, merging every
// visited page's word counts into the accumulator. maxDepth 0 processes
// only the start page. The accumulator is loaded once before traversal and
// saved once after; the updated mapping is returned in the Report.
func (c *Crawler) Crawl(ctx context.Context, start types.PageID, maxDepth int) (*Report, error) {
	if start == "" {
		return nil, types.ErrInvalidTitle
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("max depth must be >= 0, got %d", maxDepth)
	}

	counts, err := c.store.Load(ctx)
	if err != nil {
		// No consistent starting state: abort before any fetch.
		return nil, err
	}

	visited := NewVisitedSet()
	queue := &fifoQueue{}
	if c.checkpoint != nil {
		if err := c.checkpoint.Load(visited, queue); err != nil {
			return nil, fmt.Errorf("restore checkpoint: %w", err)
		}
		if visited.Len() > 0 || queue.Len() > 0 {
			c.logger.Info("resuming from checkpoint",
				"visited", visited.Len(), "pending", queue.Len())
		}
	}
	queue.Push(Entry{ID: start, Depth: 0})

	report := &Report{Counts: counts}
	began := time.Now()
	var ctxErr error
	firstFetch := true

	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		c.metrics.SetQueueDepth(queue.Len())

		entry, _ := queue.Pop()
		// Dedup at dequeue time: a page queued at several depths is
		// processed only at the shallowest, and skipping costs no delay.
		if visited.Contains(entry.ID) {
			continue
		}
		visited.Add(entry.ID)

		if !firstFetch {
			if err := c.delayer.Delay(ctx); err != nil {
				ctxErr = err
				break
			}
			c.metrics.IncPoliteDelay()
		}
		firstFetch = false

		fetchStart := time.Now()
		page, err := c.fetcher.Fetch(ctx, entry.ID)
		c.metrics.ObserveFetchDuration(time.Since(fetchStart))
		if err != nil {
			c.recordFailure(report, entry.ID, err)
			continue
		}
		report.Fetched++
		c.metrics.IncPageFetched()

		text, err := c.parser.FullText(page)
		if err != nil {
			c.recordFailure(report, entry.ID, err)
			continue
		}
		pageCounts := c.counter.Count(text)
		accumulator.Merge(counts, pageCounts)

		merged := 0
		for _, n := range pageCounts {
			merged += n
		}
		c.metrics.AddWordsMerged(merged)
		c.logger.Debug("page processed",
			"page", string(entry.ID), "depth", entry.Depth, "words", merged)

		if entry.Depth < maxDepth {
			links, err := c.parser.InternalLinks(page)
			if err != nil {
				// Counts are already merged; only link discovery is lost.
				c.recordFailure(report, entry.ID, err)
				continue
			}
			for _, link := range links {
				if !visited.Contains(link) {
					queue.Push(Entry{ID: link, Depth: entry.Depth + 1})
				}
			}
		}
	}

	report.Visited = visited.Len()
	report.Elapsed = time.Since(began)
	c.metrics.SetQueueDepth(queue.Len())

	if c.checkpoint != nil {
		if err := c.checkpoint.Save(visited, queue); err != nil {
			c.logger.Error("checkpoint save failed", "error", err)
		}
	}

	if err := c.store.Save(ctx, counts); err != nil {
		// Traversal results stay in the report so the caller may retry.
		return report, err
	}

	c.logger.Info("crawl complete",
		"start", string(start),
		"visited", report.Visited,
		"fetched", report.Fetched,
		"failures", len(report.Failures),
		"elapsed", report.Elapsed,
	)
	return report, ctxErr
}

func (c *Crawler) recordFailure(report *Report, id types.PageID, err error) {
	report.Failures = append(report.Failures, Failure{ID: id, Err: err})
	c.metrics.IncFetchError(failureCategory(err))
	c.logger.Warn("page skipped", "page", string(id), "error", err)
}

// failureCategory labels a per-page error for metrics.
func failureCategory(err error) string {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrRobotsBlocked):
		return "robots"
	case errors.Is(err, types.ErrNoContent):
		return "no_content"
	}
	var parseErr *types.ParseError
	if errors.As(err, &parseErr) {
		return "parse"
	}
	var fetchErr *types.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.StatusCode >= 500 {
			return "server_error"
		}
		return "fetch"
	}
	return "other"
}
