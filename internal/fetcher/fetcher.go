// Package fetcher retrieves raw wiki pages over HTTP.
package fetcher

import (
	"context"

	"wikiharvest/internal/types"
)

// Fetcher is the interface for page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the page named by id.
	Fetch(ctx context.Context, id types.PageID) (*types.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
