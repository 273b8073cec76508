package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotFound      = errors.New("page does not exist")
	ErrNoContent     = errors.New("article content not found")
	ErrInvalidTitle  = errors.New("invalid page title")
	ErrRobotsBlocked = errors.New("blocked by robots.txt")
)

// FetchError wraps errors that occur while retrieving a page.
type FetchError struct {
	ID         PageID
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %q (status %d): %v", e.ID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %q: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ParseError wraps errors that occur while extracting content from a page.
type ParseError struct {
	ID  PageID
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %q: %v", e.ID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors from the accumulator backend.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
