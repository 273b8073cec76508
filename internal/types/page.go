package types

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageID is the canonical identifier of a wiki page. Two PageIDs are equal
// iff they name the same page: spaces are folded to underscores, runs of
// whitespace collapsed, and percent-encoding resolved.
type PageID string

// NormalizeTitle canonicalizes a raw title or /wiki/ href into a PageID.
func NormalizeTitle(raw string) (PageID, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "/wiki/")
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	// Fold whitespace and underscores into single underscores so
	// "Moon Lord", "Moon_Lord" and "Moon  Lord" compare equal.
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return "", ErrInvalidTitle
	}
	id := PageID(strings.Join(fields, "_"))
	if strings.ContainsAny(string(id), "#?") {
		return "", fmt.Errorf("%w: %q contains a fragment or query", ErrInvalidTitle, raw)
	}
	return id, nil
}

// Title returns the human-readable form of the identifier.
func (id PageID) Title() string {
	return strings.ReplaceAll(string(id), "_", " ")
}

// Page is a fetched wiki page.
type Page struct {
	ID         PageID
	Body       []byte
	StatusCode int
	FinalURL   string
	FetchedAt  time.Time

	doc *goquery.Document
}

// Document returns a parsed goquery document, lazily initializing it.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, &ParseError{ID: p.ID, Err: err}
	}
	p.doc = doc
	return doc, nil
}
