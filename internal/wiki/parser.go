// Package wiki extracts structured content from MediaWiki-style pages.
package wiki

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"wikiharvest/internal/types"
)

// Parser extracts summaries, article text, and internal links from pages.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("component", "wiki_parser"),
	}
}

// contentRoot locates the article body. MediaWiki and wiki.gg render it
// inside div.mw-parser-output; #mw-content-text is the fallback for older
// skins.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	sel := doc.Find("div.mw-parser-output").First()
	if sel.Length() == 0 {
		sel = doc.Find("#mw-content-text").First()
	}
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

// Summary returns the first non-empty paragraph of the article with all
// markup stripped. Only direct children of the content root are considered,
// so paragraphs nested in infoboxes and tables are skipped.
func (p *Parser) Summary(page *types.Page) (string, error) {
	doc, err := page.Document()
	if err != nil {
		return "", err
	}
	root := contentRoot(doc)
	if root == nil {
		return "", &types.ParseError{ID: page.ID, Err: types.ErrNoContent}
	}

	var summary string
	root.ChildrenFiltered("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 1 {
			summary = text
			return false
		}
		return true
	})
	if summary == "" {
		return "", &types.ParseError{ID: page.ID, Err: types.ErrNoContent}
	}
	return summary, nil
}

// FullText returns the article text without navigation chrome. Text nodes
// are joined with single spaces so words never merge across tag boundaries.
func (p *Parser) FullText(page *types.Page) (string, error) {
	doc, err := page.Document()
	if err != nil {
		return "", err
	}
	root := contentRoot(doc)
	if root == nil {
		return "", &types.ParseError{ID: page.ID, Err: types.ErrNoContent}
	}

	var parts []string
	for _, node := range root.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " "), nil
}

// collectText gathers trimmed text nodes below n, skipping script and style
// subtrees.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode && (strings.EqualFold(n.Data, "script") || strings.EqualFold(n.Data, "style")) {
		return
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// InternalLinks returns the ordered outbound wiki-internal links of the
// article. Namespace links (File:, Talk:, Special:, ...) and external URLs
// are excluded. The result may contain duplicates and self-references;
// callers defend against both.
func (p *Parser) InternalLinks(page *types.Page) ([]types.PageID, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}
	root := contentRoot(doc)
	if root == nil {
		return nil, &types.ParseError{ID: page.ID, Err: types.ErrNoContent}
	}

	var links []types.PageID
	root.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "/wiki/") || strings.Contains(href, ":") {
			return
		}
		id, err := types.NormalizeTitle(href)
		if err != nil {
			p.logger.Debug("skipping unparseable link", "href", href, "error", err)
			return
		}
		links = append(links, id)
	})
	return links, nil
}
