package wiki

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"

	"wikiharvest/internal/types"
)

// Table returns the cell grid of the 1-based number-th <table> in the page.
// Requesting a table beyond the last one is an error naming how many exist.
func (p *Parser) Table(page *types.Page, number int) ([][]string, error) {
	if number < 1 {
		return nil, &types.ParseError{
			ID:  page.ID,
			Err: fmt.Errorf("table number must be >= 1, got %d", number),
		}
	}

	doc, err := htmlquery.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, &types.ParseError{ID: page.ID, Err: err}
	}

	tables := htmlquery.Find(doc, "//table")
	if len(tables) == 0 {
		return nil, &types.ParseError{
			ID:  page.ID,
			Err: fmt.Errorf("no tables found on page"),
		}
	}
	if number > len(tables) {
		return nil, &types.ParseError{
			ID:  page.ID,
			Err: fmt.Errorf("table %d not found (page has %d tables)", number, len(tables)),
		}
	}

	table := tables[number-1]
	var rows [][]string
	for _, tr := range htmlquery.Find(table, ".//tr") {
		var cells []string
		for _, cell := range htmlquery.Find(tr, "./th|./td") {
			cells = append(cells, collapseSpace(htmlquery.InnerText(cell)))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return nil, &types.ParseError{
			ID:  page.ID,
			Err: fmt.Errorf("table %d has no rows", number),
		}
	}
	return rows, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WriteTableCSV writes a cell grid as CSV. When firstRowIsHeader is false
// a positional header row (0, 1, 2, ...) is generated so every output file
// starts with column names. Ragged rows are padded to the widest row.
func WriteTableCSV(w io.Writer, rows [][]string, firstRowIsHeader bool) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to write")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	cw := csv.NewWriter(w)
	if !firstRowIsHeader {
		header := make([]string, width)
		for i := range header {
			header[i] = strconv.Itoa(i)
		}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, row := range rows {
		padded := row
		if len(row) < width {
			padded = append(append([]string(nil), row...), make([]string, width-len(row))...)
		}
		if err := cw.Write(padded); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
