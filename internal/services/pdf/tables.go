package pdf

import (
	"regexp"
	"strings"

	"github.com/ternarybob/stockmcp/internal/models"
)

var (
	columnGapRe    = regexp.MustCompile(`\s{2,}`)
	separatorRowRe = regexp.MustCompile(`^:?-{3,}:?$`)
)

// DetectTables finds tabular runs in extracted page text. A row is a line
// that splits into at least two cells on '|', tab, or a gap of two or more
// spaces; two or more consecutive rows form a table. Blank cells stay in
// position and rows are padded on the right to the widest row.
func DetectTables(page models.Page) []models.Table {
	var tables []models.Table
	var current [][]string

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, models.Table{Page: page.Number, Rows: padRows(current)})
		}
		current = nil
	}

	for _, line := range strings.Split(page.Text, "\n") {
		cells := splitCells(line)
		if len(cells) < 2 {
			flush()
			continue
		}
		if isSeparatorRow(cells) {
			continue
		}
		current = append(current, cells)
	}
	flush()

	return tables
}

// splitCells keeps blank cells in place, including a blank first cell: a
// leading '|' pair, a leading tab, or a leading gap of two or more spaces.
func splitCells(line string) []string {
	line = strings.TrimRight(line, " \r")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	var parts []string
	switch {
	case strings.Contains(line, "|"):
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "|")
		line = strings.TrimSuffix(line, "|")
		parts = strings.Split(line, "|")
	case strings.Contains(line, "\t"):
		parts = strings.Split(strings.TrimRight(line, "\t"), "\t")
	default:
		body := strings.TrimLeft(line, " ")
		parts = columnGapRe.Split(body, -1)
		// An indented line is a row with an empty first cell only when the
		// rest is itself a row; otherwise it is indented prose.
		if len(line)-len(body) >= 2 && len(parts) >= 2 {
			parts = append([]string{""}, parts...)
		}
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c != "" && !separatorRowRe.MatchString(c) {
			return false
		}
	}
	return true
}

func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		padded := make([]string, width)
		copy(padded, r)
		out[i] = padded
	}
	return out
}
