package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/stockmcp/internal/models"
)

// FinancialKeywords mark a paragraph as a candidate financial insight.
// Matching is by substring of the lowercased paragraph.
var FinancialKeywords = []string{
	"revenue", "profit", "earnings", "ebitda", "margin", "growth",
	"cash flow", "debt", "equity", "roi", "roe", "eps", "dividend",
	"net income", "gross profit", "operating profit", "guidance",
	"outlook", "performance", "financial", "quarter", "fy",
}

// mineLimits bounds what is lifted from one document.
type mineLimits struct {
	maxParagraphs int
	minLength     int
	maxSnippet    int
	maxTables     int
	maxTableRows  int
}

// splitParagraphs splits page text on blank lines.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n\n")
}

func hasFinancialKeyword(paragraph string) bool {
	lower := strings.ToLower(paragraph)
	for _, kw := range FinancialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// mineSnippets returns the first qualifying paragraphs in page order. A
// paragraph qualifies when it contains a financial keyword and its trimmed
// length exceeds minLength characters.
func mineSnippets(pages []models.Page, limits mineLimits) []models.Snippet {
	var snippets []models.Snippet
	for _, page := range pages {
		for _, para := range splitParagraphs(page.Text) {
			para = strings.TrimSpace(para)
			if utf8.RuneCountInString(para) <= limits.minLength || !hasFinancialKeyword(para) {
				continue
			}
			text, truncated := truncateRunes(para, limits.maxSnippet)
			snippets = append(snippets, models.Snippet{Page: page.Number, Text: text, Truncated: truncated})
			if len(snippets) >= limits.maxParagraphs {
				return snippets
			}
		}
	}
	return snippets
}

// truncateRunes cuts s to at most n runes, appending "..." when cut.
func truncateRunes(s string, n int) (string, bool) {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s, false
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:n]), " ") + "...", true
}

// selectTables keeps the first maxTables tables with at least two rows,
// each cut to maxTableRows rows. Blank cells stay in place as "".
func selectTables(pages []models.Page, find func(models.Page) []models.Table, limits mineLimits) []models.Table {
	var tables []models.Table
	for _, page := range pages {
		for _, t := range find(page) {
			if len(t.Rows) < 2 {
				continue
			}
			rows := t.Rows
			if len(rows) > limits.maxTableRows {
				rows = rows[:limits.maxTableRows]
			}
			copied := make([][]string, len(rows))
			for i, r := range rows {
				copied[i] = append([]string(nil), r...)
			}
			tables = append(tables, models.Table{Page: page.Number, Rows: copied})
			if len(tables) >= limits.maxTables {
				return tables
			}
		}
	}
	return tables
}

// MineSnippets returns up to maxParagraphs keyword paragraphs longer than
// minLength runes, each cut to maxSnippet runes.
func MineSnippets(pages []models.Page, maxParagraphs, minLength, maxSnippet int) []models.Snippet {
	return mineSnippets(pages, mineLimits{maxParagraphs: maxParagraphs, minLength: minLength, maxSnippet: maxSnippet})
}

// Truncate cuts s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	out, _ := truncateRunes(s, n)
	return out
}
