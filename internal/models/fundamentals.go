package models

// Snippet is a qualifying paragraph lifted from a document page.
type Snippet struct {
	Page      int    `json:"page"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated,omitempty"`
}

// DocumentSection holds what was mined from one ranked document. Err is set
// when the document could not be read; the rest of the report is unaffected.
type DocumentSection struct {
	Match    DocumentMatch `json:"match"`
	Snippets []Snippet     `json:"snippets,omitempty"`
	Tables   []Table       `json:"tables,omitempty"`
	Err      string        `json:"error,omitempty"`
}

// FundamentalsReport merges the technical snapshot with document excerpts.
// Technical is nil when the store has no metrics for the symbol.
type FundamentalsReport struct {
	Symbol    string            `json:"symbol"`
	Pattern   string            `json:"pattern,omitempty"`
	Technical *MetricRecord     `json:"technical,omitempty"`
	Matches   []DocumentMatch   `json:"matches"`
	Documents []DocumentSection `json:"documents"`
	Notices   []Notice          `json:"notices,omitempty"`
}

// HasNotice reports whether a notice of the given kind was raised.
func (r *FundamentalsReport) HasNotice(kind NoticeKind) bool {
	for _, n := range r.Notices {
		if n.Kind == kind {
			return true
		}
	}
	return false
}
