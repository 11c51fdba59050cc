// -----------------------------------------------------------------------
// Document tools - list the corpus and analyse one document
// -----------------------------------------------------------------------

package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
	"github.com/ternarybob/stockmcp/internal/services/analysis"
)

// AnalysisType selects what Analyze extracts from a document.
type AnalysisType string

const (
	AnalysisSummary             AnalysisType = "summary"
	AnalysisFinancialHighlights AnalysisType = "financial_highlights"
	AnalysisFullText            AnalysisType = "full_text"
	AnalysisKeyMetrics          AnalysisType = "key_metrics"
	AnalysisStructured          AnalysisType = "structured"
)

// OutputFormat only changes the structured preview.
type OutputFormat string

const (
	OutputStructured OutputFormat = "structured"
	OutputText       OutputFormat = "text"
	OutputJSON       OutputFormat = "json"
)

const (
	summaryPages       = 3
	summaryChars       = 500
	highlightMinLength = 50
	highlightChars     = 300
	maxHighlights      = 50
	tableRows          = 5
	keyNumbersPerPage  = 10
	previewChars       = 1000
)

var keyNumberPattern = regexp.MustCompile(`(?i)\d[\d,]*(?:\.\d+)?%?(?:\s*(?:crore|cr|million|billion|lakh)\b)?`)

// Service renders the list_documents and analyze_document tools.
type Service struct {
	corpus    interfaces.DocumentCorpus
	extractor interfaces.PDFExtractor
	dir       string
	logger    arbor.ILogger
}

func NewService(corpus interfaces.DocumentCorpus, extractor interfaces.PDFExtractor, config *common.DocumentConfig, logger arbor.ILogger) *Service {
	return &Service{
		corpus:    corpus,
		extractor: extractor,
		dir:       config.Dir,
		logger:    logger,
	}
}

// ParseAnalysisType resolves the analysis type; empty means summary.
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch t := AnalysisType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return AnalysisSummary, nil
	case AnalysisSummary, AnalysisFinancialHighlights, AnalysisFullText, AnalysisKeyMetrics, AnalysisStructured:
		return t, nil
	default:
		return "", common.NewValidationError("analysis_type", "analysis_type must be one of summary, financial_highlights, full_text, key_metrics, structured; got "+s)
	}
}

// ParseOutputFormat resolves the output format; empty means structured.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputStructured, nil
	case OutputStructured, OutputText, OutputJSON:
		return f, nil
	default:
		return "", common.NewValidationError("output_format", "output_format must be one of structured, text, json; got "+s)
	}
}

// List describes every document in the corpus.
func (s *Service) List(ctx context.Context) (string, error) {
	docs, err := s.corpus.ListDocuments(ctx)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("No PDF documents found in %s\n\n", s.dir))
		sb.WriteString("To analyze documents:\n")
		sb.WriteString("1. Place PDF files in the 'data' directory\n")
		sb.WriteString("2. Use the analyze_document tool to process them\n")
		return sb.String(), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Available Documents in %s:\n\n", s.dir))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		doc = s.corpus.Describe(ctx, doc)

		pages := "Unable to read"
		if doc.PageCount > 0 {
			pages = fmt.Sprintf("%d", doc.PageCount)
		}
		title := doc.Title
		if title == "" {
			title = "N/A"
		}
		sb.WriteString(fmt.Sprintf("%s\n", doc.Name))
		sb.WriteString(fmt.Sprintf("   Size: %.2f MB\n", float64(doc.Size)/(1024*1024)))
		sb.WriteString(fmt.Sprintf("   Modified: %s\n", doc.ModifiedAt.Format("2006-01-02 15:04:05")))
		sb.WriteString(fmt.Sprintf("   Pages: %s\n", pages))
		sb.WriteString(fmt.Sprintf("   Title: %s\n\n", title))
	}
	sb.WriteString(fmt.Sprintf("Total: %d documents\n", len(docs)))
	return sb.String(), nil
}

// Analyze extracts the requested view of one corpus document.
func (s *Service) Analyze(ctx context.Context, filename, analysisType, outputFormat string) (string, error) {
	kind, err := ParseAnalysisType(analysisType)
	if err != nil {
		return "", err
	}
	format, err := ParseOutputFormat(outputFormat)
	if err != nil {
		return "", err
	}

	doc, err := s.corpus.Lookup(ctx, filename)
	if err != nil {
		return "", err
	}
	pages, err := s.corpus.OpenPages(ctx, *doc)
	if err != nil {
		return "", err
	}

	s.logger.Debug().
		Str("document", doc.Name).
		Str("analysis_type", string(kind)).
		Int("pages", len(pages)).
		Msg("Analyzing document")

	switch kind {
	case AnalysisFullText:
		return fullText(pages), nil
	case AnalysisSummary:
		return summary(doc.Name, pages), nil
	case AnalysisFinancialHighlights:
		return highlights(doc.Name, pages), nil
	case AnalysisKeyMetrics:
		return s.keyMetrics(doc.Name, pages), nil
	default:
		return s.structured(ctx, *doc, pages, format)
	}
}

func fullText(pages []models.Page) string {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(fmt.Sprintf("\n--- Page %d ---\n", p.Number))
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func summary(name string, pages []models.Page) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Document Analysis Summary for %s\n", name))
	sb.WriteString(fmt.Sprintf("Total Pages: %d\n\n", len(pages)))
	for i, p := range pages {
		if i >= summaryPages {
			break
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("Page %d Summary:\n", p.Number))
		sb.WriteString(analysis.Truncate(text, summaryChars))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func highlights(name string, pages []models.Page) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Financial Highlights from %s\n", name))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	snippets := analysis.MineSnippets(pages, maxHighlights, highlightMinLength, highlightChars)
	if len(snippets) == 0 {
		sb.WriteString("No financial highlights found in this document.\n")
		return sb.String()
	}
	for _, sn := range snippets {
		sb.WriteString(fmt.Sprintf("[Page %d] %s\n\n", sn.Page, sn.Text))
	}
	return sb.String()
}

func (s *Service) keyMetrics(name string, pages []models.Page) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Key Metrics from %s\n", name))
	sb.WriteString(strings.Repeat("=", 40) + "\n\n")

	for _, p := range pages {
		if tables := s.corpus.FindTables(p); len(tables) > 0 {
			sb.WriteString(fmt.Sprintf("Page %d - Tables Found:\n", p.Number))
			for i, t := range tables {
				sb.WriteString(fmt.Sprintf("Table %d:\n", i+1))
				rows := t.Rows
				if len(rows) > tableRows {
					rows = rows[:tableRows]
				}
				for _, row := range rows {
					sb.WriteString(joinCells(row) + "\n")
				}
				sb.WriteString("\n")
			}
		}

		if numbers := keyNumbers(p.Text); len(numbers) > 0 {
			sb.WriteString(fmt.Sprintf("Page %d - Key Numbers: %s\n\n", p.Number, strings.Join(numbers, ", ")))
		}
	}
	return sb.String()
}

// keyNumbers returns the first figures on a page, with any trailing
// percent sign or currency unit.
func keyNumbers(text string) []string {
	found := keyNumberPattern.FindAllString(text, keyNumbersPerPage)
	for i, f := range found {
		found[i] = strings.Join(strings.Fields(f), " ")
	}
	return found
}

func joinCells(row []string) string {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return strings.Join(cells, " | ")
}

// structuredDocument is the JSON shape of the structured preview.
type structuredDocument struct {
	Filename       string                   `json:"filename"`
	TotalPages     int                      `json:"total_pages"`
	Metadata       *models.DocumentMetadata `json:"metadata,omitempty"`
	ContentPreview string                   `json:"content_preview"`
}

func (s *Service) structured(ctx context.Context, doc models.Document, pages []models.Page, format OutputFormat) (string, error) {
	out := structuredDocument{Filename: doc.Name, TotalPages: len(pages)}
	if meta, err := s.extractor.GetMetadata(ctx, doc.Path); err == nil {
		out.Metadata = meta
	} else {
		s.logger.Debug().Err(err).Str("document", doc.Name).Msg("Metadata unavailable for preview")
	}
	if len(pages) > 0 {
		out.ContentPreview = analysis.Truncate(pages[0].Text, previewChars)
	}

	if format == OutputJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode document preview: %w", err)
		}
		return string(data), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Document: %s\n", out.Filename))
	sb.WriteString(fmt.Sprintf("Pages: %d\n", out.TotalPages))
	sb.WriteString(fmt.Sprintf("Metadata: %s\n\n", describeMetadata(out.Metadata)))
	sb.WriteString("Content Preview:\n")
	sb.WriteString(out.ContentPreview)
	return sb.String(), nil
}

func describeMetadata(meta *models.DocumentMetadata) string {
	if meta == nil {
		return "N/A"
	}
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+": "+value)
		}
	}
	add("title", meta.Title)
	add("author", meta.Author)
	add("subject", meta.Subject)
	add("creator", meta.Creator)
	add("producer", meta.Producer)
	if meta.IsEncrypted {
		parts = append(parts, "encrypted")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
