package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/models"
)

const revenueParagraph = "Revenue for the quarter grew 12% year on year to Rs 62,613 crore, " +
	"driven by strong deal wins across BFSI and retail verticals."

const marginParagraph = "Operating margin expanded by 150 basis points to 24.6%, reflecting " +
	"pricing discipline and improved utilisation across delivery centres."

func newTestAggregator(t *testing.T, store *fakeStore, corpus *fakeCorpus) *Aggregator {
	t.Helper()
	cfg := defaultAnalysisConfig()
	ranker, err := NewRanker(corpus, store, cfg, arbor.NewLogger())
	require.NoError(t, err)
	return NewAggregator(store, corpus, ranker, cfg, arbor.NewLogger())
}

func tcsRecord() *models.MetricRecord {
	return &models.MetricRecord{
		Symbol:      "TCS",
		CompanyName: "Tata Consultancy Services",
		Sector:      "IT",
		Risk:        models.RiskMetrics{SharpeRatio: models.Float(1.8), Volatility: models.Float(0.21)},
		Technical:   models.TechnicalIndicators{RSI14: models.Float(55)},
	}
}

func noticeKinds(report *models.FundamentalsReport) []models.NoticeKind {
	kinds := []models.NoticeKind{}
	for _, n := range report.Notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func TestAggregate_NoDocuments(t *testing.T) {
	store := &fakeStore{records: map[string]*models.MetricRecord{}}
	a := newTestAggregator(t, store, &fakeCorpus{})

	report, err := a.Aggregate(context.Background(), "xyz", "")
	require.NoError(t, err)

	assert.Nil(t, report.Technical)
	assert.Empty(t, report.Matches)
	assert.Empty(t, report.Documents)
	assert.True(t, report.HasNotice(models.NoticeNoTechnicalData))
	assert.True(t, report.HasNotice(models.NoticeNoDocuments))

	text := FormatFundamentals(report)
	assert.Contains(t, text, "No technical data available")
	assert.Contains(t, text, "No PDF documents found")
	assert.Contains(t, text, "XYZ_Transcript.pdf")
	assert.Contains(t, text, "Investment Perspective")
}

func TestAggregate_ExtractsSnippetsAndTables(t *testing.T) {
	store := &fakeStore{records: map[string]*models.MetricRecord{"TCS": tcsRecord()}}
	corpus := &fakeCorpus{
		docs: []models.Document{doc("TCS_Transcript.pdf", 0)},
		pages: map[string][]models.Page{
			"TCS_Transcript.pdf": {
				{Number: 1, Text: "Q3 FY24 Earnings Call\n\n" + revenueParagraph},
				{Number: 2, Text: "Segment  Revenue  Growth\nBFSI  20,000  4%\nRetail  9,000  \n\n" + marginParagraph},
			},
		},
	}
	a := newTestAggregator(t, store, corpus)

	report, err := a.Aggregate(context.Background(), "TCS", "")
	require.NoError(t, err)

	require.NotNil(t, report.Technical)
	assert.Equal(t, models.TimeframeMedium, report.Technical.Timeframe)
	require.Len(t, report.Documents, 1)

	section := report.Documents[0]
	assert.Empty(t, section.Err)
	require.Len(t, section.Snippets, 2)
	assert.Equal(t, 1, section.Snippets[0].Page)
	assert.Equal(t, revenueParagraph, section.Snippets[0].Text)
	assert.False(t, section.Snippets[0].Truncated)
	assert.Equal(t, 2, section.Snippets[1].Page)

	require.Len(t, section.Tables, 1)
	assert.Equal(t, [][]string{
		{"Segment", "Revenue", "Growth"},
		{"BFSI", "20,000", "4%"},
		{"Retail", "9,000", ""},
	}, section.Tables[0].Rows)

	assert.Empty(t, report.Notices)

	text := FormatFundamentals(report)
	techAt := strings.Index(text, "## Technical Analysis")
	fundAt := strings.Index(text, "## Fundamental Analysis")
	docAt := strings.Index(text, "### Document: TCS_Transcript.pdf")
	perspectiveAt := strings.Index(text, "## Investment Perspective")
	assert.True(t, techAt >= 0 && techAt < fundAt && fundAt < docAt && docAt < perspectiveAt, text)
	assert.Contains(t, text, "[Page 1] Revenue for the quarter")
	assert.Contains(t, text, "| Retail | 9,000 |  |")
}

func TestAggregate_PartialExtractionFailure(t *testing.T) {
	store := &fakeStore{records: map[string]*models.MetricRecord{"TCS": tcsRecord()}}
	corpus := &fakeCorpus{
		docs: []models.Document{
			doc("TCS_Transcript.pdf", 0),
			doc("TCS_Annual_Report.pdf", 0),
			doc("TCS_Results.pdf", 0),
		},
		pages: map[string][]models.Page{
			"TCS_Transcript.pdf": {{Number: 1, Text: revenueParagraph}},
			"TCS_Results.pdf":    {{Number: 4, Text: marginParagraph}},
		},
		openErr: map[string]error{"TCS_Annual_Report.pdf": errors.New("failed to read PDF: unexpected EOF")},
	}
	a := newTestAggregator(t, store, corpus)

	report, err := a.Aggregate(context.Background(), "TCS", "")
	require.NoError(t, err)
	require.Len(t, report.Documents, 3)

	// transcript 150, results 140, annual report 130
	assert.Equal(t, "TCS_Transcript.pdf", report.Documents[0].Match.Document.Name)
	assert.Equal(t, "TCS_Results.pdf", report.Documents[1].Match.Document.Name)
	assert.Equal(t, "TCS_Annual_Report.pdf", report.Documents[2].Match.Document.Name)

	assert.NotEmpty(t, report.Documents[0].Snippets)
	assert.NotEmpty(t, report.Documents[1].Snippets)
	assert.Contains(t, report.Documents[2].Err, "unexpected EOF")
	assert.Equal(t, []models.NoticeKind{models.NoticeExtractionFailed}, noticeKinds(report))
	assert.Equal(t, "TCS_Annual_Report.pdf", report.Notices[0].Document)

	text := FormatFundamentals(report)
	assert.Contains(t, text, "Error processing TCS_Annual_Report.pdf")
	assert.Contains(t, text, "[Page 4] Operating margin")
}

func TestAggregate_PanickingDocumentIsContained(t *testing.T) {
	store := &fakeStore{records: map[string]*models.MetricRecord{"TCS": tcsRecord()}}
	corpus := &fakeCorpus{
		docs:    []models.Document{doc("TCS_Transcript.pdf", 0), doc("TCS.pdf", 0)},
		pages:   map[string][]models.Page{"TCS.pdf": {{Number: 1, Text: revenueParagraph}}},
		panicOn: map[string]bool{"TCS_Transcript.pdf": true},
	}
	a := newTestAggregator(t, store, corpus)

	report, err := a.Aggregate(context.Background(), "TCS", "")
	require.NoError(t, err)
	require.Len(t, report.Documents, 2)
	assert.Contains(t, report.Documents[0].Err, "corrupt xref table")
	assert.NotEmpty(t, report.Documents[1].Snippets)
}

func TestAggregate_OnlyTopThreeDocumentsOpened(t *testing.T) {
	corpus := &fakeCorpus{docs: []models.Document{
		doc("WIPRO_1.pdf", 0), doc("WIPRO_2.pdf", 0), doc("WIPRO_3.pdf", 0),
		doc("WIPRO_4.pdf", 0), doc("WIPRO_5.pdf", 0), doc("WIPRO_6.pdf", 0),
	}}
	a := newTestAggregator(t, &fakeStore{}, corpus)

	report, err := a.Aggregate(context.Background(), "WIPRO", "")
	require.NoError(t, err)

	assert.Len(t, report.Matches, 5)
	assert.Len(t, report.Documents, 3)
	assert.Len(t, corpus.opened, 3)
	// no financial content in empty pages
	assert.True(t, report.HasNotice(models.NoticeNoQualifyingContent))
}

func TestAggregate_Errors(t *testing.T) {
	t.Run("invalid symbol", func(t *testing.T) {
		a := newTestAggregator(t, &fakeStore{}, &fakeCorpus{})
		_, err := a.Aggregate(context.Background(), "", "")
		assert.True(t, common.IsValidation(err))
	})

	t.Run("metric store unavailable aborts", func(t *testing.T) {
		corpus := &fakeCorpus{docs: []models.Document{doc("TCS.pdf", 0)}}
		a := newTestAggregator(t, &fakeStore{metricsErr: storeDown()}, corpus)
		_, err := a.Aggregate(context.Background(), "TCS", "")
		assert.True(t, common.IsSourceUnavailable(err))
		assert.Empty(t, corpus.opened)
	})
}
