package main

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/models"
	"github.com/ternarybob/stockmcp/internal/services/documents"
	"github.com/ternarybob/stockmcp/internal/services/stocks"
)

var errStoreDown = common.NewSourceError("metric store", "query", errors.New("connection refused"))

type stubStocks struct{ err error }

func (s *stubStocks) GetStockInfo(ctx context.Context, symbol string) (*models.StockInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.StockInfo{Symbol: symbol, CompanyName: "Infosys", Sector: "IT"}, nil
}

func (s *stubStocks) GetPriceHistory(ctx context.Context, query models.PriceHistoryQuery) ([]models.PriceBar, error) {
	return nil, s.err
}

func (s *stubStocks) SearchStocks(ctx context.Context, pattern string, limit int) ([]models.StockMatch, error) {
	return nil, s.err
}

type stubMetrics struct {
	name    string
	nameErr error
}

func (s *stubMetrics) GetLatestMetrics(ctx context.Context, symbol string, tf models.Timeframe) (*models.MetricRecord, error) {
	return nil, nil
}

func (s *stubMetrics) GetCompanyName(ctx context.Context, symbol string) (string, bool, error) {
	if s.nameErr != nil {
		return "", false, s.nameErr
	}
	return s.name, s.name != "", nil
}

func (s *stubMetrics) Screen(ctx context.Context, query *models.ScreenQuery) ([]models.ScreenRow, error) {
	return nil, nil
}

type stubScreener struct {
	got    models.Criteria
	result *models.ScreenResult
	err    error
}

func (s *stubScreener) Compile(criteria models.Criteria) (*models.ScreenQuery, error) {
	return nil, errors.New("not used")
}

func (s *stubScreener) Screen(ctx context.Context, criteria models.Criteria) (*models.ScreenResult, error) {
	s.got = criteria
	return s.result, s.err
}

type stubRanker struct {
	result *models.RankResult
	err    error
}

func (s *stubRanker) Rank(ctx context.Context, symbol, pattern string) (*models.RankResult, error) {
	return s.result, s.err
}

type stubAggregator struct {
	report  *models.FundamentalsReport
	err     error
	pattern string
}

func (s *stubAggregator) Aggregate(ctx context.Context, symbol, pattern string) (*models.FundamentalsReport, error) {
	s.pattern = pattern
	return s.report, s.err
}

type stubCorpus struct {
	docs []models.Document
	err  error
}

func (s *stubCorpus) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return s.docs, s.err
}

func (s *stubCorpus) Lookup(ctx context.Context, name string) (*models.Document, error) {
	if strings.Contains(name, "/") {
		return nil, common.NewValidationError("filename", "must be a file name without directories")
	}
	return nil, common.NewValidationError("filename", "document not found: "+name)
}

func (s *stubCorpus) Describe(ctx context.Context, doc models.Document) models.Document {
	return doc
}

func (s *stubCorpus) OpenPages(ctx context.Context, doc models.Document) ([]models.Page, error) {
	return nil, nil
}

func (s *stubCorpus) FindTables(page models.Page) []models.Table {
	return nil
}

type stubExtractor struct{}

func (stubExtractor) ExtractPages(ctx context.Context, path string) ([]models.Page, error) {
	return nil, nil
}

func (stubExtractor) ExtractPageRange(ctx context.Context, path string, startPage, endPage int) ([]models.Page, error) {
	return nil, nil
}

func (stubExtractor) GetMetadata(ctx context.Context, path string) (*models.DocumentMetadata, error) {
	return &models.DocumentMetadata{}, nil
}

type stubReports struct {
	err error
}

func (s *stubReports) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 " + title), nil
}

type stubStatus struct{ err error }

func (s stubStatus) Driver() string                 { return "sqlite" }
func (s stubStatus) Ping(ctx context.Context) error { return s.err }

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	return result
}

func resultText(result *mcp.CallToolResult) string {
	return result.Content[0].(mcp.TextContent).Text
}

func TestLookupHandlers_ErrorMapping(t *testing.T) {
	logger := arbor.NewLogger()
	healthy := stocks.NewService(&stubStocks{}, &stubMetrics{}, logger)
	down := stocks.NewService(&stubStocks{err: errStoreDown}, &stubMetrics{}, logger)

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
		isError bool
		prefix  string
	}{
		{
			name:    "missing symbol",
			handler: handleGetStockInfo(healthy, logger),
			args:    map[string]interface{}{},
			isError: true,
			prefix:  "Validation error: symbol",
		},
		{
			name:    "malformed symbol",
			handler: handleGetStockInfo(healthy, logger),
			args:    map[string]interface{}{"symbol": "TCS; DROP TABLE"},
			isError: true,
			prefix:  "Validation error:",
		},
		{
			name:    "store unavailable",
			handler: handleGetStockInfo(down, logger),
			args:    map[string]interface{}{"symbol": "INFY"},
			isError: true,
			prefix:  "Source unavailable:",
		},
		{
			name:    "stock info",
			handler: handleGetStockInfo(healthy, logger),
			args:    map[string]interface{}{"symbol": "infy"},
			prefix:  "Stock found but no price history:",
		},
		{
			name:    "bad period",
			handler: handleGetPriceHistory(healthy, logger),
			args:    map[string]interface{}{"symbol": "INFY", "period": "hourly"},
			isError: true,
			prefix:  "Validation error: period",
		},
		{
			name:    "search without pattern",
			handler: handleSearchStocks(healthy, logger),
			args:    map[string]interface{}{"limit": 5},
			isError: true,
			prefix:  "Validation error: pattern",
		},
		{
			name:    "bad timeframe",
			handler: handleGetAdvancedMetrics(healthy, logger),
			args:    map[string]interface{}{"symbol": "INFY", "timeframe": "decade"},
			isError: true,
			prefix:  "Validation error: timeframe",
		},
		{
			name:    "no metrics",
			handler: handleGetAdvancedMetrics(healthy, logger),
			args:    map[string]interface{}{"symbol": "INFY"},
			prefix:  "No advanced metrics found for INFY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, tt.handler, tt.args)
			assert.Equal(t, tt.isError, result.IsError)
			assert.True(t, strings.HasPrefix(resultText(result), tt.prefix), resultText(result))
		})
	}
}

func TestHandleScreenStocks(t *testing.T) {
	logger := arbor.NewLogger()

	t.Run("decodes criteria", func(t *testing.T) {
		screener := &stubScreener{result: &models.ScreenResult{
			Query: &models.ScreenQuery{Timeframe: models.TimeframeShort},
			Rows:  []models.ScreenRow{{Symbol: "TCS", CompanyName: "Tata Consultancy Services", Sector: "IT", SharpeRatio: models.Float(1.9)}},
		}}
		result := call(t, handleScreenStocks(screener, logger), map[string]interface{}{
			"criteria": map[string]interface{}{
				"sector":           "IT",
				"timeframe":        "short",
				"min_sharpe_ratio": 1.5,
				"limit":            5,
			},
		})

		require.False(t, result.IsError, resultText(result))
		require.NotNil(t, screener.got.Sector)
		assert.Equal(t, "IT", *screener.got.Sector)
		assert.Equal(t, "short", screener.got.Timeframe)
		require.NotNil(t, screener.got.MinSharpeRatio)
		assert.Equal(t, 1.5, *screener.got.MinSharpeRatio)
		require.NotNil(t, screener.got.Limit)
		assert.Equal(t, 5, *screener.got.Limit)
		assert.Nil(t, screener.got.MaxVolatility)
		assert.Contains(t, resultText(result), "Stock Screening Results")
		assert.Contains(t, resultText(result), "TCS")
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		screener := &stubScreener{result: &models.ScreenResult{Query: &models.ScreenQuery{Timeframe: models.TimeframeMedium}, Rows: []models.ScreenRow{}}}
		result := call(t, handleScreenStocks(screener, logger), map[string]interface{}{"criteria": map[string]interface{}{}})
		assert.False(t, result.IsError)
		assert.Equal(t, "No stocks found matching the specified criteria", resultText(result))
	})

	invalid := []struct {
		name string
		args map[string]interface{}
	}{
		{name: "missing criteria", args: map[string]interface{}{}},
		{name: "criteria not an object", args: map[string]interface{}{"criteria": "sharpe > 1"}},
		{name: "wrong field type", args: map[string]interface{}{"criteria": map[string]interface{}{"limit": "ten"}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, handleScreenStocks(&stubScreener{}, logger), tt.args)
			assert.True(t, result.IsError)
			assert.True(t, strings.HasPrefix(resultText(result), "Validation error: criteria"), resultText(result))
		})
	}

	t.Run("validation from the screener", func(t *testing.T) {
		screener := &stubScreener{err: common.NewValidationError("max_rsi", "must be at most 100")}
		result := call(t, handleScreenStocks(screener, logger), map[string]interface{}{"criteria": map[string]interface{}{"max_rsi": 150}})
		assert.True(t, result.IsError)
		assert.Equal(t, "Validation error: max_rsi: must be at most 100", resultText(result))
	})
}

func TestHandleFindCompanyDocuments(t *testing.T) {
	logger := arbor.NewLogger()
	modified := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	docs := []models.Document{
		{Name: "TCS_Transcript.pdf", ModifiedAt: modified},
		{Name: "misc.pdf", ModifiedAt: modified},
	}
	ranker := &stubRanker{result: &models.RankResult{
		Symbol:     "TCS",
		CorpusSize: 2,
		Matches: []models.DocumentMatch{
			{Document: docs[0], Score: 150.17, Reasons: []string{"exact symbol match", "earnings transcript"}, Via: models.CandidateBySymbol},
		},
	}}

	result := call(t, handleFindCompanyDocuments(ranker, &stubCorpus{docs: docs}, &stubMetrics{name: "Tata Consultancy Services"}, logger),
		map[string]interface{}{"symbol": "TCS"})
	require.False(t, result.IsError, resultText(result))
	text := resultText(result)
	assert.Contains(t, text, "Document Search Results for TCS")
	assert.Contains(t, text, "TCS_Transcript.pdf")
	assert.Contains(t, text, "misc.pdf")

	// company lookup failure does not fail the tool
	result = call(t, handleFindCompanyDocuments(ranker, &stubCorpus{docs: docs}, &stubMetrics{nameErr: errStoreDown}, logger),
		map[string]interface{}{"symbol": "TCS"})
	assert.False(t, result.IsError)

	result = call(t, handleFindCompanyDocuments(&stubRanker{err: errStoreDown}, &stubCorpus{}, &stubMetrics{}, logger),
		map[string]interface{}{"symbol": "TCS"})
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(resultText(result), "Source unavailable:"))
}

func TestHandleGetCompanyFundamentals(t *testing.T) {
	logger := arbor.NewLogger()
	report := &models.FundamentalsReport{
		Symbol:    "ZZZ",
		Matches:   []models.DocumentMatch{},
		Documents: []models.DocumentSection{},
		Notices: []models.Notice{{
			Kind:    models.NoticeNoDocuments,
			Message: "No PDF documents found. Add company reports, transcripts, or annual reports, e.g. ZZZ_Transcript.pdf, ZZZ_Annual_Report.pdf",
		}},
	}

	t.Run("text", func(t *testing.T) {
		aggregator := &stubAggregator{report: report}
		result := call(t, handleGetCompanyFundamentals(aggregator, &stubReports{}, logger),
			map[string]interface{}{"symbol": "ZZZ", "document_pattern": "Q4"})
		require.False(t, result.IsError, resultText(result))
		assert.Len(t, result.Content, 1)
		assert.Equal(t, "Q4", aggregator.pattern)
		assert.Contains(t, resultText(result), "# Comprehensive Analysis for ZZZ")
		assert.Contains(t, resultText(result), "No technical data available")
		assert.Contains(t, resultText(result), "ZZZ_Annual_Report.pdf")
	})

	t.Run("pdf attaches a blob resource", func(t *testing.T) {
		result := call(t, handleGetCompanyFundamentals(&stubAggregator{report: report}, &stubReports{}, logger),
			map[string]interface{}{"symbol": "ZZZ", "format": "pdf"})
		require.False(t, result.IsError, resultText(result))
		require.Len(t, result.Content, 2)

		embedded, ok := result.Content[1].(mcp.EmbeddedResource)
		require.True(t, ok)
		blob, ok := embedded.Resource.(mcp.BlobResourceContents)
		require.True(t, ok)
		assert.Equal(t, "application/pdf", blob.MIMEType)
		assert.Equal(t, "report://fundamentals/ZZZ.pdf", blob.URI)

		data, err := base64.StdEncoding.DecodeString(blob.Blob)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 Comprehensive Analysis for ZZZ", string(data))
	})

	t.Run("unknown format", func(t *testing.T) {
		result := call(t, handleGetCompanyFundamentals(&stubAggregator{report: report}, &stubReports{}, logger),
			map[string]interface{}{"symbol": "ZZZ", "format": "docx"})
		assert.True(t, result.IsError)
		assert.True(t, strings.HasPrefix(resultText(result), "Validation error: format"))
	})

	t.Run("render failure", func(t *testing.T) {
		result := call(t, handleGetCompanyFundamentals(&stubAggregator{report: report}, &stubReports{err: errors.New("font missing")}, logger),
			map[string]interface{}{"symbol": "ZZZ", "format": "pdf"})
		assert.True(t, result.IsError)
		assert.Equal(t, "Error: failed to render PDF report: font missing", resultText(result))
	})

	t.Run("aggregation failure", func(t *testing.T) {
		result := call(t, handleGetCompanyFundamentals(&stubAggregator{err: errStoreDown}, &stubReports{}, logger),
			map[string]interface{}{"symbol": "ZZZ"})
		assert.True(t, result.IsError)
		assert.True(t, strings.HasPrefix(resultText(result), "Source unavailable:"))
	})
}

func TestDocumentHandlers(t *testing.T) {
	logger := arbor.NewLogger()
	svc := documents.NewService(&stubCorpus{}, stubExtractor{}, &common.DocumentConfig{Dir: "./data"}, logger)

	result := call(t, handleListDocuments(svc, logger), map[string]interface{}{})
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(result), "No PDF documents found in ./data")

	result = call(t, handleAnalyzeDocument(svc, logger), map[string]interface{}{"filename": "../etc/passwd"})
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(resultText(result), "Validation error: filename"))

	result = call(t, handleAnalyzeDocument(svc, logger), map[string]interface{}{})
	assert.True(t, result.IsError)
	assert.Equal(t, "Validation error: filename: is required", resultText(result))

	failing := documents.NewService(&stubCorpus{err: common.NewSourceError("document corpus", "list documents", errors.New("permission denied"))},
		stubExtractor{}, &common.DocumentConfig{Dir: "./data"}, logger)
	result = call(t, handleListDocuments(failing, logger), map[string]interface{}{})
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(resultText(result), "Source unavailable:"))
}

func TestHandleGetVersion(t *testing.T) {
	logger := arbor.NewLogger()

	result := call(t, handleGetVersion(stubStatus{}, logger), map[string]interface{}{})
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(result), "**Version:** "+common.Version)
	assert.Contains(t, resultText(result), "**Database:** sqlite (ok)")

	result = call(t, handleGetVersion(stubStatus{err: errors.New("database is locked")}, logger), map[string]interface{}{})
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(result), "sqlite (unavailable (database is locked))")
}
