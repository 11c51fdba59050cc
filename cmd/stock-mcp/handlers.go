package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
	"github.com/ternarybob/stockmcp/internal/services/analysis"
	"github.com/ternarybob/stockmcp/internal/services/documents"
	"github.com/ternarybob/stockmcp/internal/services/stocks"
)

// storageStatus is the part of the storage manager get_version reports on.
type storageStatus interface {
	Driver() string
	Ping(ctx context.Context) error
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// toolError maps the error taxonomy onto a one-line error result.
func toolError(logger arbor.ILogger, tool string, err error) *mcp.CallToolResult {
	switch {
	case common.IsValidation(err):
		logger.Warn().Str("tool", tool).Err(err).Msg("Rejected tool call")
		return errorResult("Validation error: " + err.Error())
	case common.IsSourceUnavailable(err):
		logger.Error().Str("tool", tool).Err(err).Msg("Data source unavailable")
		return errorResult("Source unavailable: " + err.Error())
	default:
		logger.Error().Str("tool", tool).Err(err).Msg("Tool call failed")
		return errorResult("Error: " + err.Error())
	}
}

// requireArg reads a required string argument as a validation error when absent.
func requireArg(request mcp.CallToolRequest, key string) (string, error) {
	v, err := request.RequireString(key)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", common.NewValidationError(key, "is required")
	}
	return v, nil
}

// handleGetStockInfo implements the get_stock_info tool
func handleGetStockInfo(svc *stocks.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireArg(request, "symbol")
		if err != nil {
			return toolError(logger, "get_stock_info", err), nil
		}
		text, err := svc.StockInfo(ctx, symbol)
		if err != nil {
			return toolError(logger, "get_stock_info", err), nil
		}
		return textResult(text), nil
	}
}

// handleGetPriceHistory implements the get_price_history tool
func handleGetPriceHistory(svc *stocks.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireArg(request, "symbol")
		if err != nil {
			return toolError(logger, "get_price_history", err), nil
		}
		text, err := svc.PriceHistory(ctx, symbol,
			request.GetString("period", "daily"),
			request.GetString("start_date", ""),
			request.GetString("end_date", ""),
		)
		if err != nil {
			return toolError(logger, "get_price_history", err), nil
		}
		return textResult(text), nil
	}
}

// handleSearchStocks implements the search_stocks tool
func handleSearchStocks(svc *stocks.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pattern, err := requireArg(request, "pattern")
		if err != nil {
			return toolError(logger, "search_stocks", err), nil
		}
		text, err := svc.Search(ctx, pattern, request.GetInt("limit", stocks.DefaultSearchLimit))
		if err != nil {
			return toolError(logger, "search_stocks", err), nil
		}
		return textResult(text), nil
	}
}

// handleGetAdvancedMetrics implements the get_advanced_metrics tool
func handleGetAdvancedMetrics(svc *stocks.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireArg(request, "symbol")
		if err != nil {
			return toolError(logger, "get_advanced_metrics", err), nil
		}
		text, err := svc.AdvancedMetrics(ctx, symbol, request.GetString("timeframe", ""))
		if err != nil {
			return toolError(logger, "get_advanced_metrics", err), nil
		}
		return textResult(text), nil
	}
}

// decodeCriteria converts the criteria object argument into models.Criteria.
func decodeCriteria(request mcp.CallToolRequest) (models.Criteria, error) {
	var criteria models.Criteria
	raw, ok := request.GetArguments()["criteria"]
	if !ok || raw == nil {
		return criteria, common.NewValidationError("criteria", "is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return criteria, common.NewValidationError("criteria", "must be an object")
	}
	if err := json.Unmarshal(data, &criteria); err != nil {
		return criteria, common.NewValidationError("criteria", "invalid value: "+err.Error())
	}
	return criteria, nil
}

// handleScreenStocks implements the screen_stocks_by_metrics tool
func handleScreenStocks(screener interfaces.StockScreener, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		criteria, err := decodeCriteria(request)
		if err != nil {
			return toolError(logger, "screen_stocks_by_metrics", err), nil
		}
		result, err := screener.Screen(ctx, criteria)
		if err != nil {
			return toolError(logger, "screen_stocks_by_metrics", err), nil
		}
		return textResult(analysis.FormatScreenResult(result)), nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(svc *documents.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := svc.List(ctx)
		if err != nil {
			return toolError(logger, "list_documents", err), nil
		}
		return textResult(text), nil
	}
}

// handleAnalyzeDocument implements the analyze_document tool
func handleAnalyzeDocument(svc *documents.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, err := requireArg(request, "filename")
		if err != nil {
			return toolError(logger, "analyze_document", err), nil
		}
		text, err := svc.Analyze(ctx, filename,
			request.GetString("analysis_type", ""),
			request.GetString("output_format", ""),
		)
		if err != nil {
			return toolError(logger, "analyze_document", err), nil
		}
		return textResult(text), nil
	}
}

// handleFindCompanyDocuments implements the find_company_documents tool
func handleFindCompanyDocuments(ranker interfaces.DocumentRanker, corpus interfaces.DocumentCorpus, metrics interfaces.MetricStore, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireArg(request, "symbol")
		if err != nil {
			return toolError(logger, "find_company_documents", err), nil
		}

		result, err := ranker.Rank(ctx, symbol, "")
		if err != nil {
			return toolError(logger, "find_company_documents", err), nil
		}
		all, err := corpus.ListDocuments(ctx)
		if err != nil {
			return toolError(logger, "find_company_documents", err), nil
		}

		// Company info is advisory here; the ranking above already reported lookup failures.
		name, found, err := metrics.GetCompanyName(ctx, result.Symbol)
		if err != nil || !found {
			name = ""
		}

		return textResult(analysis.FormatRankDiagnostic(result, all, name)), nil
	}
}

// handleGetCompanyFundamentals implements the get_company_fundamentals tool
func handleGetCompanyFundamentals(aggregator interfaces.FundamentalsAggregator, reports interfaces.PDFService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := requireArg(request, "symbol")
		if err != nil {
			return toolError(logger, "get_company_fundamentals", err), nil
		}
		format := strings.ToLower(strings.TrimSpace(request.GetString("format", "text")))
		if format != "text" && format != "pdf" && format != "" {
			return toolError(logger, "get_company_fundamentals",
				common.NewValidationError("format", "format must be text or pdf; got "+format)), nil
		}

		report, err := aggregator.Aggregate(ctx, symbol, request.GetString("document_pattern", ""))
		if err != nil {
			return toolError(logger, "get_company_fundamentals", err), nil
		}
		markdown := analysis.FormatFundamentals(report)
		result := textResult(markdown)
		if format != "pdf" {
			return result, nil
		}

		pdfBytes, err := reports.ConvertMarkdownToPDF(markdown, fmt.Sprintf("Comprehensive Analysis for %s", report.Symbol))
		if err != nil {
			return toolError(logger, "get_company_fundamentals", fmt.Errorf("failed to render PDF report: %w", err)), nil
		}
		result.Content = append(result.Content, mcp.NewEmbeddedResource(mcp.BlobResourceContents{
			URI:      fmt.Sprintf("report://fundamentals/%s.pdf", report.Symbol),
			MIMEType: "application/pdf",
			Blob:     base64.StdEncoding.EncodeToString(pdfBytes),
		}))
		logger.Debug().Str("symbol", report.Symbol).Int("pdf_bytes", len(pdfBytes)).Msg("Attached PDF report")
		return result, nil
	}
}

// handleGetVersion implements the get_version tool
func handleGetVersion(status storageStatus, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := common.GetVersionInfo()

		storage := "ok"
		if err := status.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Storage ping failed")
			storage = "unavailable (" + err.Error() + ")"
		}

		var sb strings.Builder
		sb.WriteString("# Stock MCP\n\n")
		sb.WriteString(fmt.Sprintf("- **Version:** %s\n", info.Version))
		sb.WriteString(fmt.Sprintf("- **Build:** %s\n", info.Build))
		sb.WriteString(fmt.Sprintf("- **Commit:** %s\n", info.GitCommit))
		sb.WriteString(fmt.Sprintf("- **Go:** %s\n", info.GoVersion))
		sb.WriteString(fmt.Sprintf("- **Database:** %s (%s)\n", status.Driver(), storage))
		return textResult(sb.String()), nil
	}
}
