package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetStockInfoTool returns the get_stock_info tool definition
func createGetStockInfoTool() mcp.Tool {
	return mcp.NewTool("get_stock_info",
		mcp.WithDescription("Get company details and a summary of the daily price history for a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol (e.g., RELIANCE, TCS, INFY)"),
		),
	)
}

// createGetPriceHistoryTool returns the get_price_history tool definition
func createGetPriceHistoryTool() mcp.Tool {
	return mcp.NewTool("get_price_history",
		mcp.WithDescription("Get daily bars with RSI or weekly bars with moving averages, newest first (max 100)"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol"),
		),
		mcp.WithString("period",
			mcp.Description("daily (default) or weekly"),
			mcp.Enum("daily", "weekly"),
		),
		mcp.WithString("start_date",
			mcp.Description("Earliest date, YYYY-MM-DD"),
		),
		mcp.WithString("end_date",
			mcp.Description("Latest date, YYYY-MM-DD"),
		),
	)
}

// createSearchStocksTool returns the search_stocks tool definition
func createSearchStocksTool() mcp.Tool {
	return mcp.NewTool("search_stocks",
		mcp.WithDescription("Search stocks by symbol or company name"),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Text contained in the symbol or company name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 10, max: 100)"),
		),
	)
}

// createGetAdvancedMetricsTool returns the get_advanced_metrics tool definition
func createGetAdvancedMetricsTool() mcp.Tool {
	return mcp.NewTool("get_advanced_metrics",
		mcp.WithDescription("Get risk, return and technical indicators for a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol"),
		),
		mcp.WithString("timeframe",
			mcp.Description("short, medium (default) or long"),
			mcp.Enum("short", "medium", "long"),
		),
	)
}

// createScreenStocksTool returns the screen_stocks_by_metrics tool definition
func createScreenStocksTool() mcp.Tool {
	return mcp.NewTool("screen_stocks_by_metrics",
		mcp.WithDescription("Screen stocks by sector, Sharpe ratio, volatility and RSI, ordered by Sharpe ratio"),
		mcp.WithObject("criteria",
			mcp.Required(),
			mcp.Description("Screening criteria; omitted fields place no constraint"),
			mcp.Properties(map[string]any{
				"sector":           map[string]any{"type": "string", "description": "Exact sector name"},
				"timeframe":        map[string]any{"type": "string", "enum": []string{"short", "medium", "long"}},
				"min_sharpe_ratio": map[string]any{"type": "number"},
				"max_volatility":   map[string]any{"type": "number", "description": "Annualised volatility as a fraction (0.25 = 25%)"},
				"min_rsi":          map[string]any{"type": "number", "minimum": 0, "maximum": 100},
				"max_rsi":          map[string]any{"type": "number", "minimum": 0, "maximum": 100},
				"limit":            map[string]any{"type": "integer", "minimum": 1, "maximum": 1000, "description": "Default: 20"},
			}),
		),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List the PDF documents available for analysis"),
	)
}

// createAnalyzeDocumentTool returns the analyze_document tool definition
func createAnalyzeDocumentTool() mcp.Tool {
	return mcp.NewTool("analyze_document",
		mcp.WithDescription("Extract a summary, financial highlights, key metrics or full text from a PDF document"),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Document file name as shown by list_documents"),
		),
		mcp.WithString("analysis_type",
			mcp.Description("summary (default), financial_highlights, full_text, key_metrics or structured"),
			mcp.Enum("summary", "financial_highlights", "full_text", "key_metrics", "structured"),
		),
		mcp.WithString("output_format",
			mcp.Description("structured (default), text or json; applies to the structured preview"),
			mcp.Enum("structured", "text", "json"),
		),
	)
}

// createFindCompanyDocumentsTool returns the find_company_documents tool definition
func createFindCompanyDocumentsTool() mcp.Tool {
	return mcp.NewTool("find_company_documents",
		mcp.WithDescription("Show which documents are matched to a stock and why, with naming suggestions"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol"),
		),
	)
}

// createGetCompanyFundamentalsTool returns the get_company_fundamentals tool definition
func createGetCompanyFundamentalsTool() mcp.Tool {
	return mcp.NewTool("get_company_fundamentals",
		mcp.WithDescription("Combine technical metrics with highlights and tables mined from the company's documents"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol"),
		),
		mcp.WithString("document_pattern",
			mcp.Description("Extra text to match in document names"),
		),
		mcp.WithString("format",
			mcp.Description("text (default) or pdf; pdf also attaches the report as a PDF resource"),
			mcp.Enum("text", "pdf"),
		),
	)
}

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Report the server version and storage status"),
	)
}
