package analysis

import (
	"fmt"
	"strings"

	"github.com/ternarybob/stockmcp/internal/models"
)

const notAvailable = "N/A"

// perspectiveNote closes every fundamentals report.
const perspectiveNote = "This analysis combines technical metrics from the database with fundamental " +
	"insights from company documents. It is informational only and not investment advice."

func num(v *float64, prec int) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

// ratioWithPercent renders 0.1834 as "0.1834 (18.34%)".
func ratioWithPercent(v *float64, prec, pctPrec int) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.*f (%.*f%%)", prec, *v, pctPrec, *v*100)
}

func percent(v *float64, prec int) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", prec, *v*100)
}

func shorten(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

// FormatMetrics renders a metrics record as markdown.
func FormatMetrics(rec *models.MetricRecord) string {
	var sb strings.Builder
	r, t := rec.Risk, rec.Technical

	sb.WriteString(fmt.Sprintf("### Advanced Metrics for %s (%s timeframe)\n\n", rec.Symbol, rec.Timeframe))
	sb.WriteString(fmt.Sprintf("**Company:** %s | **Sector:** %s\n", rec.CompanyName, rec.Sector))
	sb.WriteString(fmt.Sprintf("**Calculated:** %s\n\n", rec.CalculatedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString("**Risk & Return**\n\n")
	sb.WriteString(fmt.Sprintf("- Beta: %s (market correlation)\n", num(r.Beta, 4)))
	sb.WriteString(fmt.Sprintf("- Volatility: %s\n", ratioWithPercent(r.Volatility, 4, 2)))
	sb.WriteString(fmt.Sprintf("- Sharpe Ratio: %s (risk-adjusted return)\n", num(r.SharpeRatio, 4)))
	sb.WriteString(fmt.Sprintf("- Sortino Ratio: %s (downside risk-adjusted)\n", num(r.SortinoRatio, 4)))
	sb.WriteString(fmt.Sprintf("- Max Drawdown: %s\n\n", ratioWithPercent(r.MaxDrawdown, 4, 2)))

	sb.WriteString("**Performance**\n\n")
	sb.WriteString(fmt.Sprintf("- Total Return: %s\n", ratioWithPercent(r.TotalReturn, 4, 2)))
	sb.WriteString(fmt.Sprintf("- Annualized Return: %s\n", ratioWithPercent(r.AnnualizedReturn, 4, 2)))
	sb.WriteString(fmt.Sprintf("- Momentum: %s\n", num(r.Momentum, 4)))
	sb.WriteString(fmt.Sprintf("- Win Rate: %s\n\n", ratioWithPercent(r.WinRate, 4, 1)))

	sb.WriteString("**Technical Indicators**\n\n")
	sb.WriteString(fmt.Sprintf("- RSI (14): %s | RSI (20): %s | RSI (30): %s\n", num(t.RSI14, 2), num(t.RSI20, 2), num(t.RSI30, 2)))
	sb.WriteString(fmt.Sprintf("- Bollinger Bands: upper %s | lower %s | position %s (0=lower band, 1=upper band)\n",
		num(t.BBUpper, 2), num(t.BBLower, 2), num(t.BBPosition, 4)))
	sb.WriteString(fmt.Sprintf("- MACD: %s | Signal: %s | Histogram: %s\n", num(t.MACD, 4), num(t.MACDSignal, 4), num(t.MACDHistogram, 4)))
	sb.WriteString(fmt.Sprintf("- ATR: %s | ATR%%: %s\n", num(t.ATR, 4), ratioWithPercent(t.ATRPercent, 4, 2)))

	return sb.String()
}

// FormatScreenResult renders screening rows as a markdown table.
func FormatScreenResult(result *models.ScreenResult) string {
	if len(result.Rows) == 0 {
		return "No stocks found matching the specified criteria"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Stock Screening Results (%s timeframe)\n\n", result.Query.Timeframe))
	sb.WriteString(fmt.Sprintf("Found %d stocks matching criteria\n\n", len(result.Rows)))
	sb.WriteString("| Symbol | Company | Sector | Sharpe | Vol% | Return% | RSI | Beta |\n")
	sb.WriteString("|---|---|---|---:|---:|---:|---:|---:|\n")
	for _, row := range result.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			row.Symbol,
			shorten(row.CompanyName, 25),
			shorten(row.Sector, 15),
			num(row.SharpeRatio, 2),
			percent(row.Volatility, 1),
			percent(row.TotalReturn, 1),
			num(row.RSI14, 0),
			num(row.Beta, 2),
		))
	}
	return sb.String()
}

// FormatFundamentals renders the combined report: technical section,
// fundamental section, then the perspective note.
func FormatFundamentals(report *models.FundamentalsReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Comprehensive Analysis for %s\n\n", report.Symbol))

	sb.WriteString("## Technical Analysis\n\n")
	if report.Technical != nil {
		sb.WriteString(FormatMetrics(report.Technical))
	} else {
		sb.WriteString("No technical data available\n")
	}

	sb.WriteString("\n## Fundamental Analysis\n\n")
	for _, n := range report.Notices {
		switch n.Kind {
		case models.NoticeNoDocuments, models.NoticeCorpusFallback, models.NoticeCompanyLookupFailed:
			sb.WriteString(fmt.Sprintf("> %s\n\n", n.Message))
		}
	}

	if len(report.Matches) > 0 {
		sb.WriteString(fmt.Sprintf("Found %d relevant document(s) for %s:\n\n", len(report.Matches), report.Symbol))
		for i, m := range report.Matches {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, m.Document.Name))
		}
		sb.WriteString("\n")
	}

	for _, doc := range report.Documents {
		writeDocumentSection(&sb, doc)
	}

	sb.WriteString("## Investment Perspective\n\n")
	sb.WriteString(perspectiveNote)
	sb.WriteString("\n")
	return sb.String()
}

func writeDocumentSection(sb *strings.Builder, doc models.DocumentSection) {
	sb.WriteString(fmt.Sprintf("### Document: %s\n\n", doc.Match.Document.Name))

	if doc.Err != "" {
		sb.WriteString(fmt.Sprintf("Error processing %s: %s\n\n", doc.Match.Document.Name, doc.Err))
		return
	}
	if len(doc.Snippets) == 0 && len(doc.Tables) == 0 {
		sb.WriteString("No financial highlights found in this document.\n\n")
		return
	}

	if len(doc.Snippets) > 0 {
		sb.WriteString("**Key Financial Insights**\n\n")
		for _, s := range doc.Snippets {
			sb.WriteString(fmt.Sprintf("- [Page %d] %s\n", s.Page, collapseSpace(s.Text)))
		}
		sb.WriteString("\n")
	}

	for _, t := range doc.Tables {
		sb.WriteString(fmt.Sprintf("**Table from Page %d**\n\n", t.Page))
		writeTable(sb, t.Rows)
		sb.WriteString("\n")
	}
}

// writeTable renders rows as a markdown table with the first row as header.
func writeTable(sb *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	cell := func(s string) string {
		return strings.ReplaceAll(s, "|", `\|`)
	}
	line := func(r []string) {
		parts := make([]string, len(r))
		for i, c := range r {
			parts[i] = cell(c)
		}
		sb.WriteString("| " + strings.Join(parts, " | ") + " |\n")
	}
	line(rows[0])
	sb.WriteString("|" + strings.Repeat("---|", len(rows[0])) + "\n")
	for _, r := range rows[1:] {
		line(r)
	}
}

// collapseSpace folds line breaks inside a paragraph so it stays one list item.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatRankDiagnostic explains which documents matched a symbol and why.
func FormatRankDiagnostic(result *models.RankResult, corpus []models.Document, companyName string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Document Search Results for %s\n\n", result.Symbol))

	if len(corpus) == 0 {
		sb.WriteString("No PDF documents found in the data directory.\n")
		sb.WriteString(fmt.Sprintf("Add documents with filenames containing '%s' for automatic matching.\n", result.Symbol))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**All available documents (%d):**\n\n", len(corpus)))
	for i, d := range corpus {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, d.Name))
	}

	sb.WriteString(fmt.Sprintf("\n**Documents matched for %s (%d):**\n\n", result.Symbol, len(result.Matches)))
	if result.Fallback {
		sb.WriteString("_No filename matched; showing the whole corpus ranked by recency._\n\n")
	}
	for i, m := range result.Matches {
		sb.WriteString(fmt.Sprintf("%d. %s (score %.2f, via %s)", i+1, m.Document.Name, m.Score, m.Via))
		if len(m.Reasons) > 0 {
			sb.WriteString(" -> " + strings.Join(m.Reasons, ", "))
		}
		sb.WriteString("\n")
	}
	for _, n := range result.Notices {
		if n.Kind == models.NoticeCompanyLookupFailed {
			sb.WriteString(fmt.Sprintf("\n> %s\n", n.Message))
		}
	}

	if companyName != "" {
		sb.WriteString("\n**Company Info:**\n\n")
		sb.WriteString(fmt.Sprintf("- Symbol: %s\n- Name: %s\n", result.Symbol, companyName))
		if words := CompanyWords(companyName); len(words) > 0 {
			sb.WriteString("\n**Document Naming Suggestions:**\n\n")
			sb.WriteString(fmt.Sprintf("- Best: %s_Transcript.pdf, %s_Annual_Report.pdf\n", result.Symbol, result.Symbol))
			sb.WriteString(fmt.Sprintf("- Also works: %s_Earnings.pdf, %s_Results.pdf\n", words[0], result.Symbol))
		}
	}
	return sb.String()
}
