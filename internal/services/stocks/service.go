// -----------------------------------------------------------------------
// Stock lookups - stock info, price history, search and advanced metrics
// -----------------------------------------------------------------------

package stocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
	"github.com/ternarybob/stockmcp/internal/services/analysis"
)

const (
	dateLayout         = "2006-01-02"
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

// Service renders the plain lookups over the stock tables.
type Service struct {
	stocks  interfaces.StockStore
	metrics interfaces.MetricStore
	logger  arbor.ILogger
}

func NewService(stocks interfaces.StockStore, metrics interfaces.MetricStore, logger arbor.ILogger) *Service {
	return &Service{stocks: stocks, metrics: metrics, logger: logger}
}

// StockInfo summarises a stock and its daily price history.
func (s *Service) StockInfo(ctx context.Context, symbol string) (string, error) {
	sym, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}

	info, err := s.stocks.GetStockInfo(ctx, sym)
	if err != nil {
		return "", err
	}
	if info == nil {
		return fmt.Sprintf("No data found for stock symbol: %s", sym), nil
	}

	var sb strings.Builder
	if info.RecordCount == 0 {
		sb.WriteString("Stock found but no price history:\n")
		sb.WriteString(fmt.Sprintf("- Company: %s\n", info.CompanyName))
		sb.WriteString(fmt.Sprintf("- Sector: %s\n", info.Sector))
		sb.WriteString(fmt.Sprintf("- Symbol: %s\n", info.Symbol))
		return sb.String(), nil
	}

	token := info.InstrumentToken
	if token == "" {
		token = "N/A"
	}
	sb.WriteString(fmt.Sprintf("Stock Information for %s:\n", info.Symbol))
	sb.WriteString(fmt.Sprintf("- Company: %s\n", info.CompanyName))
	sb.WriteString(fmt.Sprintf("- Sector: %s\n", info.Sector))
	sb.WriteString(fmt.Sprintf("- Total Price Records: %d\n", info.RecordCount))
	sb.WriteString(fmt.Sprintf("- Data Range: %s to %s\n", formatDate(info.FirstDate), formatDate(info.LastDate)))
	sb.WriteString(fmt.Sprintf("- Price Range: %s - %s\n", formatPrice(info.MinPrice), formatPrice(info.MaxPrice)))
	sb.WriteString(fmt.Sprintf("- Average Volume: %s\n", formatVolume(info.AvgVolume)))
	sb.WriteString(fmt.Sprintf("- Instrument Token: %s\n", token))
	return sb.String(), nil
}

// ParsePeriod resolves "daily" (default) or "weekly".
func ParsePeriod(s string) (models.PricePeriod, error) {
	switch p := models.PricePeriod(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return models.PeriodDaily, nil
	case models.PeriodDaily, models.PeriodWeekly:
		return p, nil
	default:
		return "", common.NewValidationError("period", "period must be daily or weekly; got "+s)
	}
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, common.NewValidationError(field, "expected YYYY-MM-DD, got "+s)
	}
	return t, nil
}

// PriceHistory renders up to 100 bars, newest first.
func (s *Service) PriceHistory(ctx context.Context, symbol, period, startDate, endDate string) (string, error) {
	sym, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return "", err
	}
	start, err := parseDate("start_date", startDate)
	if err != nil {
		return "", err
	}
	end, err := parseDate("end_date", endDate)
	if err != nil {
		return "", err
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return "", common.NewValidationError("start_date", "start_date must not be after end_date")
	}

	bars, err := s.stocks.GetPriceHistory(ctx, models.PriceHistoryQuery{Symbol: sym, Period: p, Start: start, End: end})
	if err != nil {
		return "", err
	}
	if len(bars) == 0 {
		return fmt.Sprintf("No %s price data found for %s", p, sym), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Price History for %s (%s):\n\n", sym, p))
	if p == models.PeriodWeekly {
		sb.WriteString("| Week Ending | Open | High | Low | Close | Volume | SMA20 | SMA50 | SMA100 | SMA200 |\n")
		sb.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, b := range bars {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f | %d | %s | %s | %s | %s |\n",
				b.Date.Format(dateLayout), b.Open, b.High, b.Low, b.Close, b.Volume,
				optional(b.SMA20), optional(b.SMA50), optional(b.SMA100), optional(b.SMA200)))
		}
		return sb.String(), nil
	}

	sb.WriteString("| Date | Open | High | Low | Close | Volume | RSI30 | RSI20 |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, b := range bars {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f | %d | %s | %s |\n",
			b.Date.Format(dateLayout), b.Open, b.High, b.Low, b.Close, b.Volume,
			optional(b.RSI30), optional(b.RSI20)))
	}
	return sb.String(), nil
}

// Search finds stocks whose symbol or company name contains pattern.
func (s *Service) Search(ctx context.Context, pattern string, limit int) (string, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "", common.NewValidationError("pattern", "pattern is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	matches, err := s.stocks.SearchStocks(ctx, pattern, limit)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No stocks found matching pattern: %s", pattern), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d stocks matching '%s':\n\n", len(matches), pattern))
	sb.WriteString("| Symbol | Company Name | Sector |\n|---|---|---|\n")
	for _, m := range matches {
		company := m.CompanyName
		if r := []rune(company); len(r) > 35 {
			company = string(r[:35]) + "..."
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", m.Symbol, company, m.Sector))
	}
	return sb.String(), nil
}

// AdvancedMetrics renders the latest metrics row for one timeframe.
func (s *Service) AdvancedMetrics(ctx context.Context, symbol, timeframe string) (string, error) {
	sym, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}
	tf, err := models.ParseTimeframe(timeframe)
	if err != nil {
		return "", err
	}

	rec, err := s.metrics.GetLatestMetrics(ctx, sym, tf)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return fmt.Sprintf("No advanced metrics found for %s", sym), nil
	}
	return analysis.FormatMetrics(rec), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(dateLayout)
}

func formatPrice(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func optional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

// formatVolume renders a rounded volume with thousands separators.
func formatVolume(v *float64) string {
	if v == nil {
		return "N/A"
	}
	digits := fmt.Sprintf("%d", int64(*v+0.5))
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return string(out)
}
