package rdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
)

// MaxPriceBars caps a price history lookup.
const MaxPriceBars = 100

// StockStore serves plain lookups over Stock and the price tables.
type StockStore struct {
	db     *DB
	logger arbor.ILogger
}

var _ interfaces.StockStore = (*StockStore)(nil)

// NewStockStore creates a stock store over an open connection
func NewStockStore(db *DB, logger arbor.ILogger) *StockStore {
	return &StockStore{db: db, logger: logger}
}

const stockInfoSQL = `
SELECT s."symbol", s."companyName" AS "company_name", s."sector", s."instrumentToken" AS "instrument_token",
	COUNT(p."id") AS "record_count", MIN(p."date") AS "first_date", MAX(p."date") AS "last_date",
	MIN(p."close") AS "min_price", MAX(p."close") AS "max_price", AVG(p."volume") AS "avg_volume"
FROM "Stock" s
LEFT JOIN "PriceHistory" p ON p."stockId" = s."id"
WHERE s."symbol" = ?
GROUP BY s."id", s."symbol", s."companyName", s."sector", s."instrumentToken"`

// GetStockInfo returns the stock with a summary of its daily history, or nil
// when the symbol is unknown.
func (s *StockStore) GetStockInfo(ctx context.Context, symbol string) (*models.StockInfo, error) {
	var row stockInfoRow
	err := s.db.get(ctx, &row, stockInfoSQL, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewSourceError(sourceName, "stock info", err)
	}
	return row.model(), nil
}

const dailyBarsSQL = `
SELECT p."date", p."open", p."high", p."low", p."close", p."volume",
	p."rsi30" AS "rsi_30", p."rsi20" AS "rsi_20"
FROM "Stock" s
JOIN "PriceHistory" p ON p."stockId" = s."id"
WHERE s."symbol" = ?`

const weeklyBarsSQL = `
SELECT w."weekEnding" AS "date", w."open", w."high", w."low", w."close", w."volume",
	wm."sma_20", wm."sma_50", wm."sma_100", wm."sma_200"
FROM "Stock" s
JOIN "WeeklyPriceHistory" w ON w."stockId" = s."id"
LEFT JOIN "WeeklyStockMetrics" wm ON wm."stockId" = s."id" AND wm."weekEnding" = w."weekEnding"
WHERE s."symbol" = ?`

// GetPriceHistory returns up to MaxPriceBars bars, newest first.
func (s *StockStore) GetPriceHistory(ctx context.Context, q models.PriceHistoryQuery) ([]models.PriceBar, error) {
	base, dateCol := dailyBarsSQL, `p."date"`
	if q.Period == models.PeriodWeekly {
		base, dateCol = weeklyBarsSQL, `w."weekEnding"`
	}

	var b strings.Builder
	b.WriteString(base)
	args := []interface{}{q.Symbol}
	if !q.Start.IsZero() {
		b.WriteString("\n\tAND " + dateCol + " >= ?")
		args = append(args, s.db.dialect.dateArg(q.Start))
	}
	if !q.End.IsZero() {
		b.WriteString("\n\tAND " + dateCol + " <= ?")
		args = append(args, s.db.dialect.dateArg(q.End))
	}
	b.WriteString("\nORDER BY " + dateCol + " DESC\nLIMIT ?")

	limit := q.Limit
	if limit <= 0 || limit > MaxPriceBars {
		limit = MaxPriceBars
	}
	args = append(args, limit)

	var rows []barRow
	if err := s.db.selectAll(ctx, &rows, b.String(), args...); err != nil {
		return nil, common.NewSourceError(sourceName, "price history", err)
	}

	bars := make([]models.PriceBar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, row.model())
	}
	return bars, nil
}

// SearchStocks matches symbol or company name by substring, ordered by symbol.
func (s *StockStore) SearchStocks(ctx context.Context, pattern string, limit int) ([]models.StockMatch, error) {
	like := "%" + escapeLike(pattern) + "%"
	var rows []stockMatchRow
	err := s.db.selectAll(ctx, &rows, `
SELECT "symbol", "companyName" AS "company_name", "sector"
FROM "Stock"
WHERE UPPER("symbol") LIKE UPPER(?) ESCAPE '!' OR UPPER("companyName") LIKE UPPER(?) ESCAPE '!'
ORDER BY "symbol"
LIMIT ?`, like, like, limit)
	if err != nil {
		return nil, common.NewSourceError(sourceName, "search", err)
	}

	matches := make([]models.StockMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, row.model())
	}
	return matches, nil
}

// escapeLike neutralises LIKE wildcards in user input using '!' as escape.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
