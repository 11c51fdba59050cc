package rdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
)

// MetricStore reads AdvancedStockMetrics. It never writes.
type MetricStore struct {
	db     *DB
	logger arbor.ILogger
}

var _ interfaces.MetricStore = (*MetricStore)(nil)

// NewMetricStore creates a metric store over an open connection
func NewMetricStore(db *DB, logger arbor.ILogger) *MetricStore {
	return &MetricStore{db: db, logger: logger}
}

var ops = map[models.Op]string{
	models.OpEq:  "=",
	models.OpGte: ">=",
	models.OpLte: "<=",
}

const latestMetricsSQL = `
SELECT s."symbol", s."companyName" AS "company_name", s."sector", m."calculatedAt" AS "calculated_at",
	m."%s" AS "beta", m."%s" AS "volatility", m."%s" AS "sharpe_ratio",
	m."%s" AS "sortino_ratio", m."%s" AS "max_drawdown", m."%s" AS "total_return",
	m."%s" AS "annualized_return", m."%s" AS "momentum", m."%s" AS "win_rate",
	m."rsi_14", m."rsi_20", m."rsi_30", m."bb_upper", m."bb_lower", m."bb_position",
	m."macd", m."macd_signal", m."macd_histogram", m."atr", m."atr_percent"
FROM "Stock" s
JOIN "AdvancedStockMetrics" m ON m."stockId" = s."id"
WHERE s."symbol" = ?
ORDER BY m."calculatedAt" DESC
LIMIT 1`

// GetLatestMetrics returns the newest metrics row for symbol projected onto tf.
func (s *MetricStore) GetLatestMetrics(ctx context.Context, symbol string, tf models.Timeframe) (*models.MetricRecord, error) {
	cols, err := columnsFor(tf)
	if err != nil {
		return nil, common.NewValidationError("timeframe", err.Error())
	}

	query := fmt.Sprintf(latestMetricsSQL,
		cols.Beta, cols.Volatility, cols.Sharpe, cols.Sortino, cols.MaxDrawdown,
		cols.TotalReturn, cols.AnnualizedReturn, cols.Momentum, cols.WinRate)

	var row metricRow
	err = s.db.get(ctx, &row, query, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewSourceError(sourceName, "latest metrics", err)
	}
	return row.record(tf), nil
}

// GetCompanyName resolves a symbol to its company name.
func (s *MetricStore) GetCompanyName(ctx context.Context, symbol string) (string, bool, error) {
	var name *string
	err := s.db.get(ctx, &name, `SELECT "companyName" FROM "Stock" WHERE "symbol" = ?`, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, common.NewSourceError(sourceName, "company name", err)
	}
	return deref(name), true, nil
}

const screenSelectSQL = `
SELECT s."symbol", s."companyName" AS "company_name", s."sector",
	m."%s" AS "sharpe_ratio", m."%s" AS "volatility", m."%s" AS "total_return",
	m."%s" AS "beta", m."%s" AS "max_drawdown", m."rsi_14"
FROM "Stock" s
JOIN "AdvancedStockMetrics" m ON m."stockId" = s."id"
WHERE m."calculatedAt" = (
	SELECT MAX(l."calculatedAt") FROM "AdvancedStockMetrics" l WHERE l."stockId" = s."id"
)`

// Screen runs a compiled query against the latest metrics row of each stock.
// Rows with a NULL order key sort after all non-NULL rows.
func (s *MetricStore) Screen(ctx context.Context, q *models.ScreenQuery) ([]models.ScreenRow, error) {
	query, args, err := s.buildScreenSQL(q)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("timeframe", q.Timeframe.String()).
		Int("predicates", len(q.Predicates)).
		Int("limit", q.Limit).
		Msg("Executing screen query")

	var rows []screenRow
	if err := s.db.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, common.NewSourceError(sourceName, "screen", err)
	}

	results := make([]models.ScreenRow, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.model())
	}
	return results, nil
}

// buildScreenSQL renders the canonical SQL for a screen query. Every
// identifier comes from the static column tables; every value is a bound
// argument.
func (s *MetricStore) buildScreenSQL(q *models.ScreenQuery) (string, []interface{}, error) {
	if q == nil {
		return "", nil, common.NewValidationError("query", "screen query is required")
	}
	cols, err := columnsFor(q.Timeframe)
	if err != nil {
		return "", nil, common.NewValidationError("timeframe", err.Error())
	}
	if q.Limit <= 0 {
		return "", nil, common.NewValidationError("limit", "limit must be positive")
	}

	var b strings.Builder
	fmt.Fprintf(&b, screenSelectSQL, cols.Sharpe, cols.Volatility, cols.TotalReturn, cols.Beta, cols.MaxDrawdown)

	args := make([]interface{}, 0, len(q.Predicates)+1)
	for _, p := range q.Predicates {
		col, err := fieldColumn(p.Field, cols)
		if err != nil {
			return "", nil, common.NewValidationError("predicate", err.Error())
		}
		op, ok := ops[p.Op]
		if !ok {
			return "", nil, common.NewValidationError("predicate", fmt.Sprintf("unknown operator %q", p.Op))
		}
		fmt.Fprintf(&b, "\n\tAND %s %s ?", col, op)
		if p.Field == models.FieldSector || p.Field == models.FieldSymbol {
			args = append(args, p.Text)
		} else {
			args = append(args, p.Number)
		}
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, 0, len(q.OrderBy)*2)
		for _, o := range q.OrderBy {
			col, err := fieldColumn(o.Field, cols)
			if err != nil {
				return "", nil, common.NewValidationError("order_by", err.Error())
			}
			dir := "ASC"
			if o.Descending {
				dir = "DESC"
			}
			if o.Field != models.FieldSymbol && o.Field != models.FieldSector {
				terms = append(terms, fmt.Sprintf("(%s IS NULL)", col))
			}
			terms = append(terms, col+" "+dir)
		}
		b.WriteString("\nORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	b.WriteString("\nLIMIT ?")
	args = append(args, q.Limit)

	return b.String(), args, nil
}
