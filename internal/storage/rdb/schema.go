package rdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/models"
)

// schemaSQL mirrors the production stock database. It is applied only to
// SQLite databases used for development and tests; Postgres and MySQL
// schemas are owned by the pipeline that loads the data.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS "Stock" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"symbol" TEXT NOT NULL UNIQUE,
	"companyName" TEXT NOT NULL DEFAULT '',
	"sector" TEXT NOT NULL DEFAULT '',
	"instrumentToken" TEXT
);

CREATE TABLE IF NOT EXISTS "PriceHistory" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"stockId" INTEGER NOT NULL REFERENCES "Stock"("id"),
	"date" DATE NOT NULL,
	"open" REAL NOT NULL,
	"high" REAL NOT NULL,
	"low" REAL NOT NULL,
	"close" REAL NOT NULL,
	"volume" INTEGER NOT NULL DEFAULT 0,
	"rsi30" REAL,
	"rsi20" REAL
);
CREATE INDEX IF NOT EXISTS "idx_price_stock_date" ON "PriceHistory"("stockId", "date");

CREATE TABLE IF NOT EXISTS "WeeklyPriceHistory" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"stockId" INTEGER NOT NULL REFERENCES "Stock"("id"),
	"weekEnding" DATE NOT NULL,
	"open" REAL NOT NULL,
	"high" REAL NOT NULL,
	"low" REAL NOT NULL,
	"close" REAL NOT NULL,
	"volume" INTEGER
);

CREATE TABLE IF NOT EXISTS "WeeklyStockMetrics" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"stockId" INTEGER NOT NULL REFERENCES "Stock"("id"),
	"weekEnding" DATE NOT NULL,
	"sma_20" REAL,
	"sma_50" REAL,
	"sma_100" REAL,
	"sma_200" REAL
);

CREATE TABLE IF NOT EXISTS "AdvancedStockMetrics" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"stockId" INTEGER NOT NULL REFERENCES "Stock"("id"),
	"calculatedAt" DATETIME NOT NULL,
%s
	"rsi_14" REAL,
	"rsi_20" REAL,
	"rsi_30" REAL,
	"bb_upper" REAL,
	"bb_lower" REAL,
	"bb_position" REAL,
	"macd" REAL,
	"macd_signal" REAL,
	"macd_histogram" REAL,
	"atr" REAL,
	"atr_percent" REAL
);
CREATE INDEX IF NOT EXISTS "idx_metrics_stock_calculated" ON "AdvancedStockMetrics"("stockId", "calculatedAt");
`

// ApplySchema creates the stock tables if they do not exist.
func (s *DB) ApplySchema(ctx context.Context) error {
	if s.dialect.name != "sqlite" {
		return fmt.Errorf("apply_schema is only supported for sqlite, not %s", s.dialect.name)
	}

	var family strings.Builder
	for _, tf := range models.Timeframes {
		cols, err := columnsFor(tf)
		if err != nil {
			return err
		}
		for _, c := range []string{cols.Beta, cols.Volatility, cols.Sharpe, cols.Sortino, cols.MaxDrawdown,
			cols.TotalReturn, cols.AnnualizedReturn, cols.Momentum, cols.WinRate} {
			fmt.Fprintf(&family, "\t%q REAL,\n", c)
		}
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(schemaSQL, strings.TrimSuffix(family.String(), "\n"))); err != nil {
		return common.NewSourceError(sourceName, "apply schema", err)
	}
	s.logger.Debug().Msg("Stock schema applied")
	return nil
}
