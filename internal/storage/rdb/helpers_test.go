package rdb

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
)

// setupTestDB opens a fresh SQLite database with the stock schema applied.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	config := &common.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "stocks.db"),
		MaxOpenConns: 1,
		ApplySchema:  true,
	}

	db, err := Open(context.Background(), arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertStock(t *testing.T, db *DB, symbol, company, sector string) int64 {
	t.Helper()
	res, err := db.SQL().Exec(`INSERT INTO "Stock" ("symbol", "companyName", "sector") VALUES (?, ?, ?)`, symbol, company, sector)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// insertMetrics writes one AdvancedStockMetrics row; values are keyed by column name.
func insertMetrics(t *testing.T, db *DB, stockID int64, calculatedAt string, values map[string]interface{}) {
	t.Helper()

	cols := []string{`"stockId"`, `"calculatedAt"`}
	args := []interface{}{stockID, calculatedAt}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cols = append(cols, fmt.Sprintf("%q", k))
		args = append(args, values[k])
	}

	query := fmt.Sprintf(`INSERT INTO "AdvancedStockMetrics" (%s) VALUES (%s)`,
		strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	_, err := db.SQL().Exec(query, args...)
	require.NoError(t, err)
}

func insertDailyBar(t *testing.T, db *DB, stockID int64, date string, closePrice float64, volume int64, rsi30 interface{}) {
	t.Helper()
	_, err := db.SQL().Exec(`INSERT INTO "PriceHistory" ("stockId", "date", "open", "high", "low", "close", "volume", "rsi30")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, stockID, date, closePrice-1, closePrice+2, closePrice-2, closePrice, volume, rsi30)
	require.NoError(t, err)
}
