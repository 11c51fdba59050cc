package interfaces

import (
	"context"

	"github.com/ternarybob/stockmcp/internal/models"
)

// MetricStore is the read-only view of the metrics database used by the
// analysis engine. Failures to reach the store wrap common.ErrSourceUnavailable.
type MetricStore interface {
	// GetLatestMetrics returns the most recent metrics row for symbol projected
	// onto tf, or (nil, nil) when the symbol has no metrics.
	GetLatestMetrics(ctx context.Context, symbol string, tf models.Timeframe) (*models.MetricRecord, error)

	// GetCompanyName resolves a symbol to its company name. found is false for
	// unknown symbols.
	GetCompanyName(ctx context.Context, symbol string) (name string, found bool, err error)

	// Screen executes a compiled screening query against the latest metrics row
	// of every stock.
	Screen(ctx context.Context, query *models.ScreenQuery) ([]models.ScreenRow, error)
}

// StockStore serves the plain lookups over the stock and price tables.
type StockStore interface {
	// GetStockInfo returns (nil, nil) when the symbol is unknown.
	GetStockInfo(ctx context.Context, symbol string) (*models.StockInfo, error)
	GetPriceHistory(ctx context.Context, query models.PriceHistoryQuery) ([]models.PriceBar, error)
	SearchStocks(ctx context.Context, pattern string, limit int) ([]models.StockMatch, error)
}
