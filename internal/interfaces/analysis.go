package interfaces

import (
	"context"

	"github.com/ternarybob/stockmcp/internal/models"
)

// DocumentRanker infers which corpus documents pertain to a stock.
type DocumentRanker interface {
	Rank(ctx context.Context, symbol, pattern string) (*models.RankResult, error)
}

// StockScreener compiles and runs screening criteria.
type StockScreener interface {
	Compile(criteria models.Criteria) (*models.ScreenQuery, error)
	Screen(ctx context.Context, criteria models.Criteria) (*models.ScreenResult, error)
}

// FundamentalsAggregator builds the combined technical and document report.
type FundamentalsAggregator interface {
	Aggregate(ctx context.Context, symbol, pattern string) (*models.FundamentalsReport, error)
}
