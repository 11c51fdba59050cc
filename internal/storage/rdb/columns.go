package rdb

import (
	"fmt"

	"github.com/ternarybob/stockmcp/internal/models"
)

// riskColumns maps each timeframe to the physical columns of its metric family
// in AdvancedStockMetrics. These are the only column names that vary with
// caller input, and they are selected from this table, never built from it.
type riskColumns struct {
	Beta             string
	Volatility       string
	Sharpe           string
	Sortino          string
	MaxDrawdown      string
	TotalReturn      string
	AnnualizedReturn string
	Momentum         string
	WinRate          string
}

var timeframeColumns = map[models.Timeframe]riskColumns{
	models.TimeframeShort: {
		Beta:             "beta_short",
		Volatility:       "volatility_short",
		Sharpe:           "sharpe_short",
		Sortino:          "sortino_ratio_short",
		MaxDrawdown:      "max_drawdown_short",
		TotalReturn:      "total_return_short",
		AnnualizedReturn: "annualized_return_short",
		Momentum:         "momentum_short",
		WinRate:          "win_rate_short",
	},
	models.TimeframeMedium: {
		Beta:             "beta_medium",
		Volatility:       "volatility_medium",
		Sharpe:           "sharpe_medium",
		Sortino:          "sortino_ratio_medium",
		MaxDrawdown:      "max_drawdown_medium",
		TotalReturn:      "total_return_medium",
		AnnualizedReturn: "annualized_return_medium",
		Momentum:         "momentum_medium",
		WinRate:          "win_rate_medium",
	},
	models.TimeframeLong: {
		Beta:             "beta_long",
		Volatility:       "volatility_long",
		Sharpe:           "sharpe_long",
		Sortino:          "sortino_ratio_long",
		MaxDrawdown:      "max_drawdown_long",
		TotalReturn:      "total_return_long",
		AnnualizedReturn: "annualized_return_long",
		Momentum:         "momentum_long",
		WinRate:          "win_rate_long",
	},
}

func columnsFor(tf models.Timeframe) (riskColumns, error) {
	cols, ok := timeframeColumns[tf]
	if !ok {
		return riskColumns{}, fmt.Errorf("no columns for timeframe %q", tf)
	}
	return cols, nil
}

// fieldColumn resolves a screenable field to a qualified column reference.
func fieldColumn(field models.MetricField, cols riskColumns) (string, error) {
	switch field {
	case models.FieldSymbol:
		return `s."symbol"`, nil
	case models.FieldSector:
		return `s."sector"`, nil
	case models.FieldSharpe:
		return `m."` + cols.Sharpe + `"`, nil
	case models.FieldVolatility:
		return `m."` + cols.Volatility + `"`, nil
	case models.FieldRSI14:
		return `m."rsi_14"`, nil
	default:
		return "", fmt.Errorf("unknown screening field %q", field)
	}
}
