package models

import "time"

// RiskMetrics is one timeframe's slice of the risk/return family. Any value may
// be absent in the store.
type RiskMetrics struct {
	Beta             *float64 `json:"beta,omitempty"`
	Volatility       *float64 `json:"volatility,omitempty"`
	SharpeRatio      *float64 `json:"sharpe_ratio,omitempty"`
	SortinoRatio     *float64 `json:"sortino_ratio,omitempty"`
	MaxDrawdown      *float64 `json:"max_drawdown,omitempty"`
	TotalReturn      *float64 `json:"total_return,omitempty"`
	AnnualizedReturn *float64 `json:"annualized_return,omitempty"`
	Momentum         *float64 `json:"momentum,omitempty"`
	WinRate          *float64 `json:"win_rate,omitempty"`
}

// TechnicalIndicators are timeframe-independent.
type TechnicalIndicators struct {
	RSI14         *float64 `json:"rsi_14,omitempty"`
	RSI20         *float64 `json:"rsi_20,omitempty"`
	RSI30         *float64 `json:"rsi_30,omitempty"`
	BBUpper       *float64 `json:"bb_upper,omitempty"`
	BBLower       *float64 `json:"bb_lower,omitempty"`
	BBPosition    *float64 `json:"bb_position,omitempty"`
	MACD          *float64 `json:"macd,omitempty"`
	MACDSignal    *float64 `json:"macd_signal,omitempty"`
	MACDHistogram *float64 `json:"macd_histogram,omitempty"`
	ATR           *float64 `json:"atr,omitempty"`
	ATRPercent    *float64 `json:"atr_percent,omitempty"`
}

// MetricRecord is the latest metrics row of one stock projected onto a single timeframe.
type MetricRecord struct {
	Symbol       string              `json:"symbol"`
	CompanyName  string              `json:"company_name"`
	Sector       string              `json:"sector"`
	CalculatedAt time.Time           `json:"calculated_at"`
	Timeframe    Timeframe           `json:"timeframe"`
	Risk         RiskMetrics         `json:"risk"`
	Technical    TechnicalIndicators `json:"technical"`
}

// Float returns a pointer to v; convenience for building records in code and tests.
func Float(v float64) *float64 {
	return &v
}
