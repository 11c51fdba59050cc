package models

import "time"

// StockInfo summarises a stock and its daily price history.
type StockInfo struct {
	Symbol          string     `json:"symbol"`
	CompanyName     string     `json:"company_name"`
	Sector          string     `json:"sector"`
	InstrumentToken string     `json:"instrument_token,omitempty"`
	RecordCount     int        `json:"record_count"`
	FirstDate       *time.Time `json:"first_date,omitempty"`
	LastDate        *time.Time `json:"last_date,omitempty"`
	MinPrice        *float64   `json:"min_price,omitempty"`
	MaxPrice        *float64   `json:"max_price,omitempty"`
	AvgVolume       *float64   `json:"avg_volume,omitempty"`
}

// PricePeriod selects daily or weekly bars.
type PricePeriod string

const (
	PeriodDaily  PricePeriod = "daily"
	PeriodWeekly PricePeriod = "weekly"
)

// PriceHistoryQuery bounds a price history lookup. Zero dates are open ends.
type PriceHistoryQuery struct {
	Symbol string
	Period PricePeriod
	Start  time.Time
	End    time.Time
	Limit  int
}

// PriceBar is one OHLCV bar. RSI fields are present on daily bars, SMA fields
// on weekly bars.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	RSI30  *float64  `json:"rsi_30,omitempty"`
	RSI20  *float64  `json:"rsi_20,omitempty"`
	SMA20  *float64  `json:"sma_20,omitempty"`
	SMA50  *float64  `json:"sma_50,omitempty"`
	SMA100 *float64  `json:"sma_100,omitempty"`
	SMA200 *float64  `json:"sma_200,omitempty"`
}

// StockMatch is a search hit.
type StockMatch struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
}
