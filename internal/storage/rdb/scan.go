package rdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/stockmcp/internal/models"
)

// dbTime scans DATE/DATETIME columns that drivers may hand back as
// time.Time, string or []byte depending on dialect and column affinity.
type dbTime struct {
	Time  time.Time
	Valid bool
}

var dbTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *dbTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into time", value)
	}
}

func (t *dbTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time, t.Valid = time.Time{}, false
		return nil
	}
	for _, layout := range dbTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("unrecognised time value %q", s)
}

func (t dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Row types mirror the column aliases of the queries that fill them.
// Nullable columns scan into pointers.

type metricRow struct {
	Symbol           string   `db:"symbol"`
	CompanyName      *string  `db:"company_name"`
	Sector           *string  `db:"sector"`
	CalculatedAt     dbTime   `db:"calculated_at"`
	Beta             *float64 `db:"beta"`
	Volatility       *float64 `db:"volatility"`
	SharpeRatio      *float64 `db:"sharpe_ratio"`
	SortinoRatio     *float64 `db:"sortino_ratio"`
	MaxDrawdown      *float64 `db:"max_drawdown"`
	TotalReturn      *float64 `db:"total_return"`
	AnnualizedReturn *float64 `db:"annualized_return"`
	Momentum         *float64 `db:"momentum"`
	WinRate          *float64 `db:"win_rate"`
	RSI14            *float64 `db:"rsi_14"`
	RSI20            *float64 `db:"rsi_20"`
	RSI30            *float64 `db:"rsi_30"`
	BBUpper          *float64 `db:"bb_upper"`
	BBLower          *float64 `db:"bb_lower"`
	BBPosition       *float64 `db:"bb_position"`
	MACD             *float64 `db:"macd"`
	MACDSignal       *float64 `db:"macd_signal"`
	MACDHistogram    *float64 `db:"macd_histogram"`
	ATR              *float64 `db:"atr"`
	ATRPercent       *float64 `db:"atr_percent"`
}

func (r metricRow) record(tf models.Timeframe) *models.MetricRecord {
	return &models.MetricRecord{
		Symbol:       r.Symbol,
		CompanyName:  deref(r.CompanyName),
		Sector:       deref(r.Sector),
		Timeframe:    tf,
		CalculatedAt: r.CalculatedAt.Time,
		Risk: models.RiskMetrics{
			Beta:             r.Beta,
			Volatility:       r.Volatility,
			SharpeRatio:      r.SharpeRatio,
			SortinoRatio:     r.SortinoRatio,
			MaxDrawdown:      r.MaxDrawdown,
			TotalReturn:      r.TotalReturn,
			AnnualizedReturn: r.AnnualizedReturn,
			Momentum:         r.Momentum,
			WinRate:          r.WinRate,
		},
		Technical: models.TechnicalIndicators{
			RSI14:         r.RSI14,
			RSI20:         r.RSI20,
			RSI30:         r.RSI30,
			BBUpper:       r.BBUpper,
			BBLower:       r.BBLower,
			BBPosition:    r.BBPosition,
			MACD:          r.MACD,
			MACDSignal:    r.MACDSignal,
			MACDHistogram: r.MACDHistogram,
			ATR:           r.ATR,
			ATRPercent:    r.ATRPercent,
		},
	}
}

type screenRow struct {
	Symbol      string   `db:"symbol"`
	CompanyName *string  `db:"company_name"`
	Sector      *string  `db:"sector"`
	SharpeRatio *float64 `db:"sharpe_ratio"`
	Volatility  *float64 `db:"volatility"`
	TotalReturn *float64 `db:"total_return"`
	Beta        *float64 `db:"beta"`
	MaxDrawdown *float64 `db:"max_drawdown"`
	RSI14       *float64 `db:"rsi_14"`
}

func (r screenRow) model() models.ScreenRow {
	return models.ScreenRow{
		Symbol:      r.Symbol,
		CompanyName: deref(r.CompanyName),
		Sector:      deref(r.Sector),
		SharpeRatio: r.SharpeRatio,
		Volatility:  r.Volatility,
		TotalReturn: r.TotalReturn,
		Beta:        r.Beta,
		MaxDrawdown: r.MaxDrawdown,
		RSI14:       r.RSI14,
	}
}

type stockInfoRow struct {
	Symbol          string   `db:"symbol"`
	CompanyName     *string  `db:"company_name"`
	Sector          *string  `db:"sector"`
	InstrumentToken *string  `db:"instrument_token"`
	RecordCount     int64    `db:"record_count"`
	FirstDate       dbTime   `db:"first_date"`
	LastDate        dbTime   `db:"last_date"`
	MinPrice        *float64 `db:"min_price"`
	MaxPrice        *float64 `db:"max_price"`
	AvgVolume       *float64 `db:"avg_volume"`
}

func (r stockInfoRow) model() *models.StockInfo {
	return &models.StockInfo{
		Symbol:          r.Symbol,
		CompanyName:     deref(r.CompanyName),
		Sector:          deref(r.Sector),
		InstrumentToken: deref(r.InstrumentToken),
		RecordCount:     int(r.RecordCount),
		FirstDate:       r.FirstDate.ptr(),
		LastDate:        r.LastDate.ptr(),
		MinPrice:        r.MinPrice,
		MaxPrice:        r.MaxPrice,
		AvgVolume:       r.AvgVolume,
	}
}

// barRow serves both periods; the indicator columns a period does not select
// stay nil.
type barRow struct {
	Date   dbTime   `db:"date"`
	Open   float64  `db:"open"`
	High   float64  `db:"high"`
	Low    float64  `db:"low"`
	Close  float64  `db:"close"`
	Volume *int64   `db:"volume"`
	RSI30  *float64 `db:"rsi_30"`
	RSI20  *float64 `db:"rsi_20"`
	SMA20  *float64 `db:"sma_20"`
	SMA50  *float64 `db:"sma_50"`
	SMA100 *float64 `db:"sma_100"`
	SMA200 *float64 `db:"sma_200"`
}

func (r barRow) model() models.PriceBar {
	bar := models.PriceBar{
		Date:   r.Date.Time,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		RSI30:  r.RSI30,
		RSI20:  r.RSI20,
		SMA20:  r.SMA20,
		SMA50:  r.SMA50,
		SMA100: r.SMA100,
		SMA200: r.SMA200,
	}
	if r.Volume != nil {
		bar.Volume = *r.Volume
	}
	return bar
}

type stockMatchRow struct {
	Symbol      string  `db:"symbol"`
	CompanyName *string `db:"company_name"`
	Sector      *string `db:"sector"`
}

func (r stockMatchRow) model() models.StockMatch {
	return models.StockMatch{
		Symbol:      r.Symbol,
		CompanyName: deref(r.CompanyName),
		Sector:      deref(r.Sector),
	}
}
