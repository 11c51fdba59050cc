package models

// Criteria is a partially specified screening request. A nil field places no
// constraint on the result.
type Criteria struct {
	Sector         *string  `json:"sector,omitempty"`
	Timeframe      string   `json:"timeframe,omitempty"`
	MinSharpeRatio *float64 `json:"min_sharpe_ratio,omitempty"`
	MaxVolatility  *float64 `json:"max_volatility,omitempty" validate:"omitempty,gte=0"`
	MinRSI         *float64 `json:"min_rsi,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxRSI         *float64 `json:"max_rsi,omitempty" validate:"omitempty,gte=0,lte=100"`
	Limit          *int     `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
}

// MetricField names a screenable quantity. The store owns the mapping from
// (field, timeframe) to a physical column.
type MetricField string

const (
	FieldSymbol     MetricField = "symbol"
	FieldSector     MetricField = "sector"
	FieldSharpe     MetricField = "sharpe"
	FieldVolatility MetricField = "volatility"
	FieldRSI14      MetricField = "rsi14"
)

// Op is a comparison operator. Predicates are always conjunctive.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Predicate constrains one field. Text is used for FieldSector, Number otherwise.
type Predicate struct {
	Field  MetricField `json:"field"`
	Op     Op          `json:"op"`
	Number float64     `json:"number,omitempty"`
	Text   string      `json:"text,omitempty"`
}

// OrderTerm is one ORDER BY key.
type OrderTerm struct {
	Field      MetricField `json:"field"`
	Descending bool        `json:"descending"`
}

// ScreenQuery is the store-neutral form of a screening request.
type ScreenQuery struct {
	Timeframe  Timeframe   `json:"timeframe"`
	Predicates []Predicate `json:"predicates"`
	OrderBy    []OrderTerm `json:"order_by"`
	Limit      int         `json:"limit"`
}

// ScreenRow is one stock that satisfied every predicate.
type ScreenRow struct {
	Symbol      string   `json:"symbol"`
	CompanyName string   `json:"company_name"`
	Sector      string   `json:"sector"`
	SharpeRatio *float64 `json:"sharpe_ratio,omitempty"`
	Volatility  *float64 `json:"volatility,omitempty"`
	TotalReturn *float64 `json:"total_return,omitempty"`
	Beta        *float64 `json:"beta,omitempty"`
	MaxDrawdown *float64 `json:"max_drawdown,omitempty"`
	RSI14       *float64 `json:"rsi_14,omitempty"`
}

// ScreenResult pairs the compiled query with its rows. Empty Rows is a valid,
// successful outcome.
type ScreenResult struct {
	Query *ScreenQuery `json:"query"`
	Rows  []ScreenRow  `json:"rows"`
}
