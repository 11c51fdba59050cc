package analysis

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
)

// DefaultScreenLimit applies when neither the criteria nor config set a limit.
const DefaultScreenLimit = 20

// Screener compiles Criteria into a store-neutral ScreenQuery and runs it.
type Screener struct {
	store        interfaces.MetricStore
	validate     *validator.Validate
	defaultLimit int
	logger       arbor.ILogger
}

var _ interfaces.StockScreener = (*Screener)(nil)

func NewScreener(store interfaces.MetricStore, config *common.AnalysisConfig, logger arbor.ILogger) *Screener {
	validate := validator.New()
	// report json names so errors match the tool arguments
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	limit := config.DefaultScreenLimit
	if limit <= 0 {
		limit = DefaultScreenLimit
	}
	return &Screener{
		store:        store,
		validate:     validate,
		defaultLimit: limit,
		logger:       logger,
	}
}

// Compile validates criteria and builds one conjunctive predicate per
// present field. Results are ordered by sharpe descending, then symbol.
func (s *Screener) Compile(criteria models.Criteria) (*models.ScreenQuery, error) {
	tf, err := models.ParseTimeframe(criteria.Timeframe)
	if err != nil {
		return nil, err
	}
	if err := s.validateCriteria(criteria); err != nil {
		return nil, err
	}

	query := &models.ScreenQuery{
		Timeframe:  tf,
		Predicates: []models.Predicate{},
		OrderBy: []models.OrderTerm{
			{Field: models.FieldSharpe, Descending: true},
			{Field: models.FieldSymbol},
		},
		Limit: s.defaultLimit,
	}
	if criteria.Limit != nil {
		query.Limit = *criteria.Limit
	}

	if criteria.Sector != nil && strings.TrimSpace(*criteria.Sector) != "" {
		query.Predicates = append(query.Predicates, models.Predicate{
			Field: models.FieldSector, Op: models.OpEq, Text: strings.TrimSpace(*criteria.Sector),
		})
	}
	numeric := []struct {
		value *float64
		field models.MetricField
		op    models.Op
	}{
		{criteria.MinSharpeRatio, models.FieldSharpe, models.OpGte},
		{criteria.MaxVolatility, models.FieldVolatility, models.OpLte},
		{criteria.MinRSI, models.FieldRSI14, models.OpGte},
		{criteria.MaxRSI, models.FieldRSI14, models.OpLte},
	}
	for _, n := range numeric {
		if n.value != nil {
			query.Predicates = append(query.Predicates, models.Predicate{Field: n.field, Op: n.op, Number: *n.value})
		}
	}

	return query, nil
}

func (s *Screener) validateCriteria(criteria models.Criteria) error {
	if err := s.validate.Struct(criteria); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return common.NewValidationError(fe.Field(), describeFieldError(fe))
		}
		return common.NewValidationError("criteria", err.Error())
	}
	if criteria.MinRSI != nil && criteria.MaxRSI != nil && *criteria.MinRSI > *criteria.MaxRSI {
		return common.NewValidationError("min_rsi", "min_rsi must not exceed max_rsi")
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Screen compiles criteria and executes the query. An empty result is a
// success with no rows.
func (s *Screener) Screen(ctx context.Context, criteria models.Criteria) (*models.ScreenResult, error) {
	query, err := s.Compile(criteria)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Screen(ctx, query)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.ScreenRow{}
	}
	if len(rows) > query.Limit {
		rows = rows[:query.Limit]
	}

	s.logger.Debug().
		Str("timeframe", query.Timeframe.String()).
		Int("predicates", len(query.Predicates)).
		Int("limit", query.Limit).
		Int("rows", len(rows)).
		Msg("Screened stocks")

	return &models.ScreenResult{Query: query, Rows: rows}, nil
}
