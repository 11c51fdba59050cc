// Package analysisobs decorates the analysis engine with spans, timing and
// structured logs. Each call gets its own correlation id.
package analysisobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
)

// callLogger returns a logger tagged with a fresh correlation id, reusing the
// trace id when a span is recording so logs and spans line up.
func callLogger(ctx context.Context, logger arbor.ILogger) arbor.ILogger {
	id := common.TraceID(ctx)
	if id == "" {
		id = uuid.New().String()
	}
	return logger.WithCorrelationId(id)
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// errorKind classifies err for logs and span attributes.
func errorKind(err error) string {
	switch {
	case common.IsValidation(err):
		return "validation"
	case common.IsSourceUnavailable(err):
		return "source_unavailable"
	default:
		return "internal"
	}
}

type observableRanker struct {
	inner  interfaces.DocumentRanker
	logger arbor.ILogger
}

// WrapRanker wraps a DocumentRanker with logging and tracing.
func WrapRanker(inner interfaces.DocumentRanker, logger arbor.ILogger) interfaces.DocumentRanker {
	return &observableRanker{inner: inner, logger: logger}
}

func (o *observableRanker) Rank(ctx context.Context, symbol, pattern string) (*models.RankResult, error) {
	ctx, span := common.StartSpan(ctx, "analysis.Rank", trace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("pattern", pattern),
	))
	defer span.End()

	log := callLogger(ctx, o.logger)
	start := time.Now()

	result, err := o.inner.Rank(ctx, symbol, pattern)
	if err != nil {
		fail(span, err)
		log.Error().Err(err).Str("symbol", symbol).Str("kind", errorKind(err)).Dur("duration", time.Since(start)).Msg("Document ranking failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("matches", len(result.Matches)),
		attribute.Bool("fallback", result.Fallback),
	)
	log.Info().
		Str("symbol", result.Symbol).
		Int("corpus", result.CorpusSize).
		Int("matches", len(result.Matches)).
		Bool("fallback", result.Fallback).
		Dur("duration", time.Since(start)).
		Msg("Documents ranked")
	return result, nil
}

type observableScreener struct {
	inner  interfaces.StockScreener
	logger arbor.ILogger
}

// WrapScreener wraps a StockScreener with logging and tracing.
func WrapScreener(inner interfaces.StockScreener, logger arbor.ILogger) interfaces.StockScreener {
	return &observableScreener{inner: inner, logger: logger}
}

func (o *observableScreener) Compile(criteria models.Criteria) (*models.ScreenQuery, error) {
	return o.inner.Compile(criteria)
}

func (o *observableScreener) Screen(ctx context.Context, criteria models.Criteria) (*models.ScreenResult, error) {
	ctx, span := common.StartSpan(ctx, "analysis.Screen", trace.WithAttributes(
		attribute.String("timeframe", criteria.Timeframe),
	))
	defer span.End()

	log := callLogger(ctx, o.logger)
	start := time.Now()

	result, err := o.inner.Screen(ctx, criteria)
	if err != nil {
		fail(span, err)
		log.Error().Err(err).Str("kind", errorKind(err)).Dur("duration", time.Since(start)).Msg("Stock screening failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("predicates", len(result.Query.Predicates)),
		attribute.Int("rows", len(result.Rows)),
	)
	log.Info().
		Str("timeframe", result.Query.Timeframe.String()).
		Int("predicates", len(result.Query.Predicates)).
		Int("limit", result.Query.Limit).
		Int("rows", len(result.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Stocks screened")
	return result, nil
}

type observableAggregator struct {
	inner  interfaces.FundamentalsAggregator
	logger arbor.ILogger
}

// WrapAggregator wraps a FundamentalsAggregator with logging and tracing.
func WrapAggregator(inner interfaces.FundamentalsAggregator, logger arbor.ILogger) interfaces.FundamentalsAggregator {
	return &observableAggregator{inner: inner, logger: logger}
}

func (o *observableAggregator) Aggregate(ctx context.Context, symbol, pattern string) (*models.FundamentalsReport, error) {
	ctx, span := common.StartSpan(ctx, "analysis.Aggregate", trace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("pattern", pattern),
	))
	defer span.End()

	log := callLogger(ctx, o.logger)
	start := time.Now()

	report, err := o.inner.Aggregate(ctx, symbol, pattern)
	if err != nil {
		fail(span, err)
		log.Error().Err(err).Str("symbol", symbol).Str("kind", errorKind(err)).Dur("duration", time.Since(start)).Msg("Fundamentals aggregation failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("technical", report.Technical != nil),
		attribute.Int("documents", len(report.Documents)),
		attribute.Int("notices", len(report.Notices)),
	)
	for _, n := range report.Notices {
		log.Warn().Str("symbol", report.Symbol).Str("notice", string(n.Kind)).Str("document", n.Document).Msg(n.Message)
	}
	log.Info().
		Str("symbol", report.Symbol).
		Bool("technical", report.Technical != nil).
		Int("matches", len(report.Matches)).
		Int("documents", len(report.Documents)).
		Int("notices", len(report.Notices)).
		Dur("duration", time.Since(start)).
		Msg("Fundamentals aggregated")
	return report, nil
}
