package analysisobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/models"
)

type stubRanker struct {
	result *models.RankResult
	err    error
	calls  int
}

func (s *stubRanker) Rank(ctx context.Context, symbol, pattern string) (*models.RankResult, error) {
	s.calls++
	return s.result, s.err
}

type stubScreener struct {
	result *models.ScreenResult
	err    error
}

func (s *stubScreener) Compile(criteria models.Criteria) (*models.ScreenQuery, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result.Query, nil
}

func (s *stubScreener) Screen(ctx context.Context, criteria models.Criteria) (*models.ScreenResult, error) {
	return s.result, s.err
}

type stubAggregator struct {
	report *models.FundamentalsReport
	err    error
}

func (s *stubAggregator) Aggregate(ctx context.Context, symbol, pattern string) (*models.FundamentalsReport, error) {
	return s.report, s.err
}

func TestWrapRanker(t *testing.T) {
	want := &models.RankResult{Symbol: "TCS", Matches: []models.DocumentMatch{{Score: 150}}}
	inner := &stubRanker{result: want}
	ranker := WrapRanker(inner, arbor.NewLogger())

	got, err := ranker.Rank(context.Background(), "TCS", "")
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 1, inner.calls)

	inner.err = common.NewValidationError("symbol", "symbol is required")
	_, err = ranker.Rank(context.Background(), "", "")
	assert.True(t, common.IsValidation(err))
}

func TestWrapScreener(t *testing.T) {
	want := &models.ScreenResult{
		Query: &models.ScreenQuery{Timeframe: models.TimeframeMedium, Limit: 20},
		Rows:  []models.ScreenRow{{Symbol: "INFY"}},
	}
	screener := WrapScreener(&stubScreener{result: want}, arbor.NewLogger())

	got, err := screener.Screen(context.Background(), models.Criteria{})
	require.NoError(t, err)
	assert.Same(t, want, got)

	q, err := screener.Compile(models.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 20, q.Limit)

	failing := WrapScreener(&stubScreener{err: common.NewSourceError("metric store", "screen", errors.New("timeout"))}, arbor.NewLogger())
	_, err = failing.Screen(context.Background(), models.Criteria{})
	assert.True(t, common.IsSourceUnavailable(err))
}

func TestWrapAggregator(t *testing.T) {
	want := &models.FundamentalsReport{
		Symbol:  "XYZ",
		Notices: []models.Notice{{Kind: models.NoticeNoDocuments, Message: "No PDF documents found"}},
	}
	aggregator := WrapAggregator(&stubAggregator{report: want}, arbor.NewLogger())

	got, err := aggregator.Aggregate(context.Background(), "XYZ", "")
	require.NoError(t, err)
	assert.Same(t, want, got)

	boom := errors.New("boom")
	_, err = WrapAggregator(&stubAggregator{err: boom}, arbor.NewLogger()).Aggregate(context.Background(), "XYZ", "")
	assert.ErrorIs(t, err, boom)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "validation", errorKind(common.NewValidationError("timeframe", "bad")))
	assert.Equal(t, "source_unavailable", errorKind(common.NewSourceError("document corpus", "list", nil)))
	assert.Equal(t, "internal", errorKind(errors.New("other")))
}
