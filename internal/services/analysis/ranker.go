// -----------------------------------------------------------------------
// Relevance Ranker - infers which corpus documents pertain to a stock
// -----------------------------------------------------------------------

package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
)

// MaxTiebreakWeight bounds the recency tiebreak below the smallest
// categorical bonus so it can only reorder documents whose bonuses tie.
const MaxTiebreakWeight = 10.0

// scoreRule adds weight when match reports at least one reason.
type scoreRule struct {
	weight float64
	match  func(name, symbol string) []string
}

type keywordReason struct {
	keyword string
	reason  string
}

// anyKeyword matches when the uppercased filename contains any keyword.
func anyKeyword(kws ...keywordReason) func(name, symbol string) []string {
	return func(name, _ string) []string {
		var reasons []string
		for _, kw := range kws {
			if strings.Contains(name, kw.keyword) {
				reasons = appendUnique(reasons, kw.reason)
			}
		}
		return reasons
	}
}

// scoreRules is evaluated in order against the uppercased filename.
var scoreRules = []scoreRule{
	{weight: 100, match: func(name, symbol string) []string {
		if strings.Contains(name, symbol) {
			return []string{"exact symbol match"}
		}
		return nil
	}},
	{weight: 50, match: anyKeyword(
		keywordReason{"TRANSCRIPT", "earnings transcript"},
		keywordReason{"CALL", "earnings call"},
	)},
	{weight: 40, match: anyKeyword(
		keywordReason{"EARNINGS", "earnings related"},
		keywordReason{"RESULT", "results document"},
	)},
	{weight: 30, match: anyKeyword(
		keywordReason{"ANNUAL", "annual report"},
		keywordReason{"REPORT", "annual report"},
	)},
	{weight: 10, match: func(name, symbol string) []string {
		if name == symbol+".PDF" {
			return []string{"main company document"}
		}
		return nil
	}},
}

// Ranker implements interfaces.DocumentRanker over a document corpus.
type Ranker struct {
	corpus         interfaces.DocumentCorpus
	store          interfaces.MetricStore
	maxMatches     int
	tiebreakWeight float64
	logger         arbor.ILogger
}

var _ interfaces.DocumentRanker = (*Ranker)(nil)

// NewRanker creates a ranker. The tiebreak weight must lie in (0, 10) so
// that newer documents strictly outrank older ones on equal bonuses.
func NewRanker(corpus interfaces.DocumentCorpus, store interfaces.MetricStore, config *common.AnalysisConfig, logger arbor.ILogger) (*Ranker, error) {
	if config.TiebreakWeight <= 0 || config.TiebreakWeight >= MaxTiebreakWeight {
		return nil, fmt.Errorf("tiebreak weight must be in (0, %g), got %g", MaxTiebreakWeight, config.TiebreakWeight)
	}
	maxMatches := config.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 5
	}
	return &Ranker{
		corpus:         corpus,
		store:          store,
		maxMatches:     maxMatches,
		tiebreakWeight: config.TiebreakWeight,
		logger:         logger,
	}, nil
}

type candidate struct {
	doc models.Document
	via models.CandidateSource
}

// Rank returns at most maxMatches documents ordered by descending score.
func (r *Ranker) Rank(ctx context.Context, symbol, pattern string) (*models.RankResult, error) {
	sym, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	pattern = strings.ToUpper(strings.TrimSpace(pattern))

	docs, err := r.corpus.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.RankResult{
		Symbol:     sym,
		Pattern:    pattern,
		Matches:    []models.DocumentMatch{},
		CorpusSize: len(docs),
	}
	if len(docs) == 0 {
		return result, nil
	}

	candidates := r.candidates(ctx, sym, pattern, docs, result)
	if len(candidates) == 0 {
		result.Fallback = true
		result.Notices = append(result.Notices, models.Notice{
			Kind:    models.NoticeCorpusFallback,
			Message: fmt.Sprintf("No document names matched %s; ranking the whole corpus", sym),
		})
		for _, d := range docs {
			candidates = append(candidates, candidate{doc: d, via: models.CandidateByFallback})
		}
	}

	matches := make([]models.DocumentMatch, 0, len(candidates))
	for _, c := range candidates {
		score, reasons := r.score(c.doc, sym)
		matches = append(matches, models.DocumentMatch{
			Document: c.doc,
			Score:    score,
			Reasons:  reasons,
			Via:      c.via,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > r.maxMatches {
		matches = matches[:r.maxMatches]
	}
	result.Matches = matches

	r.logger.Debug().
		Str("symbol", sym).
		Str("pattern", pattern).
		Int("corpus", len(docs)).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Bool("fallback", result.Fallback).
		Msg("Ranked documents")

	return result, nil
}

// candidates applies the symbol, pattern and company-name filters, keeping
// first-seen order and dropping duplicates.
func (r *Ranker) candidates(ctx context.Context, sym, pattern string, docs []models.Document, result *models.RankResult) []candidate {
	var out []candidate
	seen := make(map[string]bool)
	add := func(d models.Document, via models.CandidateSource) {
		if seen[d.Path] {
			return
		}
		seen[d.Path] = true
		out = append(out, candidate{doc: d, via: via})
	}

	for _, d := range docs {
		if strings.Contains(strings.ToUpper(d.Name), sym) {
			add(d, models.CandidateBySymbol)
		}
	}
	if pattern != "" {
		for _, d := range docs {
			if strings.Contains(strings.ToUpper(d.Name), pattern) {
				add(d, models.CandidateByPattern)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	words, err := r.companyWords(ctx, sym)
	if err != nil {
		r.logger.Warn().Err(err).Str("symbol", sym).Msg("Could not fetch company name")
		result.Notices = append(result.Notices, models.Notice{
			Kind:    models.NoticeCompanyLookupFailed,
			Message: fmt.Sprintf("Could not fetch company name for %s: %v", sym, err),
		})
		return nil
	}
	for _, d := range docs {
		name := strings.ToUpper(d.Name)
		for _, w := range words {
			if strings.Contains(name, w) {
				add(d, models.CandidateByCompany)
				break
			}
		}
	}
	return out
}

// companyWords returns the uppercased company-name words longer than three
// characters. An unknown symbol yields no words.
func (r *Ranker) companyWords(ctx context.Context, sym string) ([]string, error) {
	if r.store == nil {
		return nil, nil
	}
	name, found, err := r.store.GetCompanyName(ctx, sym)
	if err != nil || !found {
		return nil, err
	}
	return CompanyWords(name), nil
}

// CompanyWords splits a company name into the uppercased words used for
// filename matching. Surrounding punctuation is trimmed.
func CompanyWords(name string) []string {
	var words []string
	for _, f := range strings.Fields(strings.ToUpper(name)) {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(w)) > 3 {
			words = appendUnique(words, w)
		}
	}
	return words
}

func (r *Ranker) score(doc models.Document, sym string) (float64, []string) {
	name := strings.ToUpper(doc.Name)
	var score float64
	reasons := []string{}
	for _, rule := range scoreRules {
		if matched := rule.match(name, sym); len(matched) > 0 {
			score += rule.weight
			for _, m := range matched {
				reasons = appendUnique(reasons, m)
			}
		}
	}
	return score + r.tiebreak(doc), reasons
}

// tiebreak maps the modification time into [0, tiebreakWeight]. Unix seconds
// stay below 1e10 until the year 2286.
func (r *Ranker) tiebreak(doc models.Document) float64 {
	if doc.ModifiedAt.IsZero() {
		return 0
	}
	frac := float64(doc.ModifiedAt.Unix()) / 1e10
	return r.tiebreakWeight * math.Max(0, math.Min(1, frac))
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
