// -----------------------------------------------------------------------
// Fundamentals Aggregator - technical snapshot plus document excerpts
// -----------------------------------------------------------------------

package analysis

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
)

// Aggregator implements interfaces.FundamentalsAggregator. Every step
// degrades to a notice except validation and source failures.
type Aggregator struct {
	store     interfaces.MetricStore
	corpus    interfaces.DocumentCorpus
	ranker    interfaces.DocumentRanker
	maxDocs   int
	limits    mineLimits
	timeframe models.Timeframe
	logger    arbor.ILogger
}

var _ interfaces.FundamentalsAggregator = (*Aggregator)(nil)

func NewAggregator(store interfaces.MetricStore, corpus interfaces.DocumentCorpus, ranker interfaces.DocumentRanker, config *common.AnalysisConfig, logger arbor.ILogger) *Aggregator {
	orDefault := func(v, def int) int {
		if v <= 0 {
			return def
		}
		return v
	}
	return &Aggregator{
		store:   store,
		corpus:  corpus,
		ranker:  ranker,
		maxDocs: orDefault(config.MaxExtractedDocuments, 3),
		limits: mineLimits{
			maxParagraphs: orDefault(config.MaxParagraphs, 5),
			minLength:     orDefault(config.MinParagraphLength, 100),
			maxSnippet:    orDefault(config.MaxSnippetLength, 400),
			maxTables:     orDefault(config.MaxTables, 2),
			maxTableRows:  orDefault(config.MaxTableRows, 4),
		},
		timeframe: models.TimeframeMedium,
		logger:    logger,
	}
}

// Aggregate runs the fixed pipeline: technical metrics, ranking, then
// extraction from the top documents.
func (a *Aggregator) Aggregate(ctx context.Context, symbol, pattern string) (*models.FundamentalsReport, error) {
	sym, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	report := &models.FundamentalsReport{
		Symbol:    sym,
		Matches:   []models.DocumentMatch{},
		Documents: []models.DocumentSection{},
	}

	record, err := a.store.GetLatestMetrics(ctx, sym, a.timeframe)
	if err != nil {
		return nil, err
	}
	if record == nil {
		report.Notices = append(report.Notices, models.Notice{
			Kind:    models.NoticeNoTechnicalData,
			Message: "No technical data available",
		})
	}
	report.Technical = record

	ranked, err := a.ranker.Rank(ctx, sym, pattern)
	if err != nil {
		return nil, err
	}
	report.Pattern = ranked.Pattern
	report.Matches = ranked.Matches
	report.Notices = append(report.Notices, ranked.Notices...)

	if len(ranked.Matches) == 0 {
		report.Notices = append(report.Notices, models.Notice{
			Kind: models.NoticeNoDocuments,
			Message: fmt.Sprintf("No PDF documents found. Add company reports, transcripts, or annual reports, e.g. %s_Transcript.pdf, %s_Annual_Report.pdf",
				sym, sym),
		})
		return report, nil
	}

	for i, match := range ranked.Matches {
		if i >= a.maxDocs {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		section := a.extract(ctx, match)
		if section.Err != "" {
			report.Notices = append(report.Notices, models.Notice{
				Kind:     models.NoticeExtractionFailed,
				Message:  fmt.Sprintf("Error processing %s: %s", match.Document.Name, section.Err),
				Document: match.Document.Name,
			})
		} else if len(section.Snippets) == 0 && len(section.Tables) == 0 {
			report.Notices = append(report.Notices, models.Notice{
				Kind:     models.NoticeNoQualifyingContent,
				Message:  fmt.Sprintf("No financial highlights found in %s", match.Document.Name),
				Document: match.Document.Name,
			})
		}
		report.Documents = append(report.Documents, section)
	}

	a.logger.Debug().
		Str("symbol", sym).
		Bool("technical", record != nil).
		Int("matches", len(report.Matches)).
		Int("documents", len(report.Documents)).
		Int("notices", len(report.Notices)).
		Msg("Aggregated fundamentals")

	return report, nil
}

// extract mines one document. Failures are recorded on the section.
func (a *Aggregator) extract(ctx context.Context, match models.DocumentMatch) (section models.DocumentSection) {
	section.Match = match
	defer func() {
		// pdfcpu can panic on malformed input
		if r := recover(); r != nil {
			a.logger.Error().Str("document", match.Document.Name).Str("panic", fmt.Sprint(r)).Msg("Document extraction panicked")
			section.Snippets, section.Tables = nil, nil
			section.Err = fmt.Sprintf("extraction failed: %v", r)
		}
	}()

	pages, err := a.corpus.OpenPages(ctx, match.Document)
	if err != nil {
		a.logger.Warn().Err(err).Str("document", match.Document.Name).Msg("Failed to extract document")
		section.Err = err.Error()
		return section
	}

	section.Snippets = mineSnippets(pages, a.limits)
	section.Tables = selectTables(pages, a.corpus.FindTables, a.limits)
	return section
}
