package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/models"
	"github.com/ternarybob/stockmcp/internal/services/pdf"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func doc(name string, age time.Duration) models.Document {
	return models.Document{Name: name, Path: "/corpus/" + name, Size: 1024, ModifiedAt: baseTime.Add(-age)}
}

type fakeCorpus struct {
	docs    []models.Document
	listErr error
	pages   map[string][]models.Page
	openErr map[string]error
	panicOn map[string]bool
	opened  []string
}

func (f *fakeCorpus) ListDocuments(ctx context.Context) ([]models.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Document(nil), f.docs...), nil
}

func (f *fakeCorpus) Lookup(ctx context.Context, name string) (*models.Document, error) {
	for i := range f.docs {
		if f.docs[i].Name == name {
			return &f.docs[i], nil
		}
	}
	return nil, common.NewValidationError("filename", "document not found: "+name)
}

func (f *fakeCorpus) Describe(ctx context.Context, d models.Document) models.Document {
	return d
}

func (f *fakeCorpus) OpenPages(ctx context.Context, d models.Document) ([]models.Page, error) {
	f.opened = append(f.opened, d.Name)
	if f.panicOn[d.Name] {
		panic("corrupt xref table")
	}
	if err := f.openErr[d.Name]; err != nil {
		return nil, err
	}
	return f.pages[d.Name], nil
}

func (f *fakeCorpus) FindTables(page models.Page) []models.Table {
	return pdf.DetectTables(page)
}

type fakeStore struct {
	records    map[string]*models.MetricRecord
	names      map[string]string
	metricsErr error
	nameErr    error
	screenErr  error
	rows       []models.ScreenRow
	lastQuery  *models.ScreenQuery
	nameCalls  int
}

func (f *fakeStore) GetLatestMetrics(ctx context.Context, symbol string, tf models.Timeframe) (*models.MetricRecord, error) {
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	rec, ok := f.records[symbol]
	if !ok {
		return nil, nil
	}
	out := *rec
	out.Timeframe = tf
	return &out, nil
}

func (f *fakeStore) GetCompanyName(ctx context.Context, symbol string) (string, bool, error) {
	f.nameCalls++
	if f.nameErr != nil {
		return "", false, f.nameErr
	}
	name, ok := f.names[symbol]
	return name, ok, nil
}

func (f *fakeStore) Screen(ctx context.Context, query *models.ScreenQuery) ([]models.ScreenRow, error) {
	f.lastQuery = query
	if f.screenErr != nil {
		return nil, f.screenErr
	}
	return f.rows, nil
}

func storeDown() error {
	return common.NewSourceError("metric store", "query", errors.New("connection refused"))
}

func defaultAnalysisConfig() *common.AnalysisConfig {
	return &common.NewDefaultConfig().Analysis
}
