package interfaces

import (
	"context"

	"github.com/ternarybob/stockmcp/internal/models"
)

// DocumentCorpus enumerates and reads the PDF documents available for analysis.
type DocumentCorpus interface {
	// ListDocuments returns every document in a deterministic order. An empty
	// corpus is not an error; an unreadable one wraps common.ErrSourceUnavailable.
	ListDocuments(ctx context.Context) ([]models.Document, error)

	// Lookup finds a document by its base name.
	Lookup(ctx context.Context, name string) (*models.Document, error)

	// Describe fills page count and title. Parse failures leave them unset.
	Describe(ctx context.Context, doc models.Document) models.Document

	// OpenPages extracts the text of every page.
	OpenPages(ctx context.Context, doc models.Document) ([]models.Page, error)

	// FindTables detects tables on an already extracted page.
	FindTables(page models.Page) []models.Table
}
