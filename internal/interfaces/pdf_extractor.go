// -----------------------------------------------------------------------
// PDF Extractor Interface - Extract text content from PDF files
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/stockmcp/internal/models"
)

// PDFExtractor reads PDF files from the local filesystem. The implementation
// (pdfcpu today) can be swapped without touching the corpus.
type PDFExtractor interface {
	// ExtractPages extracts text content by page, 1-indexed.
	ExtractPages(ctx context.Context, path string) ([]models.Page, error)

	// ExtractPageRange extracts text from pages start..end inclusive.
	ExtractPageRange(ctx context.Context, path string, startPage, endPage int) ([]models.Page, error)

	// GetMetadata retrieves metadata without extracting text.
	GetMetadata(ctx context.Context, path string) (*models.DocumentMetadata, error)
}
