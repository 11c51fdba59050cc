// -----------------------------------------------------------------------
// PDF Extractor Service - Extract page text and metadata from PDF files
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
)

// Extractor implements the PDFExtractor interface using pdfcpu
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

// readContext parses and validates a PDF file.
func (e *Extractor) readContext(path string) (*model.Context, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}

	pdfCtx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, size, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}
	return pdfCtx, size, nil
}

// ExtractPages extracts text content by page from a PDF.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]models.Page, error) {
	return e.ExtractPageRange(ctx, path, 1, 0)
}

// ExtractPageRange extracts text from pages startPage..endPage (1-indexed,
// inclusive). An endPage of 0 or past the last page means the last page.
func (e *Extractor) ExtractPageRange(ctx context.Context, path string, startPage, endPage int) ([]models.Page, error) {
	pdfCtx, _, err := e.readContext(path)
	if err != nil {
		return nil, err
	}

	if startPage < 1 {
		startPage = 1
	}
	if endPage <= 0 || endPage > pdfCtx.PageCount {
		endPage = pdfCtx.PageCount
	}
	if startPage > endPage {
		return []models.Page{}, nil
	}

	pages := make([]models.Page, 0, endPage-startPage+1)
	for pageNr := startPage; pageNr <= endPage; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, models.Page{
			Number: pageNr,
			Text:   e.pageText(pdfCtx, pageNr),
		})
	}

	e.logger.Debug().
		Str("path", path).
		Int("pages", len(pages)).
		Msg("Extracted PDF pages")

	return pages, nil
}

// pageText decodes one page's content stream. Pages without a readable
// content stream (scans, unsupported filters) yield empty text.
func (e *Extractor) pageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil || r == nil {
		if err != nil {
			e.logger.Debug().Err(err).Int("page", pageNr).Msg("No content stream for page")
		}
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return DecodeContentStream(data)
}

// GetMetadata retrieves PDF metadata without extracting text content.
func (e *Extractor) GetMetadata(ctx context.Context, path string) (*models.DocumentMetadata, error) {
	pdfCtx, size, err := e.readContext(path)
	if err != nil {
		return nil, err
	}

	metadata := &models.DocumentMetadata{
		Title:       strings.TrimSpace(pdfCtx.Title),
		Author:      strings.TrimSpace(pdfCtx.Author),
		Subject:     strings.TrimSpace(pdfCtx.Subject),
		Creator:     strings.TrimSpace(pdfCtx.Creator),
		Producer:    strings.TrimSpace(pdfCtx.Producer),
		PageCount:   pdfCtx.PageCount,
		FileSize:    size,
		IsEncrypted: pdfCtx.Encrypt != nil,
	}

	e.logger.Debug().
		Int("page_count", metadata.PageCount).
		Int64("file_size", metadata.FileSize).
		Bool("encrypted", metadata.IsEncrypted).
		Msg("Extracted PDF metadata")

	return metadata, nil
}
