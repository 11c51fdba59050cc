// -----------------------------------------------------------------------
// Document Corpus - the directory of PDF filings available for analysis
// -----------------------------------------------------------------------

package corpus

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/models"
	"github.com/ternarybob/stockmcp/internal/services/pdf"
)

const sourceName = "document corpus"

// Corpus is a flat directory of documents. Subdirectories are not walked.
type Corpus struct {
	dir        string
	extensions []string
	extractor  interfaces.PDFExtractor
	logger     arbor.ILogger
}

var _ interfaces.DocumentCorpus = (*Corpus)(nil)

// NewCorpus creates a corpus over config.Dir. Extensions are matched
// case-insensitively; an empty list means ".pdf".
func NewCorpus(config *common.DocumentConfig, extractor interfaces.PDFExtractor, logger arbor.ILogger) *Corpus {
	exts := make([]string, 0, len(config.Extensions))
	for _, e := range config.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		exts = []string{".pdf"}
	}
	return &Corpus{
		dir:        config.Dir,
		extensions: exts,
		extractor:  extractor,
		logger:     logger,
	}
}

// Dir returns the corpus directory.
func (c *Corpus) Dir() string {
	return c.dir
}

func (c *Corpus) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListDocuments returns the corpus sorted by name. A missing directory is an
// empty corpus.
func (c *Corpus) ListDocuments(ctx context.Context) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn().Str("dir", c.dir).Msg("Document directory does not exist, corpus is empty")
			return []models.Document{}, nil
		}
		return nil, common.NewSourceError(sourceName, "list documents", err)
	}

	docs := make([]models.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !c.accepts(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			c.logger.Debug().Err(err).Str("name", entry.Name()).Msg("Skipping unreadable entry")
			continue
		}
		docs = append(docs, models.Document{
			Name:       entry.Name(),
			Path:       filepath.Join(c.dir, entry.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	c.logger.Debug().Str("dir", c.dir).Int("documents", len(docs)).Msg("Listed documents")
	return docs, nil
}

// Lookup finds a document by base name. Names with path components are
// rejected so callers cannot read outside the corpus.
func (c *Corpus) Lookup(ctx context.Context, name string) (*models.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("filename", "must not be empty")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, common.NewValidationError("filename", "must be a file name without directories")
	}

	docs, err := c.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].Name == name {
			return &docs[i], nil
		}
	}
	for i := range docs {
		if strings.EqualFold(docs[i].Name, name) {
			return &docs[i], nil
		}
	}
	return nil, common.NewValidationError("filename", "document not found: "+name)
}

// Describe fills page count and title from the PDF metadata.
func (c *Corpus) Describe(ctx context.Context, doc models.Document) models.Document {
	meta, err := c.extractor.GetMetadata(ctx, doc.Path)
	if err != nil {
		c.logger.Debug().Err(err).Str("name", doc.Name).Msg("Could not read document metadata")
		return doc
	}
	doc.PageCount = meta.PageCount
	doc.Title = meta.Title
	return doc
}

// OpenPages extracts every page of doc.
func (c *Corpus) OpenPages(ctx context.Context, doc models.Document) ([]models.Page, error) {
	return c.extractor.ExtractPages(ctx, doc.Path)
}

// FindTables detects tables in extracted page text.
func (c *Corpus) FindTables(page models.Page) []models.Table {
	return pdf.DetectTables(page)
}
