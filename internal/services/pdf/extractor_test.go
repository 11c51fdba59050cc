package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestExtractor_ExtractPages(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPDF(t, dir, "TCS_Transcript.pdf", buildTestPDF("",
		textStream("Revenue grew 12% year on year", "Operating margin was 24.5%"),
		textStream("Outlook for FY25 remains strong"),
	))

	extractor := NewExtractor(arbor.NewLogger())
	pages, err := extractor.ExtractPages(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Revenue grew 12% year on year\nOperating margin was 24.5%", pages[0].Text)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, "Outlook for FY25 remains strong", pages[1].Text)
}

func TestExtractor_ExtractPageRange(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPDF(t, dir, "three.pdf", buildTestPDF("",
		textStream("page one"),
		textStream("page two"),
		textStream("page three"),
	))
	extractor := NewExtractor(arbor.NewLogger())

	tests := []struct {
		name       string
		start, end int
		want       []int
	}{
		{"middle page", 2, 2, []int{2}},
		{"open ended", 2, 0, []int{2, 3}},
		{"end past last page", 1, 10, []int{1, 2, 3}},
		{"start below one", -3, 1, []int{1}},
		{"start after end", 3, 2, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := extractor.ExtractPageRange(context.Background(), path, tt.start, tt.end)
			require.NoError(t, err)
			got := make([]int, 0, len(pages))
			for _, p := range pages {
				got = append(got, p.Number)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPDF(t, dir, "doc.pdf", buildTestPDF("", textStream("text")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(arbor.NewLogger()).ExtractPages(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_GetMetadata(t *testing.T) {
	dir := t.TempDir()
	data := buildTestPDF("Annual Report 2024", textStream("a"), textStream("b"))
	path := writeTestPDF(t, dir, "report.pdf", data)

	meta, err := NewExtractor(arbor.NewLogger()).GetMetadata(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, meta.PageCount)
	assert.Equal(t, int64(len(data)), meta.FileSize)
	assert.Equal(t, "Annual Report 2024", meta.Title)
	assert.False(t, meta.IsEncrypted)
}

func TestExtractor_InvalidFiles(t *testing.T) {
	dir := t.TempDir()
	notPDF := writeTestPDF(t, dir, "notes.pdf", []byte("just some text, not a PDF"))
	extractor := NewExtractor(arbor.NewLogger())

	_, err := extractor.ExtractPages(context.Background(), notPDF)
	assert.Error(t, err)

	_, err = extractor.GetMetadata(context.Background(), dir+"/missing.pdf")
	assert.Error(t, err)
}
