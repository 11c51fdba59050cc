package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ternarybob/stockmcp/internal/interfaces"
)

// Service renders markdown reports to PDF
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

const (
	reportFont     = "Helvetica"
	reportFontSize = 9.0
	lineHeight     = 4.5
	pageWidth      = 190.0 // A4 width minus 10mm margins
)

// ConvertMarkdownToPDF converts markdown content to a PDF byte slice
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Converting report to PDF")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 10, 10)
	doc.SetAutoPageBreak(true, 12)
	doc.SetTitle(title, true)
	doc.SetCreator("stock-mcp", true)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-10)
		doc.SetFont(reportFont, "I", 7)
		doc.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()
	doc.SetFont(reportFont, "", reportFontSize)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	r := &reportRenderer{
		pdf:    doc,
		source: source,
		tr:     doc.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(root, r.walk); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("Report PDF generated")
	return buf.Bytes(), nil
}

// reportRenderer walks the goldmark AST and writes it with fpdf core fonts.
// Text is translated to cp1252, which the core fonts use.
type reportRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	bold      bool
	italic    bool
	quote     int
	listLevel int
}

func (r *reportRenderer) setFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic || r.quote > 0 {
		style += "I"
	}
	r.pdf.SetFont(reportFont, style, reportFontSize)
}

func (r *reportRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(3)
			size := map[int]float64{1: 14, 2: 12, 3: 10.5}[node.Level]
			if size == 0 {
				size = 10
			}
			r.pdf.SetFont(reportFont, "B", size)
			r.pdf.MultiCell(0, size*0.5, r.tr(inlineText(node, r.source)), "", "L", false)
			r.pdf.Ln(1)
			r.setFont()
		}
		return ast.WalkSkipChildren, nil

	case *ast.Paragraph:
		if entering {
			if r.quote > 0 {
				r.pdf.SetX(16)
			}
		} else {
			r.pdf.Ln(lineHeight + 1)
		}

	case *ast.Text:
		if entering {
			r.pdf.Write(lineHeight, r.tr(string(node.Segment.Value(r.source))))
			if node.SoftLineBreak() {
				r.pdf.Write(lineHeight, " ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(lineHeight)
			}
		}

	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.setFont()

	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", reportFontSize)
			r.pdf.Write(lineHeight, r.tr(inlineText(node, r.source)))
			r.setFont()
		}
		return ast.WalkSkipChildren, nil

	case *ast.Blockquote:
		if entering {
			r.quote++
		} else {
			r.quote--
		}
		r.setFont()

	case *ast.List:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(1)
			}
		}

	case *ast.ListItem:
		if entering {
			r.pdf.SetX(10 + float64(r.listLevel)*4)
			r.pdf.Write(lineHeight, "- ")
		} else if node.NextSibling() != nil && r.pdf.GetX() > 11 {
			r.pdf.Ln(lineHeight)
		}

	case *ast.TextBlock:
		if !entering {
			r.pdf.Ln(lineHeight)
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.pdf.SetFont("Courier", "", 8)
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				line := strings.TrimRight(string(seg.Value(r.source)), "\n")
				r.pdf.SetX(14)
				r.pdf.CellFormat(0, 4, r.tr(line), "", 1, "L", false, 0, "")
			}
			r.pdf.Ln(2)
			r.setFont()
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			y := r.pdf.GetY()
			r.pdf.Line(10, y, 10+pageWidth, y)
			r.pdf.Ln(2)
		}

	case *extast.Table:
		if entering {
			r.renderTable(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *reportRenderer) renderTable(table *extast.Table) {
	var rows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		var cells []string
		for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.tr(inlineText(cell, r.source)))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	cols := len(rows[0])
	width := pageWidth / float64(cols)
	r.pdf.Ln(1)
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(reportFont, "B", 8)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont(reportFont, "", 8)
		}
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = fitCell(r.pdf, row[j], width-2)
			}
			r.pdf.CellFormat(width, 5, cell, "1", 0, "L", i == 0, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(2)
	r.setFont()
}

// fitCell shortens text with an ellipsis until it fits the column.
func fitCell(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
