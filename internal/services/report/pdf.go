package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pdfFont       = "Arial"
	pdfFontSize   = 10.0
	pdfLineHeight = 5.0
	pdfPageWidth  = 190.0 // A4 minus margins
)

// MarkdownToPDF converts markdown into a PDF document
func MarkdownToPDF(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont(pdfFont, "", pdfFontSize)

	source := []byte(markdown)
	doc := newMarkdown().Parser().Parse(text.NewReader(source))

	r := &pdfRenderer{
		pdf:       pdf,
		source:    source,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	bold      bool
	italic    bool
	size      float64
	listLevel int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	size := r.size
	if size == 0 {
		size = pdfFontSize
	}
	r.pdf.SetFont(pdfFont, style, size)
}

func (r *pdfRenderer) write(s string) {
	r.pdf.Write(pdfLineHeight, r.translate(s))
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(4)
			r.bold = true
			r.size = headingSize(node.Level)
		} else {
			r.bold = false
			r.size = 0
			r.pdf.Ln(pdfLineHeight + 2)
		}
		r.updateFont()
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(pdfLineHeight + 2)
		}
	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			if node.SoftLineBreak() {
				r.write(" ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(pdfLineHeight)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", pdfFontSize)
			r.write(string(node.Text(r.source)))
			r.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		if entering {
			if r.listLevel > 0 {
				r.pdf.Ln(pdfLineHeight)
			}
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			r.pdf.SetX(10 + float64(r.listLevel)*5)
			r.write("- ")
		} else {
			r.pdf.Ln(pdfLineHeight)
		}
	case *ast.TextBlock:
		// List item bodies render inline
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(10, r.pdf.GetY(), 10+pdfPageWidth, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case *extast.Table:
		if entering {
			r.renderTable(r.tableRows(node))
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func headingSize(level int) float64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 13
	case 3:
		return 11
	default:
		return pdfFontSize
	}
}

func (r *pdfRenderer) tableRows(table *extast.Table) [][]string {
	var rows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *extast.TableHeader, *extast.TableRow:
			var row []string
			for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
				row = append(row, string(cell.Text(r.source)))
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// renderTable draws equal-width columns; the first row is the header
func (r *pdfRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	width := pdfPageWidth / float64(len(rows[0]))
	r.pdf.Ln(2)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(pdfFont, style, pdfFontSize-1)
		for _, cell := range row {
			r.pdf.CellFormat(width, pdfLineHeight+1, r.translate(cell), "1", 0, "L", false, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.updateFont()
	r.pdf.Ln(2)
}
