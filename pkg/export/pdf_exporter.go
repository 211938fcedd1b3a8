package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets and letter-style documents into PDF bytes.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Document describes a letter-style PDF such as a medical certificate.
type Document struct {
	Letterhead string
	Title      string
	Paragraphs []string
	Footer     string
	Signature  string
}

// RenderDocument creates a single-page letter PDF from the document parts.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("document requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	if doc.Letterhead != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, doc.Letterhead, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 12, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	for _, paragraph := range doc.Paragraphs {
		pdf.MultiCell(0, 6, paragraph, "", "J", false)
		pdf.Ln(4)
	}

	if doc.Footer != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 6, doc.Footer, "", 1, "R", false, 0, "")
	}

	if doc.Signature != "" {
		pdf.Ln(16)
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 6, "_________________________________", "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 6, doc.Signature, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render document pdf: %w", err)
	}
	return buf.Bytes(), nil
}
