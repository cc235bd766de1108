package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor converts a stored document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// PDFExtractor extracts plain text from PDF files using ledongthuc/pdf.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText extracts the text of every page of the PDF at path.
func (e *PDFExtractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Path: path, Message: fmt.Sprintf("corrupt PDF: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Message: "failed to open PDF", Cause: err}
	}
	defer f.Close()

	return extractPages(ctx, path, reader)
}

// extractPages concatenates the plain text of each page, one page per block.
func extractPages(ctx context.Context, path string, reader *pdf.Reader) (string, error) {
	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", &ExtractionError{Path: path, Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}
