package enrichment

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages bounds how much of a document is read for classification.
const DefaultMaxPages = 5

// Extractor pulls plain text out of a PDF.
type Extractor interface {
	ExtractText(content []byte) (string, error)
}

// PDFExtractor reads the first MaxPages pages of a document.
type PDFExtractor struct {
	MaxPages int
}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{MaxPages: DefaultMaxPages}
}

func (e *PDFExtractor) ExtractText(content []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := r.NumPage()
	if e.MaxPages > 0 && pages > e.MaxPages {
		pages = e.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}
