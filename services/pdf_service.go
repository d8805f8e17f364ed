package services

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"rag-edu-backend/internal/logger"
	"rag-edu-backend/utils"
)

// PageText is the extracted text of one page, 1-based.
type PageText struct {
	PageNumber int
	Text       string
}

// PDFExtractor extracts per-page plain text from PDF bytes.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// ExtractPages parses a PDF and returns the normalized text of every
// page. Pages that fail individual extraction are kept as empty text so
// page numbering stays aligned with the document. Malformed input that
// cannot be parsed at all maps to a bad-input error.
func (e *PDFExtractor) ExtractPages(content []byte, filename string) ([]PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, utils.Wrap(utils.KindBadInput, err, "file %q is not a readable PDF", filename)
	}

	numPages := reader.NumPage()
	pages := make([]PageText, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, PageText{PageNumber: i})
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract page text", "filename", filename, "page", i, "error", err)
			pages = append(pages, PageText{PageNumber: i})
			continue
		}

		pages = append(pages, PageText{PageNumber: i, Text: normalizeText(text)})
	}

	if len(pages) == 0 {
		return nil, utils.BadInput("file %q contains no pages", filename)
	}
	return pages, nil
}

// normalizeText replaces control characters (other than tab and
// newline) with spaces and collapses runs of three or more newlines
// down to two.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x20 && r != '\t' && r != '\n' {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return multiNewline.ReplaceAllString(b.String(), "\n\n")
}

// NonWhitespaceLen counts the non-whitespace runes of s.
func NonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			n++
		}
	}
	return n
}

// fileSeparator marks the boundary between concatenated files in a
// multi-file upload.
func fileSeparator(filename string) string {
	return fmt.Sprintf("\n\n--- %s ---\n\n", filename)
}
