package service

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// MinReadableLength guards against scanned or empty PDFs: anything shorter
// than this after extraction is treated as unreadable.
const MinReadableLength = 10

const pdfMimeType = "application/pdf"

var whitespaceRe = regexp.MustCompile(`[ \t\x{00A0}]+`)

// Extractor turns an uploaded PDF binary into plain text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText validates the declared MIME type and the %PDF magic bytes,
// then extracts plain text. Returns ErrValidation for non-PDF input and
// ErrExtraction when the parser fails or the result is too short to index.
func (e *Extractor) ExtractText(mimeType string, data []byte) (string, error) {
	if strings.ToLower(strings.TrimSpace(mimeType)) != pdfMimeType {
		return "", fmt.Errorf("%w: only PDF files are supported, got %q", ErrValidation, mimeType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrValidation)
	}
	if !isPDF(data) {
		return "", fmt.Errorf("%w: file claims pdf but is missing the %%PDF header", ErrExtraction)
	}

	text, err := extractPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(text) < MinReadableLength {
		return "", fmt.Errorf("%w: document appears to be empty or not readable", ErrExtraction)
	}
	return text, nil
}

func isPDF(b []byte) bool {
	// PDF starts with "%PDF-"
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func extractPDF(data []byte) (string, error) {
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

func collapseWhitespace(s string) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
