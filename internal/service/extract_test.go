package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_RejectsNonPDFMime(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractText("image/png", []byte("%PDF-1.4 ..."))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.ExtractText("", []byte("%PDF-1.4 ..."))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExtractText_RejectsEmptyFile(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractText("application/pdf", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExtractText_RejectsMissingMagicBytes(t *testing.T) {
	e := NewExtractor()

	// Claims PDF but carries no %PDF header
	_, err := e.ExtractText("application/pdf", []byte("just some text pretending"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractText_RejectsCorruptPDF(t *testing.T) {
	e := NewExtractor()

	// Right magic bytes, garbage body
	_, err := e.ExtractText("application/pdf", []byte("%PDF-1.7 garbage without structure"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractText_MimeTypeCaseInsensitive(t *testing.T) {
	e := NewExtractor()

	// Upper-cased MIME must still pass validation (and then fail extraction
	// on the garbage body, not validation)
	_, err := e.ExtractText("Application/PDF", []byte("%PDF-1.7 garbage"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapseWhitespace("  a   b\t\tc  \n  next   line \n\n")
	assert.Equal(t, "a b c\nnext line", got)
}
