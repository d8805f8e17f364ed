package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-edu-backend/utils"
)

func TestNormalizeText(t *testing.T) {
	t.Run("control characters become spaces", func(t *testing.T) {
		assert.Equal(t, "a b c", normalizeText("a\x00b\x07c"))
		assert.Equal(t, "line one line two", normalizeText("line one\rline two"))
	})

	t.Run("tabs and newlines survive", func(t *testing.T) {
		assert.Equal(t, "a\tb\nc", normalizeText("a\tb\nc"))
	})

	t.Run("newline runs collapse to a blank line", func(t *testing.T) {
		assert.Equal(t, "para one\n\npara two", normalizeText("para one\n\n\n\n\npara two"))
		assert.Equal(t, "para one\n\npara two", normalizeText("para one\n\npara two"))
	})
}

func TestNonWhitespaceLen(t *testing.T) {
	assert.Equal(t, 0, NonWhitespaceLen("  \t\n\r "))
	assert.Equal(t, 5, NonWhitespaceLen(" a b c d e "))
	assert.Equal(t, 5, NonWhitespaceLen("héllo"))
}

func TestExtractPagesRejectsGarbage(t *testing.T) {
	extractor := NewPDFExtractor()

	_, err := extractor.ExtractPages([]byte("this is not a pdf at all"), "notes.pdf")
	require.Error(t, err)
	assert.Equal(t, utils.KindBadInput, utils.KindOf(err))
	assert.Contains(t, err.Error(), "notes.pdf")
}

func TestFileSeparator(t *testing.T) {
	assert.Equal(t, "\n\n--- lecture.pdf ---\n\n", fileSeparator("lecture.pdf"))
}
