package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize      = 800
	DefaultChunkOverlap   = 150
	DefaultChunkMinLength = 20
)

// Chunker splits extracted text into overlapping fixed-size windows.
type Chunker struct {
	size    int
	overlap int
	minLen  int
}

// NewChunker validates the window parameters up front. An overlap equal to
// or larger than the window size would make the window advance by zero or
// a negative amount, so it is a configuration error, not a runtime condition.
func NewChunker(size, overlap, minLen int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap, minLen: minLen}, nil
}

// Split slides a window of size chars across text, advancing size-overlap
// each step. Windows are trimmed and windows shorter than the minimum length
// are dropped (near-empty fragments are not worth embedding).
//
// Windows are measured in runes, not bytes: a window edge must never split a
// multi-byte character, since the resulting invalid UTF-8 would be rejected
// on insert.
func (ck *Chunker) Split(text string) []string {
	runes := []rune(text)
	step := ck.size - ck.overlap
	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + ck.size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[i:end]))
		if utf8.RuneCountInString(chunk) > ck.minLen {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
