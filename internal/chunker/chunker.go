package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"pdfqa/internal/models"
)

var (
	// ErrInvalidInput means the input text failed validation.
	ErrInvalidInput = errors.New("invalid input text")
	// ErrNoChunks means the document produced no meaningful chunks.
	ErrNoChunks = errors.New("no meaningful chunks produced")
)

const (
	DefaultMinChunkLength = 50
	DefaultMaxChunkLength = 500
	DefaultMaxInputLength = 1_000_000

	meaningfulThreshold = 5
)

var (
	multiNewline = regexp.MustCompile(`\n{2,}`)
	nonWordOnly  = regexp.MustCompile(`^[\W\d_]+$`)
)

// SentenceSegmenter splits a paragraph into an ordered sequence of sentences.
// Concatenating the returned sentences must reconstruct the paragraph's
// content up to whitespace.
type SentenceSegmenter interface {
	Segment(text string) []string
}

// Chunker packs sentences into chunks bounded by a minimum and maximum
// character length. Sentences are never split: a single sentence longer than
// the maximum becomes a chunk on its own.
type Chunker struct {
	segmenter      SentenceSegmenter
	minChunkLength int
	maxChunkLength int
	maxInputLength int
}

func NewChunker(segmenter SentenceSegmenter, minChunkLength, maxChunkLength, maxInputLength int) *Chunker {
	if minChunkLength <= 0 {
		minChunkLength = DefaultMinChunkLength
	}
	if maxChunkLength <= 0 {
		maxChunkLength = DefaultMaxChunkLength
	}
	if maxInputLength <= 0 {
		maxInputLength = DefaultMaxInputLength
	}
	return &Chunker{
		segmenter:      segmenter,
		minChunkLength: minChunkLength,
		maxChunkLength: maxChunkLength,
		maxInputLength: maxInputLength,
	}
}

// ValidateText bounds-checks raw input text and strips surrounding whitespace.
func ValidateText(text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxInputLength
	}
	if len(text) > maxLength {
		return "", fmt.Errorf("%w: text exceeds %d characters", ErrInvalidInput, maxLength)
	}
	return strings.TrimSpace(text), nil
}

// IsMeaningful reports whether a string carries enough content to index:
// at least meaningfulThreshold characters after trimming, and at least one
// alphabetic word character.
func IsMeaningful(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < meaningfulThreshold {
		return false
	}
	return !nonWordOnly.MatchString(s)
}

// SplitParagraphs collapses runs of blank lines and splits the text into
// paragraphs, keeping only those that are meaningful and at least
// minChunkLength characters long.
func SplitParagraphs(text string, minChunkLength int) []string {
	normalized := multiNewline.ReplaceAllString(text, "\n\n")
	var paragraphs []string
	for _, candidate := range strings.Split(normalized, "\n\n") {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) < minChunkLength {
			continue
		}
		if !IsMeaningful(trimmed) {
			continue
		}
		paragraphs = append(paragraphs, trimmed)
	}
	return paragraphs
}

// Chunk validates the text, splits it into paragraphs and packs each
// paragraph's sentences into bounded chunks. Chunk boundaries never cross a
// paragraph boundary. The returned chunks are in document reading order and
// indexed by position.
func (c *Chunker) Chunk(text string) ([]models.Chunk, error) {
	text, err := ValidateText(text, c.maxInputLength)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, paragraph := range SplitParagraphs(text, c.minChunkLength) {
		var current []string
		currentLength := 0

		flush := func() {
			if len(current) == 0 {
				return
			}
			content := strings.TrimSpace(strings.Join(current, " "))
			chunks = append(chunks, models.Chunk{Content: content, Index: len(chunks)})
			current = nil
			currentLength = 0
		}

		for _, sentence := range c.segmenter.Segment(paragraph) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			if currentLength+len(sentence) > c.maxChunkLength && len(current) > 0 {
				flush()
			}
			current = append(current, sentence)
			currentLength += len(sentence)
		}
		// final partial chunk for the paragraph, kept even if short
		flush()
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document has no qualifying content", ErrNoChunks)
	}
	return chunks, nil
}
