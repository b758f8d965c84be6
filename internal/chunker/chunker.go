// Package chunker provides a fixed-size overlapping text chunker.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// DefaultWindowSize is the default number of tokens per chunk.
const DefaultWindowSize = 500

// DefaultOverlap is the default number of tokens shared between
// consecutive chunks.
const DefaultOverlap = 50

// Chunker splits document text into overlapping word windows.
// Tokens are whitespace-delimited; each window joins its tokens with
// single spaces, so chunking is deterministic for a given input.
type Chunker struct {
	windowSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithWindowSize sets the window size in tokens.
func WithWindowSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.windowSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive windows in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options. An overlap equal to or
// larger than the window size would stall the window advance, so that
// combination is rejected.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.windowSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than window size %d",
			domain.ErrInvalidInput, c.overlap, c.windowSize)
	}

	return c, nil
}

// Split chunks text into windows of up to windowSize tokens, advancing
// by (windowSize - overlap) tokens per step. Chunk indices are assigned
// in output order starting at 0; embeddings are left empty. Empty or
// all-whitespace text yields no chunks.
func (c *Chunker) Split(documentID, text string) []domain.DocumentChunk {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := c.windowSize - c.overlap
	estimated := len(tokens)/step + 1
	chunks := make([]domain.DocumentChunk, 0, estimated)

	for start := 0; start < len(tokens); start += step {
		end := start + c.windowSize
		if end > len(tokens) {
			end = len(tokens)
		}

		chunks = append(chunks, domain.DocumentChunk{
			ID:         uuid.New().String(),
			Index:      len(chunks),
			Content:    strings.Join(tokens[start:end], " "),
			DocumentID: documentID,
		})
	}

	return chunks
}
