package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.windowSize != DefaultWindowSize {
			t.Errorf("expected windowSize %d, got %d", DefaultWindowSize, c.windowSize)
		}
		if c.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, c.overlap)
		}
	})

	t.Run("custom window size", func(t *testing.T) {
		c, err := New(WithWindowSize(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.windowSize != 100 {
			t.Errorf("expected windowSize 100, got %d", c.windowSize)
		}
	})

	t.Run("overlap equal to window size rejected", func(t *testing.T) {
		_, err := New(WithWindowSize(10), WithOverlap(10))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("overlap above window size rejected", func(t *testing.T) {
		_, err := New(WithWindowSize(10), WithOverlap(15))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c, err := New(WithWindowSize(0), WithOverlap(-1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.windowSize != DefaultWindowSize {
			t.Errorf("expected default windowSize, got %d", c.windowSize)
		}
		if c.overlap != DefaultOverlap {
			t.Errorf("expected default overlap, got %d", c.overlap)
		}
	})
}

func TestSplit_EmptyText(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		if chunks := c.Split("doc-1", text); len(chunks) != 0 {
			t.Errorf("expected 0 chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestSplit_IndexContiguity(t *testing.T) {
	c, err := New(WithWindowSize(10), WithOverlap(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := c.Split("doc-1", tokens(100))
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.DocumentID != "doc-1" {
			t.Errorf("chunk %d has document %q", i, chunk.DocumentID)
		}
		if len(chunk.Embedding) != 0 {
			t.Errorf("chunk %d has a premature embedding", i)
		}
	}
}

func TestSplit_OverlapWindows(t *testing.T) {
	// window=10, overlap=3 over 25 tokens: windows start at 0, 7, 14, 21.
	c, err := New(WithWindowSize(10), WithOverlap(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := c.Split("doc-1", tokens(25))
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	wantStarts := []int{0, 7, 14, 21}
	for i, start := range wantStarts {
		first := fmt.Sprintf("t%d", start)
		if !strings.HasPrefix(chunks[i].Content, first+" ") && chunks[i].Content != first {
			t.Errorf("chunk %d starts with %q, want token %q", i, chunks[i].Content[:8], first)
		}
	}

	// Token 7 overlaps chunks 0 and 1.
	for _, i := range []int{0, 1} {
		if !containsToken(chunks[i].Content, "t7") {
			t.Errorf("chunk %d missing overlapping token t7: %q", i, chunks[i].Content)
		}
	}

	// The final window is shorter than the window size.
	if got := len(strings.Fields(chunks[3].Content)); got != 4 {
		t.Errorf("expected final window of 4 tokens, got %d", got)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c, err := New(WithWindowSize(8), WithOverlap(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := "the   quick\nbrown fox jumps\t over the lazy dog " + tokens(40)
	a := c.Split("doc-1", text)
	b := c.Split("doc-1", text)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Content != b[i].Content {
			t.Errorf("chunk %d content differs:\n%q\n%q", i, a[i].Content, b[i].Content)
		}
	}
}

func TestSplit_NormalisesWhitespace(t *testing.T) {
	c, err := New(WithWindowSize(10), WithOverlap(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := c.Split("doc-1", "a\t\tb\n\nc   d")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "a b c d" {
		t.Errorf("expected single-space joins, got %q", chunks[0].Content)
	}
}

// tokens builds a space-separated sequence t0 t1 ... t(n-1).
func tokens(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("t%d", i)
	}
	return strings.Join(parts, " ")
}

func containsToken(content, token string) bool {
	for _, f := range strings.Fields(content) {
		if f == token {
			return true
		}
	}
	return false
}
