package extractors

import (
	"context"
	"strings"

	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// Ensure PlainText implements the interface.
var _ driven.Extractor = (*PlainText)(nil)

// PlainText reads text files as UTF-8.
type PlainText struct{}

// NewPlainText creates a plain-text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *PlainText) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/markdown", "text/csv"}
}

// Extract decodes data as UTF-8, dropping invalid byte sequences and
// a leading byte-order mark.
func (e *PlainText) Extract(_ context.Context, data []byte) (string, error) {
	text := strings.ToValidUTF8(string(data), "")
	return strings.TrimPrefix(text, "\ufeff"), nil
}
