package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// ExtractorRegistry resolves text extractors by MIME type.
type ExtractorRegistry struct {
	mu     sync.RWMutex
	byMIME map[string]driven.Extractor
}

// NewExtractorRegistry creates a registry holding the given extractors.
func NewExtractorRegistry(extractors ...driven.Extractor) *ExtractorRegistry {
	r := &ExtractorRegistry{byMIME: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its supported MIME types.
// A later registration for the same type wins.
func (r *ExtractorRegistry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mimeType := range e.SupportedMIMETypes() {
		r.byMIME[normalizeMIMEType(mimeType)] = e
	}
}

// ForMIMEType returns the extractor registered for the given MIME type.
func (r *ExtractorRegistry) ForMIMEType(mimeType string) (driven.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byMIME[normalizeMIMEType(mimeType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType)
	}
	return e, nil
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *ExtractorRegistry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byMIME))
	for mimeType := range r.byMIME {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}

// normalizeMIMEType lowercases and strips parameters, so
// "text/plain; charset=utf-8" resolves the "text/plain" extractor.
func normalizeMIMEType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
