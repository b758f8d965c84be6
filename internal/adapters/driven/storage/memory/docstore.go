package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	order     []string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]domain.Document)}
}

// Create stores a new document.
func (s *DocumentStore) Create(_ context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return fmt.Errorf("%w: document %s", domain.ErrAlreadyExists, doc.ID)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	s.documents[doc.ID] = *doc
	s.order = append(s.order, doc.ID)
	return nil
}

// FindOne returns the first document matching all filters.
func (s *DocumentStore) FindOne(ctx context.Context, filters domain.DocumentFilters) (*domain.Document, error) {
	docs, err := s.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &docs[0], nil
}

// FindAll returns documents matching all filters, in creation order.
func (s *DocumentStore) FindAll(_ context.Context, filters domain.DocumentFilters) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, id := range s.order {
		doc := s.documents[id]
		if matchesDocumentFilters(doc, filters, true) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// FindAny returns documents matching any filter, in creation order.
func (s *DocumentStore) FindAny(_ context.Context, filters domain.DocumentFilters) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, id := range s.order {
		doc := s.documents[id]
		if matchesDocumentFilters(doc, filters, false) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Count returns the number of documents matching all filters.
func (s *DocumentStore) Count(ctx context.Context, filters domain.DocumentFilters) (int64, error) {
	docs, err := s.FindAll(ctx, filters)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Exists reports whether any document matches all filters.
func (s *DocumentStore) Exists(ctx context.Context, filters domain.DocumentFilters) (bool, error) {
	docs, err := s.FindAll(ctx, filters)
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// Update applies a partial update and returns the updated record.
func (s *DocumentStore) Update(_ context.Context, id string, update domain.DocumentUpdate) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	applyField(update.Name, func(v string) { doc.Name = v }, nil)
	applyField(update.MimeType, func(v string) { doc.MimeType = v }, nil)
	applyField(update.Processed, func(v bool) { doc.Processed = v }, nil)
	applyField(update.ChatID, func(v string) { doc.ChatID = &v }, func() { doc.ChatID = nil })
	applyField(update.ProjectID, func(v string) { doc.ProjectID = &v }, func() { doc.ProjectID = nil })
	doc.UpdatedAt = time.Now().UTC()

	s.documents[id] = doc
	return &doc, nil
}

// Delete removes a document.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	s.order = slices.DeleteFunc(s.order, func(other string) bool { return other == id })
	return nil
}

// get returns a copy of a document without filter evaluation.
func (s *DocumentStore) get(id string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	return doc, ok
}

// applyField runs set or clear according to the field's three states.
func applyField[T any](f domain.Field[T], set func(T), clear func()) {
	if !f.Present() {
		return
	}
	if f.IsNull() {
		if clear != nil {
			clear()
		}
		return
	}
	if v, ok := f.Value(); ok {
		set(v)
	}
}

// matchesDocumentFilters evaluates filters against a document. With
// all set, every present filter must match; otherwise one suffices.
// No filters set matches everything in both modes.
func matchesDocumentFilters(doc domain.Document, filters domain.DocumentFilters, all bool) bool {
	type check struct {
		present bool
		match   bool
	}
	checks := []check{
		{len(filters.IDs) > 0, slices.Contains(filters.IDs, doc.ID)},
		{filters.UserID != nil, filters.UserID != nil && doc.UserID == *filters.UserID},
		{filters.ChatID != nil, filters.ChatID != nil && doc.ChatID != nil && *doc.ChatID == *filters.ChatID},
		{filters.ProjectID != nil, filters.ProjectID != nil && doc.ProjectID != nil && *doc.ProjectID == *filters.ProjectID},
		{filters.Processed != nil, filters.Processed != nil && doc.Processed == *filters.Processed},
		{filters.Name != nil, filters.Name != nil && containsFold(doc.Name, *filters.Name)},
	}

	any := false
	for _, c := range checks {
		if !c.present {
			continue
		}
		any = true
		if all && !c.match {
			return false
		}
		if !all && c.match {
			return true
		}
	}
	if !any {
		return true
	}
	return all
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
