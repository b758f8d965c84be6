package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// It consults the document store for ownership filters and document
// expansion, the way the SQLite adapter joins on documents.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.DocumentChunk
	order  []string
	docs   *DocumentStore
}

// NewChunkStore creates a new in-memory chunk store backed by the
// given document store.
func NewChunkStore(docs *DocumentStore) *ChunkStore {
	return &ChunkStore{chunks: make(map[string]domain.DocumentChunk), docs: docs}
}

// CreateAll inserts all chunks or none of them.
func (s *ChunkStore) CreateAll(_ context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if _, ok := s.chunks[chunk.ID]; ok {
			return fmt.Errorf("%w: chunk %s", domain.ErrAlreadyExists, chunk.ID)
		}
	}

	now := time.Now().UTC()
	for _, chunk := range chunks {
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = now
		}
		s.chunks[chunk.ID] = chunk
		s.order = append(s.order, chunk.ID)
	}
	return nil
}

// FindRelevant ranks chunks by cosine similarity to the query
// embedding and returns the top limit, highest score first.
func (s *ChunkStore) FindRelevant(_ context.Context, embedding []float32, limit int, filters domain.DocumentChunkFilters) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.DocumentChunk
	for _, id := range s.order {
		chunk := s.chunks[id]
		doc, ok := s.docs.get(chunk.DocumentID)

		if filters.DocumentID != nil && chunk.DocumentID != *filters.DocumentID {
			continue
		}
		if filters.ChatID != nil && (!ok || doc.ChatID == nil || *doc.ChatID != *filters.ChatID) {
			continue
		}
		if filters.ProjectID != nil && (!ok || doc.ProjectID == nil || *doc.ProjectID != *filters.ProjectID) {
			continue
		}
		if filters.UserID != nil && (!ok || doc.UserID != *filters.UserID) {
			continue
		}

		chunk.Score = cosineSimilarity(embedding, chunk.Embedding)
		if filters.IncludeDocument && ok {
			owner := doc
			chunk.Document = &owner
		}
		matched = append(matched, chunk)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// FindByDocument returns a document's chunks in index order.
func (s *ChunkStore) FindByDocument(_ context.Context, documentID string) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.DocumentChunk
	for _, id := range s.order {
		if chunk := s.chunks[id]; chunk.DocumentID == documentID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// DeleteByDocument removes all chunks of a document, mirroring the
// SQLite adapter's cascade.
func (s *ChunkStore) DeleteByDocument(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	for _, id := range s.order {
		if s.chunks[id].DocumentID == documentID {
			delete(s.chunks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
