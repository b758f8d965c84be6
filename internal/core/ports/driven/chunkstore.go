package driven

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// ChunkStore persists document chunks and serves similarity queries.
type ChunkStore interface {
	// CreateAll inserts all chunks in one statement. Empty input is a
	// no-op. The single statement makes the batch atomic: a failure
	// leaves zero rows inserted.
	CreateAll(ctx context.Context, chunks []domain.DocumentChunk) error

	// FindRelevant returns the limit chunks nearest to the query
	// embedding, ordered by descending similarity score. Filters
	// compile to query conditions; chat/project/user filters join the
	// owning document. Tie order between equal scores is unspecified.
	FindRelevant(ctx context.Context, embedding []float32, limit int, filters domain.DocumentChunkFilters) ([]domain.DocumentChunk, error)

	// FindByDocument returns a document's chunks in index order.
	FindByDocument(ctx context.Context, documentID string) ([]domain.DocumentChunk, error)
}
