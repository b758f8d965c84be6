package driven

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// DocumentStore persists document records.
// Implementations are stateless façades over the backing store; they
// hold no long-lived state of their own.
type DocumentStore interface {
	// Create inserts a new document record.
	Create(ctx context.Context, doc *domain.Document) error

	// FindOne returns the first document matching all filters,
	// or domain.ErrNotFound.
	FindOne(ctx context.Context, filters domain.DocumentFilters) (*domain.Document, error)

	// FindAll returns documents matching all filters, in creation order.
	FindAll(ctx context.Context, filters domain.DocumentFilters) ([]domain.Document, error)

	// FindAny returns documents matching any filter, in creation order.
	FindAny(ctx context.Context, filters domain.DocumentFilters) ([]domain.Document, error)

	// Count returns the number of documents matching all filters.
	Count(ctx context.Context, filters domain.DocumentFilters) (int64, error)

	// Exists probes for at least one matching document. The probe is
	// capped at one row.
	Exists(ctx context.Context, filters domain.DocumentFilters) (bool, error)

	// Update applies a partial update and returns the updated record.
	// Absent fields are untouched, null fields cleared, set fields written.
	Update(ctx context.Context, id string, update domain.DocumentUpdate) (*domain.Document, error)

	// Delete removes a document and, transitively, its chunks.
	Delete(ctx context.Context, id string) error
}
