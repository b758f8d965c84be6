package driving

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// UploadRequest carries everything needed to register a new document.
type UploadRequest struct {
	// Name is the display name, typically the original filename.
	Name string

	// MimeType is the declared MIME type of Data.
	MimeType string

	// UserID is the owning user.
	UserID string

	// ChatID optionally attaches the document to a chat.
	ChatID *string

	// ProjectID optionally attaches the document to a project.
	// Mutually exclusive with ChatID.
	ProjectID *string

	// Data is the raw file content.
	Data []byte
}

// DocumentService manages the document lifecycle: upload, processing
// into embedded chunks, retrieval, and record CRUD.
type DocumentService interface {
	// Upload stores the raw bytes and creates an unprocessed
	// document record.
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)

	// Process extracts, chunks, embeds and persists a document's
	// text, then marks the document processed. Any embedding failure
	// aborts the call before anything is persisted.
	Process(ctx context.Context, documentID string) error

	// RelevantChunks embeds the query text and returns the limit most
	// similar chunks under the given filters.
	RelevantChunks(ctx context.Context, query string, limit int, filters domain.DocumentChunkFilters) ([]domain.DocumentChunk, error)

	// RelevantChunksByEmbedding is RelevantChunks for callers that
	// already hold a query vector.
	RelevantChunksByEmbedding(ctx context.Context, embedding []float32, limit int, filters domain.DocumentChunkFilters) ([]domain.DocumentChunk, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns documents matching all filters.
	List(ctx context.Context, filters domain.DocumentFilters) ([]domain.Document, error)

	// Content returns a document's extracted text, reassembled from
	// its chunks in index order.
	Content(ctx context.Context, documentID string) (string, error)

	// Update applies a partial update to a document record.
	Update(ctx context.Context, documentID string, update domain.DocumentUpdate) (*domain.Document, error)

	// Delete removes a document record and its stored bytes.
	Delete(ctx context.Context, documentID string) error
}
