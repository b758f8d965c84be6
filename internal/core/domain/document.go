package domain

import "time"

// Document represents an uploaded file's metadata.
// The raw bytes live in the file store under StorageKey; the extracted
// text lives in the document's chunks once processing completes.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// StorageKey is the opaque key of the raw bytes in the file store.
	StorageKey string

	// Name is the human-readable display name.
	Name string

	// MimeType is the declared MIME type of the uploaded bytes.
	MimeType string

	// SizeBytes is the raw file size.
	SizeBytes int64

	// Processed reports whether the document has been chunked and embedded.
	Processed bool

	// ChatID links the document to an owning chat, if any.
	ChatID *string

	// ProjectID links the document to an owning project, if any.
	ProjectID *string

	// UserID is the owning user.
	UserID string

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// Validate checks application-layer invariants.
// A document may belong to a chat or a project, never both.
func (d *Document) Validate() error {
	if d.ChatID != nil && d.ProjectID != nil {
		return ErrInvalidInput
	}
	return nil
}

// DocumentChunk is a bounded slice of a document's extracted text,
// individually embedded and indexed. Chunks are immutable once written.
type DocumentChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Index is the zero-based position within the owning document.
	// Indices are contiguous and assigned at chunking time.
	Index int

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation. Empty until the
	// embedding fan-out completes.
	Embedding []float32

	// DocumentID links to the owning Document.
	DocumentID string

	// CreatedAt is when the chunk row was inserted.
	CreatedAt time.Time

	// Score is the similarity to the query vector. Populated only
	// on retrieval results.
	Score float64

	// Document is the owning document. Populated only when a
	// retrieval query requests it.
	Document *Document
}
