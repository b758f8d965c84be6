package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quarrylabs/quarry/internal/chunker"
	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultChunkLimit is the number of chunks returned when the caller
// does not specify a limit.
const DefaultChunkLimit = 10

// DocumentService manages the document lifecycle from upload through
// processing to retrieval.
type DocumentService struct {
	docStore     driven.DocumentStore
	chunkStore   driven.ChunkStore
	projectStore driven.ProjectStore
	fileStore    driven.FileStore
	embedder     driven.EmbeddingService
	extractors   *ExtractorRegistry
	chunker      *chunker.Chunker

	// processing serializes Process per document ID so a concurrent
	// re-process cannot insert duplicate chunks. Entries are reference
	// counted and removed once no caller holds them.
	mu         sync.Mutex
	processing map[string]*docLock
}

// docLock is one document's processing lock plus the number of callers
// currently holding or waiting on it.
type docLock struct {
	mu   sync.Mutex
	refs int
}

// NewDocumentService creates a new document service.
// The embedder parameter is optional (can be nil); without it,
// processing and text retrieval are unavailable.
func NewDocumentService(
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	projectStore driven.ProjectStore,
	fileStore driven.FileStore,
	embedder driven.EmbeddingService,
	extractors *ExtractorRegistry,
	textChunker *chunker.Chunker,
) *DocumentService {
	return &DocumentService{
		docStore:     docStore,
		chunkStore:   chunkStore,
		projectStore: projectStore,
		fileStore:    fileStore,
		embedder:     embedder,
		extractors:   extractors,
		chunker:      textChunker,
		processing:   make(map[string]*docLock),
	}
}

// Upload stores the raw bytes and creates an unprocessed document
// record.
func (s *DocumentService) Upload(ctx context.Context, req driving.UploadRequest) (*domain.Document, error) {
	if req.Name == "" || req.UserID == "" {
		return nil, fmt.Errorf("%w: name and user are required", domain.ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}

	doc := &domain.Document{
		ID:         uuid.New().String(),
		StorageKey: uuid.New().String(),
		Name:       req.Name,
		MimeType:   req.MimeType,
		SizeBytes:  int64(len(req.Data)),
		UserID:     req.UserID,
		ChatID:     req.ChatID,
		ProjectID:  req.ProjectID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		exists, err := s.projectStore.Exists(ctx, domain.ProjectFilters{IDs: []string{*req.ProjectID}})
		if err != nil {
			return nil, fmt.Errorf("checking project: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, *req.ProjectID)
		}
	}

	if err := s.fileStore.Write(ctx, doc.StorageKey, req.Data); err != nil {
		return nil, fmt.Errorf("storing file: %w", err)
	}
	if err := s.docStore.Create(ctx, doc); err != nil {
		// Don't leave orphaned bytes behind a failed record.
		if delErr := s.fileStore.Delete(ctx, doc.StorageKey); delErr != nil {
			logger.Warn("Failed to clean up stored file %s: %v", doc.StorageKey, delErr)
		}
		return nil, err
	}

	logger.Debug("Uploaded document %s (%s, %d bytes)", doc.ID, doc.MimeType, doc.SizeBytes)
	return doc, nil
}

// Process extracts, chunks, embeds and persists a document's text,
// then marks the document processed. Embedding runs as a parallel
// fan-out; any failure aborts the call before anything is persisted.
func (s *DocumentService) Process(ctx context.Context, documentID string) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	unlock := s.lockDocument(documentID)
	defer unlock()

	doc, err := s.docStore.FindOne(ctx, domain.DocumentFilters{IDs: []string{documentID}})
	if err != nil {
		return err
	}
	if doc.Processed {
		logger.Debug("Document %s already processed, skipping", documentID)
		return nil
	}

	data, err := s.fileStore.Read(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("reading stored file: %w", err)
	}

	text, err := s.extractText(ctx, doc.MimeType, data)
	if err != nil {
		return err
	}

	chunks := s.chunker.Split(doc.ID, text)
	logger.Debug("Document %s: %d chunks from %d bytes of text", doc.ID, len(chunks), len(text))

	if len(chunks) > 0 {
		if err := s.embedChunks(ctx, chunks); err != nil {
			return err
		}
		if err := s.chunkStore.CreateAll(ctx, chunks); err != nil {
			return err
		}
	}

	if _, err := s.docStore.Update(ctx, doc.ID, domain.DocumentUpdate{
		Processed: domain.Set(true),
	}); err != nil {
		return err
	}

	logger.Info("Processed document %s (%d chunks)", doc.ID, len(chunks))
	return nil
}

// lockDocument acquires the per-document processing lock and returns
// the release function. The last release drops the map entry so the
// map does not grow with every document ever processed.
func (s *DocumentService) lockDocument(documentID string) func() {
	s.mu.Lock()
	lock, ok := s.processing[documentID]
	if !ok {
		lock = &docLock{}
		s.processing[documentID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.processing, documentID)
		}
		s.mu.Unlock()
	}
}

// extractText resolves an extractor for the MIME type and runs it.
// Unrecognized types yield empty text, which processes to zero chunks.
func (s *DocumentService) extractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	extractor, err := s.extractors.ForMIMEType(mimeType)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) {
			logger.Warn("No extractor for MIME type %q, storing without chunks", mimeType)
			return "", nil
		}
		return "", err
	}
	return extractor.Extract(ctx, data)
}

// embedChunks fills in each chunk's embedding in parallel. The batch
// is all-or-nothing: the first failure is returned and the caller must
// not persist any chunk, though in-flight sibling requests run to
// completion before this returns.
func (s *DocumentService) embedChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	var g errgroup.Group
	for i := range chunks {
		i := i
		g.Go(func() error {
			embedding, err := s.embedder.Embed(ctx, chunks[i].Content)
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %v", domain.ErrEmbeddingFailed, chunks[i].Index, err)
			}
			chunks[i].Embedding = embedding
			return nil
		})
	}
	return g.Wait()
}

// RelevantChunks embeds the query text and returns the most similar
// chunks under the given filters.
func (s *DocumentService) RelevantChunks(ctx context.Context, query string, limit int, filters domain.DocumentChunkFilters) ([]domain.DocumentChunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrEmbeddingFailed, err)
	}
	return s.RelevantChunksByEmbedding(ctx, embedding, limit, filters)
}

// RelevantChunksByEmbedding returns the most similar chunks for a
// caller-supplied query vector.
func (s *DocumentService) RelevantChunksByEmbedding(ctx context.Context, embedding []float32, limit int, filters domain.DocumentChunkFilters) ([]domain.DocumentChunk, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultChunkLimit
	}

	chunks, err := s.chunkStore.FindRelevant(ctx, embedding, limit, filters)
	if err != nil {
		return nil, err
	}
	logger.Debug("Retrieved %d relevant chunks (limit %d)", len(chunks), limit)
	return chunks, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.FindOne(ctx, domain.DocumentFilters{IDs: []string{documentID}})
}

// List returns documents matching all filters.
func (s *DocumentService) List(ctx context.Context, filters domain.DocumentFilters) ([]domain.Document, error) {
	return s.docStore.FindAll(ctx, filters)
}

// Content returns a document's extracted text, reassembled from its
// chunks in index order. Overlapping tokens appear in both chunks.
func (s *DocumentService) Content(ctx context.Context, documentID string) (string, error) {
	if _, err := s.Get(ctx, documentID); err != nil {
		return "", err
	}

	chunks, err := s.chunkStore.FindByDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(chunk.Content)
	}
	return sb.String(), nil
}

// Update applies a partial update to a document record. An update that
// would leave the document referencing both a chat and a project is
// rejected, including against ownership the record already carries.
func (s *DocumentService) Update(ctx context.Context, documentID string, update domain.DocumentUpdate) (*domain.Document, error) {
	doc, err := s.docStore.FindOne(ctx, domain.DocumentFilters{IDs: []string{documentID}})
	if err != nil {
		return nil, err
	}

	chatID := resolveOwner(doc.ChatID, update.ChatID)
	projectID := resolveOwner(doc.ProjectID, update.ProjectID)
	if chatID != nil && projectID != nil {
		return nil, fmt.Errorf("%w: document cannot belong to both a chat and a project", domain.ErrInvalidInput)
	}

	return s.docStore.Update(ctx, documentID, update)
}

// resolveOwner computes the ownership reference an update would leave
// behind: the new value when the field is set, nil when it clears, the
// current value when it is absent.
func resolveOwner(current *string, f domain.Field[string]) *string {
	if !f.Present() {
		return current
	}
	if f.IsNull() {
		return nil
	}
	v, _ := f.Value()
	return &v
}

// Delete removes a document record and its stored bytes. Chunk rows
// go with the record.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docStore.FindOne(ctx, domain.DocumentFilters{IDs: []string{documentID}})
	if err != nil {
		return err
	}

	if err := s.docStore.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := s.fileStore.Delete(ctx, doc.StorageKey); err != nil {
		logger.Warn("Failed to delete stored file %s: %v", doc.StorageKey, err)
	}
	return nil
}
