package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/quarry/internal/chunker"
	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
)

// stubEmbedder returns a deterministic vector per text and can be told
// to fail on texts containing a marker.
type stubEmbedder struct {
	calls  atomic.Int64
	failOn string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, errors.New("provider rejected request")
	}
	return []float32{float32(len(strings.Fields(text))), 1}, nil
}

func (s *stubEmbedder) Dimensions() int   { return 2 }
func (s *stubEmbedder) ModelName() string { return "stub-model" }
func (s *stubEmbedder) Close() error      { return nil }

// stubExtractor treats the raw bytes as the text.
type stubExtractor struct{}

func (stubExtractor) SupportedMIMETypes() []string { return []string{"text/plain"} }
func (stubExtractor) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

type documentFixture struct {
	service  *DocumentService
	docs     *memory.DocumentStore
	chunks   *memory.ChunkStore
	projects *memory.ProjectStore
	files    *memory.FileStore
	embedder *stubEmbedder
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	docs := memory.NewDocumentStore()
	chunks := memory.NewChunkStore(docs)
	projects := memory.NewProjectStore(docs)
	files := memory.NewFileStore()
	embedder := &stubEmbedder{}

	textChunker, err := chunker.New(chunker.WithWindowSize(5), chunker.WithOverlap(1))
	require.NoError(t, err)

	service := NewDocumentService(docs, chunks, projects, files, embedder,
		NewExtractorRegistry(stubExtractor{}), textChunker)

	return &documentFixture{
		service:  service,
		docs:     docs,
		chunks:   chunks,
		projects: projects,
		files:    files,
		embedder: embedder,
	}
}

func (f *documentFixture) upload(t *testing.T, text string) *domain.Document {
	t.Helper()
	doc, err := f.service.Upload(context.Background(), driving.UploadRequest{
		Name:     "notes.txt",
		MimeType: "text/plain",
		UserID:   "u1",
		Data:     []byte(text),
	})
	require.NoError(t, err)
	return doc
}

func TestUpload_CreatesUnprocessedRecordWithBytes(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "hello world")

	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.StorageKey)
	assert.False(t, doc.Processed)
	assert.Equal(t, int64(len("hello world")), doc.SizeBytes)

	data, err := f.files.Read(ctx, doc.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestUpload_Validation(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	_, err := f.service.Upload(ctx, driving.UploadRequest{
		Name: "a.txt", UserID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.Upload(ctx, driving.UploadRequest{
		UserID: "u1", Data: []byte("x"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	chatID, projectID := "chat-1", "proj-1"
	_, err = f.service.Upload(ctx, driving.UploadRequest{
		Name: "a.txt", UserID: "u1", Data: []byte("x"),
		ChatID: &chatID, ProjectID: &projectID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpload_UnknownProjectRejected(t *testing.T) {
	f := newDocumentFixture(t)

	projectID := "missing"
	_, err := f.service.Upload(context.Background(), driving.UploadRequest{
		Name: "a.txt", UserID: "u1", Data: []byte("x"), ProjectID: &projectID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.files.Len(), "no bytes should be stored for a rejected upload")
}

func TestProcess_RoundTrip(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	// 12 tokens through a 5/1 chunker: windows start at 0, 4, 8.
	doc := f.upload(t, "t0 t1 t2 t3 t4 t5 t6 t7 t8 t9 t10 t11")
	require.NoError(t, f.service.Process(ctx, doc.ID))

	got, err := f.service.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)

	chunks, err := f.service.RelevantChunksByEmbedding(ctx, []float32{5, 1}, 10,
		domain.DocumentChunkFilters{DocumentID: &doc.ID})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for _, chunk := range chunks {
		assert.Equal(t, doc.ID, chunk.DocumentID)
		// Each stored embedding matches what the embedder returned
		// for that chunk's content.
		want := []float32{float32(len(strings.Fields(chunk.Content))), 1}
		assert.Equal(t, want, chunk.Embedding)
	}
}

func TestProcess_EmbeddingFailureAbortsWholeBatch(t *testing.T) {
	f := newDocumentFixture(t)
	f.embedder.failOn = "t8"
	ctx := context.Background()

	doc := f.upload(t, "t0 t1 t2 t3 t4 t5 t6 t7 t8 t9 t10 t11")

	err := f.service.Process(ctx, doc.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	// Nothing persisted and the document stays unprocessed.
	chunks, findErr := f.chunks.FindByDocument(ctx, doc.ID)
	require.NoError(t, findErr)
	assert.Empty(t, chunks)

	got, getErr := f.service.Get(ctx, doc.ID)
	require.NoError(t, getErr)
	assert.False(t, got.Processed)
}

func TestProcess_SiblingsRunDespiteFailure(t *testing.T) {
	f := newDocumentFixture(t)
	f.embedder.failOn = "t0"
	ctx := context.Background()

	doc := f.upload(t, "t0 t1 t2 t3 t4 t5 t6 t7 t8 t9 t10 t11")
	require.Error(t, f.service.Process(ctx, doc.ID))

	// All three chunk requests were issued even though one failed.
	assert.Equal(t, int64(3), f.embedder.calls.Load())
}

func TestProcess_UnknownMimeTypeYieldsZeroChunks(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := f.service.Upload(ctx, driving.UploadRequest{
		Name: "blob.bin", MimeType: "application/octet-stream",
		UserID: "u1", Data: []byte{0xDE, 0xAD},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Process(ctx, doc.ID))

	got, err := f.service.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)

	chunks, err := f.chunks.FindByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, int64(0), f.embedder.calls.Load())
}

func TestProcess_AlreadyProcessedSkips(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "t0 t1 t2 t3 t4 t5")
	require.NoError(t, f.service.Process(ctx, doc.ID))
	callsAfterFirst := f.embedder.calls.Load()

	require.NoError(t, f.service.Process(ctx, doc.ID))
	assert.Equal(t, callsAfterFirst, f.embedder.calls.Load())

	chunks, err := f.chunks.FindByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, 2, "re-processing must not duplicate chunks")
}

func TestProcess_ReleasesDocumentLocks(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "t0 t1 t2 t3 t4 t5")
	other := f.upload(t, "t0 t1 t2")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.service.Process(ctx, doc.ID)
		}()
	}
	wg.Wait()
	require.NoError(t, f.service.Process(ctx, other.ID))

	chunks, err := f.chunks.FindByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, 2, "racing callers must not duplicate chunks")

	f.service.mu.Lock()
	held := len(f.service.processing)
	f.service.mu.Unlock()
	assert.Zero(t, held, "lock entries must not accumulate after processing")
}

func TestProcess_WithoutEmbedder(t *testing.T) {
	f := newDocumentFixture(t)
	textChunker, err := chunker.New()
	require.NoError(t, err)
	service := NewDocumentService(f.docs, f.chunks, f.projects, f.files, nil,
		NewExtractorRegistry(stubExtractor{}), textChunker)

	err = service.Process(context.Background(), "any")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRelevantChunks_EmbedsQuery(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "t0 t1 t2 t3 t4 t5 t6 t7 t8 t9 t10 t11")
	require.NoError(t, f.service.Process(ctx, doc.ID))

	chunks, err := f.service.RelevantChunks(ctx, "one two three four five", 2,
		domain.DocumentChunkFilters{})
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	_, err = f.service.RelevantChunks(ctx, "   ", 2, domain.DocumentChunkFilters{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRelevantChunksByEmbedding_Validation(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.RelevantChunksByEmbedding(context.Background(), nil, 5,
		domain.DocumentChunkFilters{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContent_ReassemblesChunksInOrder(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "t0 t1 t2 t3 t4 t5 t6 t7 t8")
	require.NoError(t, f.service.Process(ctx, doc.ID))

	content, err := f.service.Content(ctx, doc.ID)
	require.NoError(t, err)

	lines := strings.Split(content, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "t0 t1 t2 t3 t4", lines[0])
	assert.Equal(t, "t4 t5 t6 t7 t8", lines[1])
	assert.Equal(t, "t8", lines[2])
}

func TestUpdate_RejectsDualOwnership(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.upload(t, "hello world")

	_, err := f.service.Update(context.Background(), doc.ID, domain.DocumentUpdate{
		ChatID:    domain.Set("chat-1"),
		ProjectID: domain.Set("proj-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_RejectsOwnershipConflictWithExistingRecord(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	chatID := "chat-1"
	doc, err := f.service.Upload(ctx, driving.UploadRequest{
		Name:     "notes.txt",
		MimeType: "text/plain",
		UserID:   "u1",
		ChatID:   &chatID,
		Data:     []byte("hello world"),
	})
	require.NoError(t, err)

	// Assigning a project while the chat reference stands must fail.
	_, err = f.service.Update(ctx, doc.ID, domain.DocumentUpdate{
		ProjectID: domain.Set("proj-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.service.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ChatID)
	assert.Equal(t, "chat-1", *got.ChatID)
	assert.Nil(t, got.ProjectID)

	// Clearing the chat in the same update makes the assignment legal.
	got, err = f.service.Update(ctx, doc.ID, domain.DocumentUpdate{
		ChatID:    domain.Null[string](),
		ProjectID: domain.Set("proj-1"),
	})
	require.NoError(t, err)
	assert.Nil(t, got.ChatID)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, "proj-1", *got.ProjectID)

	// And the reverse direction is guarded the same way.
	_, err = f.service.Update(ctx, doc.ID, domain.DocumentUpdate{
		ChatID: domain.Set("chat-2"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_RemovesRecordAndBytes(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "hello world")
	require.Equal(t, 1, f.files.Len())

	require.NoError(t, f.service.Delete(ctx, doc.ID))
	assert.Equal(t, 0, f.files.Len())

	_, err := f.service.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.service.Delete(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
