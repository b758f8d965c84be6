package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

func TestChunkStore_CreateAll_EmptyIsNoop(t *testing.T) {
	store := setupTestStore(t)

	err := store.ChunkStore().CreateAll(context.Background(), nil)
	assert.NoError(t, err)
}

func TestChunkStore_CreateAll_AtomicBatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.DocumentStore().Create(ctx, testDocument("doc-1", "u1", 0)))

	chunks := []domain.DocumentChunk{
		{ID: "ch-1", Index: 0, Content: "alpha", Embedding: []float32{1, 0}, DocumentID: "doc-1"},
		{ID: "ch-2", Index: 1, Content: "beta", Embedding: []float32{0, 1}, DocumentID: "doc-1"},
	}
	require.NoError(t, store.ChunkStore().CreateAll(ctx, chunks))

	got, err := store.ChunkStore().FindByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ch-1", got[0].ID)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, []float32{1, 0}, got[0].Embedding)
	assert.Equal(t, "ch-2", got[1].ID)
}

func TestChunkStore_CreateAll_DuplicateFailsWhole(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.DocumentStore().Create(ctx, testDocument("doc-1", "u1", 0)))

	err := store.ChunkStore().CreateAll(ctx, []domain.DocumentChunk{
		{ID: "ch-1", Index: 0, Content: "alpha", Embedding: []float32{1, 0}, DocumentID: "doc-1"},
		{ID: "ch-1", Index: 1, Content: "beta", Embedding: []float32{0, 1}, DocumentID: "doc-1"},
	})
	require.Error(t, err)

	// Nothing from the failed batch landed.
	got, findErr := store.ChunkStore().FindByDocument(ctx, "doc-1")
	require.NoError(t, findErr)
	assert.Empty(t, got)
}

// seedRelevanceFixture creates two documents under different owners and
// chunks whose embeddings have a known similarity order against the
// query vector [1, 0].
func seedRelevanceFixture(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	chatID := "chat-1"
	projectID := "proj-1"

	require.NoError(t, store.ProjectStore().Create(ctx, &domain.Project{
		ID: projectID, Title: "Research", UserID: "u1",
	}))

	chatDoc := testDocument("doc-chat", "u1", 0)
	chatDoc.ChatID = &chatID
	require.NoError(t, store.DocumentStore().Create(ctx, chatDoc))

	projDoc := testDocument("doc-proj", "u2", 1)
	projDoc.ProjectID = &projectID
	require.NoError(t, store.DocumentStore().Create(ctx, projDoc))

	require.NoError(t, store.ChunkStore().CreateAll(ctx, []domain.DocumentChunk{
		{ID: "ch-far", Index: 0, Content: "orthogonal", Embedding: []float32{0, 1}, DocumentID: "doc-chat"},
		{ID: "ch-near", Index: 1, Content: "aligned", Embedding: []float32{1, 0}, DocumentID: "doc-chat"},
		{ID: "ch-mid", Index: 0, Content: "between", Embedding: []float32{0.9, 0.1}, DocumentID: "doc-proj"},
	}))
}

func TestChunkStore_FindRelevant_OrdersByScoreDescending(t *testing.T) {
	store := setupTestStore(t)
	seedRelevanceFixture(t, store)

	got, err := store.ChunkStore().FindRelevant(context.Background(),
		[]float32{1, 0}, 10, domain.DocumentChunkFilters{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "ch-near", got[0].ID)
	assert.Equal(t, "ch-mid", got[1].ID)
	assert.Equal(t, "ch-far", got[2].ID)

	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Greater(t, got[1].Score, got[2].Score)
	assert.InDelta(t, 0.0, got[2].Score, 1e-6)
}

func TestChunkStore_FindRelevant_AppliesLimit(t *testing.T) {
	store := setupTestStore(t)
	seedRelevanceFixture(t, store)

	got, err := store.ChunkStore().FindRelevant(context.Background(),
		[]float32{1, 0}, 1, domain.DocumentChunkFilters{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ch-near", got[0].ID)
}

func TestChunkStore_FindRelevant_FiltersByDocument(t *testing.T) {
	store := setupTestStore(t)
	seedRelevanceFixture(t, store)

	docID := "doc-proj"
	got, err := store.ChunkStore().FindRelevant(context.Background(),
		[]float32{1, 0}, 10, domain.DocumentChunkFilters{DocumentID: &docID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ch-mid", got[0].ID)
}

func TestChunkStore_FindRelevant_OwnershipFiltersJoinDocuments(t *testing.T) {
	store := setupTestStore(t)
	seedRelevanceFixture(t, store)
	ctx := context.Background()

	chatID := "chat-1"
	byChat, err := store.ChunkStore().FindRelevant(ctx, []float32{1, 0}, 10,
		domain.DocumentChunkFilters{ChatID: &chatID})
	require.NoError(t, err)
	require.Len(t, byChat, 2)
	assert.Equal(t, "ch-near", byChat[0].ID)
	assert.Equal(t, "ch-far", byChat[1].ID)

	projectID := "proj-1"
	byProject, err := store.ChunkStore().FindRelevant(ctx, []float32{1, 0}, 10,
		domain.DocumentChunkFilters{ProjectID: &projectID})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, "ch-mid", byProject[0].ID)

	userID := "u2"
	byUser, err := store.ChunkStore().FindRelevant(ctx, []float32{1, 0}, 10,
		domain.DocumentChunkFilters{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "ch-mid", byUser[0].ID)
}

func TestChunkStore_FindRelevant_IncludeDocumentAttachesOwner(t *testing.T) {
	store := setupTestStore(t)
	seedRelevanceFixture(t, store)

	got, err := store.ChunkStore().FindRelevant(context.Background(),
		[]float32{1, 0}, 10, domain.DocumentChunkFilters{IncludeDocument: true})
	require.NoError(t, err)
	require.Len(t, got, 3)

	for _, chunk := range got {
		require.NotNil(t, chunk.Document, "chunk %s missing document", chunk.ID)
		assert.Equal(t, chunk.DocumentID, chunk.Document.ID)
	}
	assert.Equal(t, "doc-chat.txt", got[0].Document.Name)
}

func TestChunkStore_FindRelevant_WithoutIncludeDocument(t *testing.T) {
	store := setupTestStore(t)
	seedRelevanceFixture(t, store)

	got, err := store.ChunkStore().FindRelevant(context.Background(),
		[]float32{1, 0}, 10, domain.DocumentChunkFilters{})
	require.NoError(t, err)
	for _, chunk := range got {
		assert.Nil(t, chunk.Document)
	}
}

func TestChunkStore_FindByDocument_Empty(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.ChunkStore().FindByDocument(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}
