package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/quarry/internal/core/domain"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	docs := memory.NewDocumentStore()
	service := NewProjectService(memory.NewProjectStore(docs))
	ctx := context.Background()

	project, err := service.Create(ctx, "Research", "papers and notes", "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "Research", project.Title)

	got, err := service.Get(ctx, project.ID, false)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
	assert.Nil(t, got.Documents)
}

func TestProjectService_CreateValidation(t *testing.T) {
	docs := memory.NewDocumentStore()
	service := NewProjectService(memory.NewProjectStore(docs))

	_, err := service.Create(context.Background(), "", "", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Create(context.Background(), "title", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjectService_GetWithDocuments(t *testing.T) {
	docs := memory.NewDocumentStore()
	service := NewProjectService(memory.NewProjectStore(docs))
	ctx := context.Background()

	project, err := service.Create(ctx, "Research", "", "u1")
	require.NoError(t, err)

	require.NoError(t, docs.Create(ctx, &domain.Document{
		ID: "doc-1", StorageKey: "k1", Name: "a.txt", UserID: "u1",
		ProjectID: &project.ID,
	}))

	got, err := service.Get(ctx, project.ID, true)
	require.NoError(t, err)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "doc-1", got.Documents[0].ID)
}

func TestProjectService_UpdateAndDelete(t *testing.T) {
	docs := memory.NewDocumentStore()
	service := NewProjectService(memory.NewProjectStore(docs))
	ctx := context.Background()

	project, err := service.Create(ctx, "Research", "", "u1")
	require.NoError(t, err)

	updated, err := service.Update(ctx, project.ID, domain.ProjectUpdate{
		Title: domain.Set("Archive"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Archive", updated.Title)

	require.NoError(t, service.Delete(ctx, project.ID))
	_, err = service.Get(ctx, project.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
