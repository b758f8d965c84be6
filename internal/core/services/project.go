package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages projects and their document collections.
type ProjectService struct {
	projectStore driven.ProjectStore
}

// NewProjectService creates a new project service.
func NewProjectService(projectStore driven.ProjectStore) *ProjectService {
	return &ProjectService{projectStore: projectStore}
}

// Create registers a new project.
func (s *ProjectService) Create(ctx context.Context, title, description, userID string) (*domain.Project, error) {
	if title == "" || userID == "" {
		return nil, fmt.Errorf("%w: title and user are required", domain.ErrInvalidInput)
	}

	project := &domain.Project{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.projectStore.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get retrieves a project by ID, optionally with its documents.
func (s *ProjectService) Get(ctx context.Context, projectID string, includeDocuments bool) (*domain.Project, error) {
	return s.projectStore.FindOne(ctx, domain.ProjectFilters{
		IDs:              []string{projectID},
		IncludeDocuments: includeDocuments,
	})
}

// List returns projects matching all filters.
func (s *ProjectService) List(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error) {
	return s.projectStore.FindAll(ctx, filters)
}

// Update applies a partial update to a project record.
func (s *ProjectService) Update(ctx context.Context, projectID string, update domain.ProjectUpdate) (*domain.Project, error) {
	return s.projectStore.Update(ctx, projectID, update)
}

// Delete removes a project. Its documents are detached, not deleted.
func (s *ProjectService) Delete(ctx context.Context, projectID string) error {
	return s.projectStore.Delete(ctx, projectID)
}
