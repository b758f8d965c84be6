package driving

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// ProjectService manages projects and their document collections.
type ProjectService interface {
	// Create registers a new project.
	Create(ctx context.Context, title, description, userID string) (*domain.Project, error)

	// Get retrieves a project by ID, optionally with its documents.
	Get(ctx context.Context, projectID string, includeDocuments bool) (*domain.Project, error)

	// List returns projects matching all filters.
	List(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error)

	// Update applies a partial update to a project record.
	Update(ctx context.Context, projectID string, update domain.ProjectUpdate) (*domain.Project, error)

	// Delete removes a project. Its documents are detached, not deleted.
	Delete(ctx context.Context, projectID string) error
}
