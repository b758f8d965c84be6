package driven

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// ProjectStore persists project records.
type ProjectStore interface {
	// Create inserts a new project record.
	Create(ctx context.Context, project *domain.Project) error

	// FindOne returns the first project matching all filters, or
	// domain.ErrNotFound. IncludeDocuments expands the project's
	// documents in creation order.
	FindOne(ctx context.Context, filters domain.ProjectFilters) (*domain.Project, error)

	// FindAll returns projects matching all filters, in creation order.
	FindAll(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error)

	// FindAny returns projects matching any filter, in creation order.
	FindAny(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error)

	// Count returns the number of projects matching all filters.
	Count(ctx context.Context, filters domain.ProjectFilters) (int64, error)

	// Exists probes for at least one matching project.
	Exists(ctx context.Context, filters domain.ProjectFilters) (bool, error)

	// Update applies a partial update and returns the updated record.
	Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error)

	// Delete removes a project. Documents keep their rows; their
	// project reference is cleared.
	Delete(ctx context.Context, id string) error
}
