package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore is an in-memory implementation of driven.ProjectStore.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
	order    []string
	docs     *DocumentStore
}

// NewProjectStore creates a new in-memory project store backed by the
// given document store for document expansion.
func NewProjectStore(docs *DocumentStore) *ProjectStore {
	return &ProjectStore{projects: make(map[string]domain.Project), docs: docs}
}

// Create stores a new project.
func (s *ProjectStore) Create(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[project.ID]; ok {
		return fmt.Errorf("%w: project %s", domain.ErrAlreadyExists, project.ID)
	}

	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	s.projects[project.ID] = *project
	s.order = append(s.order, project.ID)
	return nil
}

// FindOne returns the first project matching all filters.
func (s *ProjectStore) FindOne(ctx context.Context, filters domain.ProjectFilters) (*domain.Project, error) {
	projects, err := s.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, domain.ErrNotFound
	}
	return &projects[0], nil
}

// FindAll returns projects matching all filters, in creation order.
func (s *ProjectStore) FindAll(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error) {
	return s.find(ctx, filters, true)
}

// FindAny returns projects matching any filter, in creation order.
func (s *ProjectStore) FindAny(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error) {
	return s.find(ctx, filters, false)
}

func (s *ProjectStore) find(ctx context.Context, filters domain.ProjectFilters, all bool) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var projects []domain.Project
	for _, id := range s.order {
		project := s.projects[id]
		if !matchesProjectFilters(project, filters, all) {
			continue
		}
		if filters.IncludeDocuments {
			projectID := project.ID
			docs, err := s.docs.FindAll(ctx, domain.DocumentFilters{ProjectID: &projectID})
			if err != nil {
				return nil, err
			}
			project.Documents = docs
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// Count returns the number of projects matching all filters.
func (s *ProjectStore) Count(ctx context.Context, filters domain.ProjectFilters) (int64, error) {
	projects, err := s.FindAll(ctx, filters)
	if err != nil {
		return 0, err
	}
	return int64(len(projects)), nil
}

// Exists reports whether any project matches all filters.
func (s *ProjectStore) Exists(ctx context.Context, filters domain.ProjectFilters) (bool, error) {
	projects, err := s.FindAll(ctx, filters)
	if err != nil {
		return false, err
	}
	return len(projects) > 0, nil
}

// Update applies a partial update and returns the updated record.
func (s *ProjectStore) Update(_ context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	applyField(update.Title, func(v string) { project.Title = v }, nil)
	applyField(update.Description, func(v string) { project.Description = v }, nil)
	project.UpdatedAt = time.Now().UTC()

	s.projects[id] = project
	return &project, nil
}

// Delete removes a project. Documents keep their rows; the owning
// reference is cleared like the SQLite adapter's ON DELETE SET NULL.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.projects[id]; !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(s.projects, id)
	s.order = slices.DeleteFunc(s.order, func(other string) bool { return other == id })
	s.mu.Unlock()

	projectID := id
	docs, err := s.docs.FindAll(ctx, domain.DocumentFilters{ProjectID: &projectID})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if _, err := s.docs.Update(ctx, doc.ID, domain.DocumentUpdate{
			ProjectID: domain.Null[string](),
		}); err != nil {
			return err
		}
	}
	return nil
}

func matchesProjectFilters(project domain.Project, filters domain.ProjectFilters, all bool) bool {
	type check struct {
		present bool
		match   bool
	}
	checks := []check{
		{len(filters.IDs) > 0, slices.Contains(filters.IDs, project.ID)},
		{filters.UserID != nil, filters.UserID != nil && project.UserID == *filters.UserID},
		{filters.Title != nil, filters.Title != nil && containsFold(project.Title, *filters.Title)},
	}

	any := false
	for _, c := range checks {
		if !c.present {
			continue
		}
		any = true
		if all && !c.match {
			return false
		}
		if !all && c.match {
			return true
		}
	}
	if !any {
		return true
	}
	return all
}
