package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// projectColumns is the full project field set, aliased "p".
const projectColumns = "p.id, p.title, p.description, p.user_id, p.created_at, p.updated_at"

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

// Create inserts a new project record.
func (s *projectStore) Create(ctx context.Context, project *domain.Project) error {
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, description, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, project.ID, project.Title, project.Description, project.UserID,
		project.CreatedAt, project.UpdatedAt)

	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	return nil
}

// FindOne returns the first project matching all filters.
func (s *projectStore) FindOne(ctx context.Context, filters domain.ProjectFilters) (*domain.Project, error) {
	projects, err := s.find(ctx, filters, andConditions, 1)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, domain.ErrNotFound
	}
	return &projects[0], nil
}

// FindAll returns projects matching all filters, in creation order.
func (s *projectStore) FindAll(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error) {
	return s.find(ctx, filters, andConditions, 0)
}

// FindAny returns projects matching any filter, in creation order.
func (s *projectStore) FindAny(ctx context.Context, filters domain.ProjectFilters) ([]domain.Project, error) {
	return s.find(ctx, filters, orConditions, 0)
}

func (s *projectStore) find(ctx context.Context, filters domain.ProjectFilters, sep string, limit int) ([]domain.Project, error) {
	if filters.IncludeDocuments {
		return s.findWithDocuments(ctx, filters, sep, limit)
	}

	b := newBuilder()
	compileProjectFilters(b, filters)

	query := "SELECT " + projectColumns + " FROM projects p WHERE " +
		b.clause(sep) + " ORDER BY p.created_at"
	if limit > 0 {
		query += " LIMIT " + b.bind(limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.UserID,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}

	return projects, nil
}

// findWithDocuments expands each project's documents through a left
// join. Rows arrive ordered by project then document creation time -
// the contiguity the materializer relies on. The limit is applied after
// regrouping because a row limit would truncate children.
func (s *projectStore) findWithDocuments(ctx context.Context, filters domain.ProjectFilters, sep string, limit int) ([]domain.Project, error) {
	b := newBuilder()
	compileProjectFilters(b, filters)

	query := "SELECT " + projectColumns + ", " + nullableDocumentColumns +
		" FROM projects p LEFT JOIN documents d ON d.project_id = p.id WHERE " +
		b.clause(sep) + " ORDER BY p.created_at, d.created_at"

	rows, err := s.store.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects with documents: %w", err)
	}
	defer rows.Close()

	var flat []joinedRow[domain.Project, domain.Document]
	for rows.Next() {
		var p domain.Project
		var nd nullableDocument
		if err := rows.Scan(append([]any{&p.ID, &p.Title, &p.Description, &p.UserID,
			&p.CreatedAt, &p.UpdatedAt}, nd.dests()...)...); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		flat = append(flat, joinedRow[domain.Project, domain.Document]{
			key:    p.ID,
			parent: p,
			child:  nd.document(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	projects := materialize(flat, func(p *domain.Project, d domain.Document) {
		p.Documents = append(p.Documents, d)
	})
	if limit > 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	return projects, nil
}

// Count returns the number of projects matching all filters.
func (s *projectStore) Count(ctx context.Context, filters domain.ProjectFilters) (int64, error) {
	b := newBuilder()
	compileProjectFilters(b, filters)

	var count int64
	row := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects p WHERE "+b.clause(andConditions), b.args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return count, nil
}

// Exists probes for at least one matching project, capped at one row.
func (s *projectStore) Exists(ctx context.Context, filters domain.ProjectFilters) (bool, error) {
	b := newBuilder()
	compileProjectFilters(b, filters)

	var one int
	row := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM projects p WHERE "+b.clause(andConditions)+" LIMIT 1", b.args...)
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("probing projects: %w", err)
	}
	return true, nil
}

// Update applies a partial update and returns the updated record.
func (s *projectStore) Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error) {
	b := newBuilder()
	frags := compileProjectUpdate(b, update)
	if len(frags) == 0 {
		return s.FindOne(ctx, domain.ProjectFilters{IDs: []string{id}})
	}
	frags = append(frags, "updated_at = "+b.bind(time.Now().UTC()))

	query := "UPDATE projects SET " + strings.Join(frags, ", ") +
		" WHERE id = " + b.bind(id)
	res, err := s.store.db.ExecContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	return s.FindOne(ctx, domain.ProjectFilters{IDs: []string{id}})
}

// Delete removes a project; document rows keep their data and drop the
// project reference.
func (s *projectStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
