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

// documentColumns is the full document field set, aliased "d".
const documentColumns = "d.id, d.storage_key, d.name, d.mime_type, d.size_bytes, " +
	"d.processed, d.chat_id, d.project_id, d.user_id, d.created_at, d.updated_at"

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Create inserts a new document record.
func (s *documentStore) Create(ctx context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validating document: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, storage_key, name, mime_type, size_bytes,
			processed, chat_id, project_id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.StorageKey, doc.Name, doc.MimeType, doc.SizeBytes,
		doc.Processed, doc.ChatID, doc.ProjectID, doc.UserID,
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// FindOne returns the first document matching all filters.
func (s *documentStore) FindOne(ctx context.Context, filters domain.DocumentFilters) (*domain.Document, error) {
	docs, err := s.find(ctx, filters, andConditions, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &docs[0], nil
}

// FindAll returns documents matching all filters, in creation order.
func (s *documentStore) FindAll(ctx context.Context, filters domain.DocumentFilters) ([]domain.Document, error) {
	return s.find(ctx, filters, andConditions, 0)
}

// FindAny returns documents matching any filter, in creation order.
func (s *documentStore) FindAny(ctx context.Context, filters domain.DocumentFilters) ([]domain.Document, error) {
	return s.find(ctx, filters, orConditions, 0)
}

func (s *documentStore) find(ctx context.Context, filters domain.DocumentFilters, sep string, limit int) ([]domain.Document, error) {
	b := newBuilder()
	compileDocumentFilters(b, filters)

	query := "SELECT " + documentColumns + " FROM documents d WHERE " +
		b.clause(sep) + " ORDER BY d.created_at"
	if limit > 0 {
		query += " LIMIT " + b.bind(limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Count returns the number of documents matching all filters.
func (s *documentStore) Count(ctx context.Context, filters domain.DocumentFilters) (int64, error) {
	b := newBuilder()
	compileDocumentFilters(b, filters)

	var count int64
	row := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents d WHERE "+b.clause(andConditions), b.args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Exists probes for at least one matching document, capped at one row.
func (s *documentStore) Exists(ctx context.Context, filters domain.DocumentFilters) (bool, error) {
	b := newBuilder()
	compileDocumentFilters(b, filters)

	var one int
	row := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM documents d WHERE "+b.clause(andConditions)+" LIMIT 1", b.args...)
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("probing documents: %w", err)
	}
	return true, nil
}

// Update applies a partial update and returns the updated record.
func (s *documentStore) Update(ctx context.Context, id string, update domain.DocumentUpdate) (*domain.Document, error) {
	b := newBuilder()
	frags := compileDocumentUpdate(b, update)
	if len(frags) == 0 {
		// Nothing to set; behave as a read.
		return s.FindOne(ctx, domain.DocumentFilters{IDs: []string{id}})
	}
	frags = append(frags, "updated_at = "+b.bind(time.Now().UTC()))

	query := "UPDATE documents SET " + strings.Join(frags, ", ") +
		" WHERE id = " + b.bind(id)
	res, err := s.store.db.ExecContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	return s.FindOne(ctx, domain.DocumentFilters{IDs: []string{id}})
}

// Delete removes a document; its chunks go with it via the cascade.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullableDocumentColumns mirrors documentColumns for left-join rows
// where the whole document side may be NULL.
const nullableDocumentColumns = documentColumns

// nullableDocument scans the document side of a left join, where every
// column may be NULL when no document matched.
type nullableDocument struct {
	id, storageKey, name, mimeType sql.NullString
	sizeBytes                      sql.NullInt64
	processed                      sql.NullBool
	chatID, projectID, userID      sql.NullString
	createdAt, updatedAt           sql.NullTime
}

// dests returns scan destinations in documentColumns order.
func (n *nullableDocument) dests() []any {
	return []any{&n.id, &n.storageKey, &n.name, &n.mimeType, &n.sizeBytes,
		&n.processed, &n.chatID, &n.projectID, &n.userID, &n.createdAt, &n.updatedAt}
}

// document returns the scanned document, or nil for a no-match row.
func (n *nullableDocument) document() *domain.Document {
	if !n.id.Valid {
		return nil
	}
	doc := domain.Document{
		ID:         n.id.String,
		StorageKey: n.storageKey.String,
		Name:       n.name.String,
		MimeType:   n.mimeType.String,
		SizeBytes:  n.sizeBytes.Int64,
		Processed:  n.processed.Bool,
		UserID:     n.userID.String,
		CreatedAt:  n.createdAt.Time,
		UpdatedAt:  n.updatedAt.Time,
	}
	if n.chatID.Valid {
		doc.ChatID = &n.chatID.String
	}
	if n.projectID.Valid {
		doc.ProjectID = &n.projectID.String
	}
	return &doc
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans one document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var chatID, projectID sql.NullString

	if err := row.Scan(&doc.ID, &doc.StorageKey, &doc.Name, &doc.MimeType,
		&doc.SizeBytes, &doc.Processed, &chatID, &projectID, &doc.UserID,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if chatID.Valid {
		doc.ChatID = &chatID.String
	}
	if projectID.Valid {
		doc.ProjectID = &projectID.String
	}

	return &doc, nil
}
