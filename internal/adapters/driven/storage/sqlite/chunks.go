package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// chunkColumns is the chunk field set, aliased "c".
const chunkColumns = "c.id, c.idx, c.content, c.embedding, c.document_id, c.created_at"

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// CreateAll inserts all chunks in one multi-row statement. The single
// statement is what makes the batch atomic: if it fails, zero rows land.
func (s *chunkStore) CreateAll(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	now := time.Now().UTC()

	var sb strings.Builder
	sb.WriteString("INSERT INTO document_chunks (id, idx, content, embedding, document_id, created_at) VALUES ")
	args := make([]any, 0, len(chunks)*6)
	for i, chunk := range chunks {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")

		createdAt := chunk.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		args = append(args, chunk.ID, chunk.Index, chunk.Content,
			float32SliceToBytes(chunk.Embedding), chunk.DocumentID, createdAt)
	}

	if _, err := s.store.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("creating chunks: %w", err)
	}
	return nil
}

// FindRelevant ranks chunks by similarity to the query embedding and
// returns the top limit, highest score first. The embedding binds as
// parameter 1, filter values follow, and the limit binds last.
func (s *chunkStore) FindRelevant(ctx context.Context, embedding []float32, limit int, filters domain.DocumentChunkFilters) ([]domain.DocumentChunk, error) {
	b := newBuilder()
	scoreExpr := "1.0 - vec_distance_cosine(c.embedding, " + b.bind(float32SliceToBytes(embedding)) + ")"

	compileChunkFilters(b, filters)
	if filters.IncludeDocument {
		b.join(joinChunkDocuments)
	}

	columns := chunkColumns + ", " + scoreExpr + " AS score"
	if filters.IncludeDocument {
		columns += ", " + nullableDocumentColumns
	}

	query := "SELECT " + columns + " FROM document_chunks c" + b.joinClause() +
		" WHERE " + b.clause(andConditions) +
		" ORDER BY score DESC LIMIT " + b.bind(limit)

	rows, err := s.store.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("querying relevant chunks: %w", err)
	}
	defer rows.Close()

	var flat []joinedRow[domain.DocumentChunk, domain.Document]
	for rows.Next() {
		var chunk domain.DocumentChunk
		var blob []byte
		var nd nullableDocument

		dests := []any{&chunk.ID, &chunk.Index, &chunk.Content, &blob,
			&chunk.DocumentID, &chunk.CreatedAt, &chunk.Score}
		if filters.IncludeDocument {
			dests = append(dests, nd.dests()...)
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}

		chunk.Embedding = bytesToFloat32Slice(blob)
		flat = append(flat, joinedRow[domain.DocumentChunk, domain.Document]{
			key:    chunk.ID,
			parent: chunk,
			child:  nd.document(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rows: %w", err)
	}

	// The owning document is a 1:1 relation, so each chunk row is its
	// own group and the attached "child" is the single document.
	return materialize(flat, func(c *domain.DocumentChunk, d domain.Document) {
		c.Document = &d
	}), nil
}

// FindByDocument returns a document's chunks in index order.
func (s *chunkStore) FindByDocument(ctx context.Context, documentID string) ([]domain.DocumentChunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM document_chunks c
		WHERE c.document_id = ?
		ORDER BY c.idx
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.DocumentChunk
		var blob []byte
		if err := rows.Scan(&chunk.ID, &chunk.Index, &chunk.Content, &blob,
			&chunk.DocumentID, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}
