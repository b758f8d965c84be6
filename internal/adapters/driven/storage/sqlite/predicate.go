package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// The predicate builder assembles the optional-filter part of a query:
// an ordered list of condition fragments, the bound values in matching
// order, and any joins the filtered columns require. Placeholders are
// numbered ?1, ?2, ... in bind order, so a caller that binds the query
// embedding first and the limit last gets the numbering the statement
// expects. Values only ever travel through parameter slots.

const (
	andConditions = " AND "
	orConditions  = " OR "
)

// joinChunkDocuments attaches the owning document to a chunk query.
// Chat, project and user filters live on the documents table, so they
// need this join even when the caller did not ask for document columns.
const joinChunkDocuments = "JOIN documents d ON d.id = c.document_id"

type builder struct {
	next  int
	conds []string
	args  []any
	joins []string
}

func newBuilder() *builder {
	return &builder{next: 1}
}

// bind reserves the next positional slot for v and returns its
// placeholder.
func (b *builder) bind(v any) string {
	p := fmt.Sprintf("?%d", b.next)
	b.next++
	b.args = append(b.args, v)
	return p
}

// eq adds an equality condition on column.
func (b *builder) eq(column string, v any) {
	b.conds = append(b.conds, column+" = "+b.bind(v))
}

// in adds a set-membership condition on column. The whole set binds as
// ONE parameter: a JSON array consumed by json_each on the SQLite side.
func (b *builder) in(column string, values []string) {
	encoded, err := json.Marshal(values)
	if err != nil {
		// []string cannot fail to marshal; keep the clause well-formed anyway.
		encoded = []byte("[]")
	}
	b.conds = append(b.conds,
		column+" IN (SELECT value FROM json_each("+b.bind(string(encoded))+"))")
}

// like adds a case-insensitive partial match on column. The wildcard
// wrapping happens here, not at the caller.
func (b *builder) like(column string, v string) {
	b.conds = append(b.conds, "LOWER("+column+") LIKE LOWER("+b.bind("%"+v+"%")+")")
}

// join records a required join clause, deduplicating repeats.
func (b *builder) join(clause string) {
	for _, j := range b.joins {
		if j == clause {
			return
		}
	}
	b.joins = append(b.joins, clause)
}

// clause combines the collected conditions with sep. With no conditions
// it degrades to TRUE so the surrounding statement stays valid.
func (b *builder) clause(sep string) string {
	if len(b.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(b.conds, sep)
}

// joinClause renders the collected joins in the order required.
func (b *builder) joinClause() string {
	if len(b.joins) == 0 {
		return ""
	}
	return " " + strings.Join(b.joins, " ")
}

// compileDocumentFilters adds conditions for the present document
// filter fields against table alias "d".
func compileDocumentFilters(b *builder, f domain.DocumentFilters) {
	if len(f.IDs) > 0 {
		b.in("d.id", f.IDs)
	}
	if f.UserID != nil {
		b.eq("d.user_id", *f.UserID)
	}
	if f.ChatID != nil {
		b.eq("d.chat_id", *f.ChatID)
	}
	if f.ProjectID != nil {
		b.eq("d.project_id", *f.ProjectID)
	}
	if f.Processed != nil {
		b.eq("d.processed", *f.Processed)
	}
	if f.Name != nil {
		b.like("d.name", *f.Name)
	}
}

// compileChunkFilters adds conditions for the present chunk filter
// fields against chunk alias "c", joining the documents table when a
// filtered column lives there.
func compileChunkFilters(b *builder, f domain.DocumentChunkFilters) {
	if f.DocumentID != nil {
		b.eq("c.document_id", *f.DocumentID)
	}
	if f.ChatID != nil {
		b.join(joinChunkDocuments)
		b.eq("d.chat_id", *f.ChatID)
	}
	if f.ProjectID != nil {
		b.join(joinChunkDocuments)
		b.eq("d.project_id", *f.ProjectID)
	}
	if f.UserID != nil {
		b.join(joinChunkDocuments)
		b.eq("d.user_id", *f.UserID)
	}
}

// compileProjectFilters adds conditions for the present project filter
// fields against table alias "p".
func compileProjectFilters(b *builder, f domain.ProjectFilters) {
	if len(f.IDs) > 0 {
		b.in("p.id", f.IDs)
	}
	if f.UserID != nil {
		b.eq("p.user_id", *f.UserID)
	}
	if f.Title != nil {
		b.like("p.title", *f.Title)
	}
}

// setField appends a SET fragment for one three-state update field:
// absent fields contribute nothing, null fields clear the column, set
// fields bind their value.
func setField[T any](b *builder, frags *[]string, column string, f domain.Field[T]) {
	if !f.Present() {
		return
	}
	if f.IsNull() {
		*frags = append(*frags, column+" = NULL")
		return
	}
	v, _ := f.Value()
	*frags = append(*frags, column+" = "+b.bind(v))
}

// compileDocumentUpdate renders the SET fragments for a document update.
func compileDocumentUpdate(b *builder, u domain.DocumentUpdate) []string {
	var frags []string
	setField(b, &frags, "name", u.Name)
	setField(b, &frags, "mime_type", u.MimeType)
	setField(b, &frags, "processed", u.Processed)
	setField(b, &frags, "chat_id", u.ChatID)
	setField(b, &frags, "project_id", u.ProjectID)
	return frags
}

// compileProjectUpdate renders the SET fragments for a project update.
func compileProjectUpdate(b *builder, u domain.ProjectUpdate) []string {
	var frags []string
	setField(b, &frags, "title", u.Title)
	setField(b, &frags, "description", u.Description)
	return frags
}
