package domain

// Filter types are sparse: a nil pointer field places no constraint,
// a non-nil field constrains to its value. Slice fields constrain by
// set membership. How the fields combine (all-of vs any-of) is decided
// by the store operation, not the filter itself.

// DocumentFilters constrains document queries.
type DocumentFilters struct {
	// IDs constrains to a set of document identifiers. The whole set
	// binds as a single query parameter.
	IDs []string

	// UserID constrains to the owning user.
	UserID *string

	// ChatID constrains to the owning chat.
	ChatID *string

	// ProjectID constrains to the owning project.
	ProjectID *string

	// Processed constrains on the processed flag.
	Processed *bool

	// Name constrains by case-insensitive partial match on the
	// display name.
	Name *string
}

// DocumentChunkFilters constrains chunk relevance queries. Filters on
// chat, project or user live on the owning document and force a join
// even when IncludeDocument is false.
type DocumentChunkFilters struct {
	// DocumentID constrains to chunks of one document.
	DocumentID *string

	// ChatID constrains to chunks whose document belongs to a chat.
	ChatID *string

	// ProjectID constrains to chunks whose document belongs to a project.
	ProjectID *string

	// UserID constrains to chunks whose document belongs to a user.
	UserID *string

	// IncludeDocument attaches the owning document to each result.
	IncludeDocument bool
}

// ProjectFilters constrains project queries.
type ProjectFilters struct {
	// IDs constrains to a set of project identifiers.
	IDs []string

	// UserID constrains to the owning user.
	UserID *string

	// Title constrains by case-insensitive partial match.
	Title *string

	// IncludeDocuments expands each project's documents in
	// creation order.
	IncludeDocuments bool
}

// DocumentUpdate is a partial update of a document record. Absent
// fields are left untouched; see Field for the three-state contract.
type DocumentUpdate struct {
	Name      Field[string]
	MimeType  Field[string]
	Processed Field[bool]
	ChatID    Field[string]
	ProjectID Field[string]
}

// ProjectUpdate is a partial update of a project record.
type ProjectUpdate struct {
	Title       Field[string]
	Description Field[string]
}
