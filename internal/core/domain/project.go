package domain

import "time"

// Project is a named collection of documents owned by a user.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// Title is the human-readable project title.
	Title string

	// Description is free-form text describing the project.
	Description string

	// UserID is the owning user.
	UserID string

	// CreatedAt is when the project was created.
	CreatedAt time.Time

	// UpdatedAt is when the project was last modified.
	UpdatedAt time.Time

	// Documents holds the project's documents in creation order.
	// It is nil unless the query requested document expansion; a
	// project with no documents keeps a nil slice either way.
	Documents []Document
}
