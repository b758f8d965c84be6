package driven

import "context"

// FileStore holds raw uploaded bytes keyed by opaque string keys.
// Keys carry no structure; callers must not derive meaning from them.
type FileStore interface {
	// Write stores data under key, overwriting any previous value.
	Write(ctx context.Context, key string, data []byte) error

	// Read returns the bytes stored under key, or domain.ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Delete removes the bytes stored under key. Deleting a missing
	// key is not an error.
	Delete(ctx context.Context, key string) error
}
