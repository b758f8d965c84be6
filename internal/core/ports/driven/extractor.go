package driven

import "context"

// Extractor pulls plain text out of raw file bytes.
// Each extractor handles specific MIME types (e.g. PDF, plain text).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the plain text content of data.
	Extract(ctx context.Context, data []byte) (string, error)
}
