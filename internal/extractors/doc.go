// Package extractors provides text extraction from uploaded file
// formats. Each extractor implements driven.Extractor for a set of
// MIME types and is looked up through the service registry.
package extractors
