// Package plaintext extracts text from plain text and markdown files.
package plaintext

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// ContentTypes returns the content types this extractor handles.
func (e *Extractor) ContentTypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
	}
}

// Supports reports whether the extractor handles the content type.
func (e *Extractor) Supports(contentType string) bool {
	for _, ct := range e.ContentTypes() {
		if ct == contentType {
			return true
		}
	}
	return false
}

// Extract decodes the raw bytes as UTF-8 or Shift-JIS.
func (e *Extractor) Extract(_ context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	return extractors.DecodeText(raw)
}
