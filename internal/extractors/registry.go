package extractors

import (
	"path/filepath"
	"strings"

	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// extensionContentTypes maps file extensions to content types.
var extensionContentTypes = map[string]string{
	".txt": "text/plain",
	".md":  "text/markdown",
	".csv": "text/csv",
	".pdf": "application/pdf",
}

// ContentTypeForFilename returns the content type implied by the file
// extension, or "" when the extension is unknown.
func ContentTypeForFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return extensionContentTypes[ext]
}

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches files to the extractor handling their content type.
type Registry struct {
	extractors []driven.TextExtractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	return &Registry{extractors: extractors}
}

// Register adds an extractor. On overlapping content types the earliest
// registration wins.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.extractors = append(r.extractors, extractor)
}

// ExtractorFor returns the extractor and content type for a filename.
func (r *Registry) ExtractorFor(filename string) (driven.TextExtractor, string, bool) {
	contentType := ContentTypeForFilename(filename)
	if contentType == "" {
		return nil, "", false
	}

	for _, extractor := range r.extractors {
		if extractor.Supports(contentType) {
			return extractor, contentType, true
		}
	}

	return nil, contentType, false
}

// SupportedContentTypes returns the union of all registered content types.
func (r *Registry) SupportedContentTypes() []string {
	seen := make(map[string]struct{})
	var types []string

	for _, extractor := range r.extractors {
		for _, contentType := range extractor.ContentTypes() {
			if _, ok := seen[contentType]; ok {
				continue
			}
			seen[contentType] = struct{}{}
			types = append(types, contentType)
		}
	}

	return types
}
