package driven

import "context"

// TextExtractor converts raw file bytes into plain text.
// Each extractor handles specific content types (e.g. PDF, plain text).
type TextExtractor interface {
	// ContentTypes returns the content types this extractor handles.
	ContentTypes() []string

	// Supports reports whether the extractor handles the content type.
	Supports(contentType string) bool

	// Extract returns the text content of the raw bytes.
	// Text encoding detection (UTF-8 / Shift-JIS) is the extractor's
	// responsibility; undecodable input is an error.
	Extract(ctx context.Context, raw []byte) (string, error)
}

// ExtractorRegistry selects the extractor for a file.
// Dispatch is by content type derived from the file extension.
type ExtractorRegistry interface {
	// ExtractorFor returns the extractor and content type for a filename.
	// ok is false when the extension is unknown or no extractor handles
	// the content type.
	ExtractorFor(filename string) (extractor TextExtractor, contentType string, ok bool)

	// SupportedContentTypes returns all content types that can be extracted.
	SupportedContentTypes() []string
}
