// Package extractors provides implementations of the TextExtractor
// interface for the supported document formats. Each extractor knows how
// to pull plain text out of a specific content type.
//
// Extractors are registered with the Registry at startup; files are
// dispatched by the content type implied by their extension.
package extractors
