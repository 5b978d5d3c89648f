// Package tabular extracts text from CSV files.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles comma-separated tabular documents. Rows are rendered
// one per line with cells joined by ", ", which keeps row context intact
// when the text is chunked later.
type Extractor struct{}

// New creates a new tabular extractor.
func New() *Extractor {
	return &Extractor{}
}

// ContentTypes returns the content types this extractor handles.
func (e *Extractor) ContentTypes() []string {
	return []string{"text/csv"}
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

// Extract decodes and parses the raw bytes as CSV.
func (e *Extractor) Extract(_ context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	text, err := extractors.DecodeText(raw)
	if err != nil {
		return "", fmt.Errorf("decoding csv: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.LazyQuotes = true
	// Exported spreadsheets often have ragged rows; accept them.
	reader.FieldsPerRecord = -1

	var b strings.Builder
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing csv: %w", err)
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(record, ", "))
	}

	return b.String(), nil
}
