// Package pdf extracts text from PDF files using pdfcpu.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles PDF documents. pdfcpu works on files, so the raw
// bytes are staged in a per-call temp directory that is removed when
// extraction finishes.
type Extractor struct {
	tempDir string
}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{tempDir: os.TempDir()}
}

// ContentTypes returns the content types this extractor handles.
func (e *Extractor) ContentTypes() []string {
	return []string{"application/pdf"}
}

// Supports reports whether the extractor handles the content type.
func (e *Extractor) Supports(contentType string) bool {
	return contentType == "application/pdf"
}

// Extract pulls page content out of the PDF and concatenates the pages in
// order, separated by blank lines.
func (e *Extractor) Extract(_ context.Context, raw []byte) (string, error) {
	workDir, err := os.MkdirTemp(e.tempDir, "oshiete-pdf-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pdfPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(pdfPath, raw, 0600); err != nil {
		return "", fmt.Errorf("writing temp pdf: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}
	if pdfCtx.Encrypt != nil {
		return "", fmt.Errorf("%w: encrypted pdf", domain.ErrInvalidInput)
	}

	outDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(outDir, 0700); err != nil {
		return "", fmt.Errorf("creating extraction dir: %w", err)
	}
	if err := api.ExtractContentFile(pdfPath, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("extracting pdf content: %w", err)
	}

	pages, err := readPageFiles(outDir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= pdfCtx.PageCount; pageNum++ {
		text, ok := pages[pageNum]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	return b.String(), nil
}

// readPageFiles collects the per-page content files pdfcpu wrote into dir,
// keyed by 1-based page number.
func readPageFiles(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing extracted pages: %w", err)
	}

	pages := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		var pageNum int
		if _, err := fmt.Sscanf(entry.Name(), "Content_page_%d", &pageNum); err != nil {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", pageNum, err)
		}
		pages[pageNum] = string(content)
	}

	return pages, nil
}
