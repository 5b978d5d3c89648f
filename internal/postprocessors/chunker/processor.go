// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 50

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits document text into fixed-size rune windows. Adjacent
// chunks share exactly the configured overlap; the final chunk may be
// shorter. Splitting counts runes, not bytes, so Japanese text chunks the
// same way as ASCII.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size in runes.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in runes.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split divides text into chunks owned by documentID.
func (p *Processor) Split(documentID, text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		// Whitespace-only text produces no chunks
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := p.chunkSize - p.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)

	position := 0
	for start := 0; start < total; start += step {
		end := start + p.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    string(runes[start:end]),
			Position:   position,
		})
		position++

		if end == total {
			break
		}
	}

	return chunks
}
