package driven

import (
	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// Chunker splits extracted text into ordered retrieval units.
type Chunker interface {
	// Split divides text into chunks owned by the given document.
	// Whitespace-only text yields no chunks. Split is deterministic in
	// content and positions; chunk IDs are freshly generated.
	Split(documentID, text string) []domain.Chunk
}
