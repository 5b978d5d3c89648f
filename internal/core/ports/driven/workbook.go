package driven

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// FAQStore reads ground-truth question workbooks and writes result
// workbooks. The raw bytes come from the object store or local disk;
// this port only handles the workbook format.
type FAQStore interface {
	// LoadFAQ parses FAQ entries from workbook bytes. The first sheet
	// must carry the header columns id, question, ground_truth and
	// filter; rows with a blank question are skipped.
	LoadFAQ(ctx context.Context, raw []byte) ([]domain.FAQEntry, error)

	// SaveResults writes a results workbook to path: a Results sheet
	// with one row per question and a Settings sheet with the run
	// parameters.
	SaveResults(ctx context.Context, path string, report *domain.EvaluationReport, settings map[string]string) error
}
