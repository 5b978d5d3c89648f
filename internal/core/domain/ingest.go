package domain

import "time"

// FileStatus classifies the outcome of ingesting one file.
type FileStatus string

// Possible per-file outcomes.
const (
	// FileSucceeded means the document and all its chunks were persisted.
	FileSucceeded FileStatus = "success"

	// FileFailed means a pipeline stage errored; nothing was persisted.
	FileFailed FileStatus = "failed"

	// FileSkipped means the file was intentionally not ingested
	// (unsupported type, empty text, no chunks).
	FileSkipped FileStatus = "skipped"
)

// IsValid returns true if the status is recognised.
func (s FileStatus) IsValid() bool {
	switch s {
	case FileSucceeded, FileFailed, FileSkipped:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s FileStatus) String() string {
	return string(s)
}

// FileOutcome records what happened to one file during ingestion.
type FileOutcome struct {
	// Filename is the object key that was processed.
	Filename string

	// Status classifies the outcome.
	Status FileStatus

	// DocumentID is set when the file was persisted.
	DocumentID string

	// ChunksSaved is the number of chunk rows written.
	ChunksSaved int

	// Reason explains a failure or skip; empty on success.
	Reason string
}

// IngestReport aggregates the outcomes of one ingestion run.
// One file's failure never aborts the run, so the report always
// covers every listed file.
type IngestReport struct {
	// TotalFiles is the number of objects the run attempted.
	TotalFiles int

	// Succeeded, Failed and Skipped partition TotalFiles.
	Succeeded int
	Failed    int
	Skipped   int

	// TotalChunks is the number of chunk rows written across all files.
	TotalChunks int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration

	// Outcomes holds the per-file records in processing order.
	Outcomes []FileOutcome
}

// Add records one outcome and updates the counters.
func (r *IngestReport) Add(o FileOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case FileSucceeded:
		r.Succeeded++
		r.TotalChunks += o.ChunksSaved
	case FileFailed:
		r.Failed++
	case FileSkipped:
		r.Skipped++
	}
}

// IngestStage names the pipeline stage a progress event refers to.
type IngestStage string

// Ingestion stages in execution order.
const (
	StageFetch   IngestStage = "fetch"
	StageExtract IngestStage = "extract"
	StageChunk   IngestStage = "chunk"
	StageEmbed   IngestStage = "embed"
	StagePersist IngestStage = "persist"
	StageDone    IngestStage = "done"
)

// IngestProgress is delivered to the progress callback once per
// stage transition and once per completed file.
type IngestProgress struct {
	// Index is the 1-based position of the file in the run.
	Index int

	// Total is the number of files in the run.
	Total int

	// Filename is the object key being processed.
	Filename string

	// Stage is the pipeline stage just entered.
	Stage IngestStage

	// Outcome is non-nil only when Stage is StageDone.
	Outcome *FileOutcome
}

// IngestOptions configures an ingestion run.
type IngestOptions struct {
	// Prefix restricts listing to keys under a folder. Empty lists all.
	Prefix string

	// Filtering is the category assigned to documents that have no
	// folder-derived category.
	Filtering string

	// Progress receives per-stage events. Nil disables reporting.
	Progress func(IngestProgress)
}
