package domain

import "time"

// IngestJobStatus represents the state of an ingestion job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob queues a document for extraction and indexing. A failed job is
// terminal; retrying means uploading the document again.
type IngestJob struct {
	ID          string
	DocumentID  string
	Status      IngestJobStatus
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// IsValidIngestJobStatus checks if an IngestJobStatus is valid
func IsValidIngestJobStatus(s IngestJobStatus) bool {
	switch s {
	case IngestJobStatusPending, IngestJobStatusProcessing,
		IngestJobStatusCompleted, IngestJobStatusFailed:
		return true
	}
	return false
}
