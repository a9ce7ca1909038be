package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents the lifecycle state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusIndexed    DocumentStatus = "indexed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document represents an uploaded document and its processing metadata.
// Page and chunk counts are derived during ingestion and only ever written
// through a status update.
type Document struct {
	ID          string
	Filename    string
	ContentType string
	SizeBytes   int64
	StoragePath string
	Status      DocumentStatus
	PageCount   int
	WordCount   int
	ChunkCount  int
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if d.SizeBytes < 0 {
		return fmt.Errorf("document SizeBytes cannot be negative")
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	return nil
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusUploaded, DocumentStatusProcessing,
		DocumentStatusIndexed, DocumentStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the ingestion lifecycle.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusIndexed || s == DocumentStatusFailed
}
