package service

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/extract"
	"github.com/doclens-ai/doclens/internal/pagination"
	"github.com/doclens-ai/doclens/internal/telemetry"
	"github.com/gabriel-vasile/mimetype"
)

// StatusUpdate is one lifecycle transition for a document. Counts are only
// meaningful on the transition to indexed.
type StatusUpdate struct {
	Status     domain.DocumentStatus
	Error      string
	PageCount  int
	WordCount  int
	ChunkCount int
}

// DocumentStore persists document records.
type DocumentStore interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.Document, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) error
	CountByStatus(ctx context.Context) (map[domain.DocumentStatus]int64, error)
}

// IngestJobStore persists ingestion jobs.
type IngestJobStore interface {
	Create(ctx context.Context, job *domain.IngestJob) error
	ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error
}

// FileStore holds uploaded documents for later extraction.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Remove(ctx context.Context, path string) error
}

// Archiver keeps a secondary copy of uploads in object storage. Archival is
// best-effort and never blocks the upload flow.
type Archiver interface {
	Archive(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
}

// ChunkIndex is the index surface the document lifecycle needs.
type ChunkIndex interface {
	Add(ctx context.Context, documentID string, chunks []domain.Chunk) ([]string, error)
	Delete(ctx context.Context, documentID string) (int64, error)
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// DocumentService handles upload, lookup and deletion of documents.
type DocumentService struct {
	repo     DocumentStore
	txRunner TxRunner
	store    FileStore
	archiver Archiver
	index    ChunkIndex
	uuidGen  UUIDGenerator
}

// NewDocumentService creates a DocumentService. archiver may be nil.
func NewDocumentService(repo DocumentStore, txRunner TxRunner, store FileStore, archiver Archiver, index ChunkIndex) *DocumentService {
	return &DocumentService{
		repo:     repo,
		txRunner: txRunner,
		store:    store,
		archiver: archiver,
		index:    index,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// Upload stores the file, validates its format by sniffing the content, and
// enqueues ingestion. The document record and its job are created in one
// transaction so no upload is ever left without a job.
func (s *DocumentService) Upload(ctx context.Context, filename string, r io.Reader) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Upload", telemetry.SpanAttributes{
		Operation: "upload",
	})
	defer span.End()

	id := s.uuidGen.NewString()
	storedName := id + "_" + filepath.Base(filename)

	path, err := s.store.Save(ctx, storedName, r)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError,
			"failed to store upload", err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		_ = s.store.Remove(ctx, path)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError,
			"failed to inspect upload", err)
	}

	if _, err := extract.FormatFromContentType(mtype.String(), filename); err != nil {
		_ = s.store.Remove(ctx, path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		_ = s.store.Remove(ctx, path)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError,
			"failed to stat upload", err)
	}

	s.archive(ctx, storedName, mtype.String(), path)

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          id,
		Filename:    filepath.Base(filename),
		ContentType: mtype.String(),
		SizeBytes:   info.Size(),
		StoragePath: path,
		Status:      domain.DocumentStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := domain.ValidateDocument(doc); err != nil {
		_ = s.store.Remove(ctx, path)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
			"invalid document", err)
	}

	job := &domain.IngestJob{
		ID:         s.uuidGen.NewString(),
		DocumentID: id,
		Status:     domain.IngestJobStatusPending,
		CreatedAt:  now,
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Documents().Create(ctx, doc); err != nil {
			return err
		}
		return repos.IngestJobs().Create(ctx, job)
	})
	if err != nil {
		_ = s.store.Remove(ctx, path)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError,
			"failed to register document", err)
	}

	return doc, nil
}

func (s *DocumentService) archive(ctx context.Context, key, contentType, path string) {
	if s.archiver == nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("archive skipped for %s: %v", key, err)
		return
	}
	defer f.Close()
	if err := s.archiver.Archive(ctx, key, contentType, f); err != nil {
		log.Printf("archive failed for %s: %v", key, err)
	}
}

// Get returns a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of documents, newest first.
func (s *DocumentService) List(ctx context.Context, cursorStr string, limit int) (*pagination.PageResult[*domain.Document], error) {
	cursor, err := pagination.DecodeCursor(cursorStr)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
			"invalid pagination cursor", err)
	}
	limit = pagination.ClampLimit(limit)

	docs, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	next := pagination.CreateNextCursor(docs, limit,
		func(d *domain.Document) string { return d.ID },
		func(d *domain.Document) time.Time { return d.CreatedAt },
	)
	return &pagination.PageResult[*domain.Document]{
		Items:   docs,
		Cursor:  next,
		HasMore: next != "",
	}, nil
}

// Chunks returns a document's indexed chunks in index order. An unknown
// document is a not-found error, not an empty list.
func (s *DocumentService) Chunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.index.Chunks(ctx, id)
}

// Delete removes a document everywhere: index first so no chunk can be
// retrieved for a document that is gone, then the stored file, then the
// record. An index failure aborts and leaves the record in place.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.index.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, doc.StoragePath); err != nil {
		log.Printf("failed to remove stored file for %s: %v", id, err)
	}
	if s.archiver != nil {
		key := doc.ID + "_" + doc.Filename
		if err := s.archiver.Delete(ctx, key); err != nil {
			log.Printf("failed to remove archived copy for %s: %v", id, err)
		}
	}

	return s.repo.Delete(ctx, id)
}

// Counts returns document counts by lifecycle status.
func (s *DocumentService) Counts(ctx context.Context) (map[domain.DocumentStatus]int64, error) {
	return s.repo.CountByStatus(ctx)
}
