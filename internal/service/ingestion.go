package service

import (
	"context"
	"log"
	"strings"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/extract"
	"github.com/doclens-ai/doclens/internal/telemetry"
)

// TextExtractor turns a stored document into plain text with pagination info.
type TextExtractor interface {
	Extract(ctx context.Context, path string, format extract.Format) (*extract.Result, error)
}

// IngestionService runs the extract-chunk-index path for one document.
// Failures are terminal: the document is marked failed exactly once and is
// never retried; re-uploading is the retry.
type IngestionService struct {
	docs      DocumentStore
	extractor TextExtractor
	index     ChunkIndex
	chunkCfg  ChunkConfig
}

// NewIngestionService creates an IngestionService.
func NewIngestionService(docs DocumentStore, extractor TextExtractor, index ChunkIndex, chunkCfg ChunkConfig) *IngestionService {
	if chunkCfg.TargetChars <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &IngestionService{
		docs:      docs,
		extractor: extractor,
		index:     index,
		chunkCfg:  chunkCfg,
	}
}

// Ingest processes one uploaded document through extraction, chunking and
// indexing, finishing with a single terminal status update. Documents
// already in a terminal state are skipped.
func (s *IngestionService) Ingest(ctx context.Context, documentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "IngestionService.Ingest", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "ingest",
	})
	defer span.End()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status.IsTerminal() {
		return nil
	}

	if err := s.docs.UpdateStatus(ctx, documentID, StatusUpdate{Status: domain.DocumentStatusProcessing}); err != nil {
		return err
	}

	format, err := extract.FormatFromContentType(doc.ContentType, doc.Filename)
	if err != nil {
		return s.fail(ctx, documentID, err)
	}

	res, err := s.extractor.Extract(ctx, doc.StoragePath, format)
	if err != nil {
		return s.fail(ctx, documentID, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return s.fail(ctx, documentID, domain.ErrEmptyDocument)
	}

	textChunks := ChunkText(res.Text, s.chunkCfg)
	if len(textChunks) == 0 {
		return s.fail(ctx, documentID, domain.ErrEmptyDocument)
	}

	chunks := make([]domain.Chunk, len(textChunks))
	for i, tc := range textChunks {
		chunks[i] = domain.Chunk{
			DocumentID: documentID,
			ChunkIndex: tc.Index,
			Content:    tc.Content,
			CharCount:  tc.CharCount,
			PageNumber: extract.PageForOffset(res.PageOffsets, tc.Start),
		}
	}

	ids, err := s.index.Add(ctx, documentID, chunks)
	if err != nil {
		return s.fail(ctx, documentID, err)
	}

	return s.docs.UpdateStatus(ctx, documentID, StatusUpdate{
		Status:     domain.DocumentStatusIndexed,
		PageCount:  res.PageCount,
		WordCount:  res.WordCount,
		ChunkCount: len(ids),
	})
}

// fail records the terminal failed status and returns the original error.
func (s *IngestionService) fail(ctx context.Context, documentID string, cause error) error {
	upd := StatusUpdate{
		Status: domain.DocumentStatusFailed,
		Error:  cause.Error(),
	}
	if err := s.docs.UpdateStatus(ctx, documentID, upd); err != nil {
		log.Printf("failed to mark document %s as failed: %v", documentID, err)
	}
	return cause
}
