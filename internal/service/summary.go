package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/telemetry"
)

// DefaultSummaryChunks bounds how much of a document feeds the summary
// prompt.
const DefaultSummaryChunks = 10

// ChunkLister exposes a document's stored chunks in index order.
type ChunkLister interface {
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// SummaryResult is the generated summary of one document.
type SummaryResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Summary    string `json:"summary"`
	ChunksUsed int    `json:"chunks_used"`
	Provider   string `json:"provider"`
}

// DocumentSummarizer generates a short summary of an indexed document from
// its leading chunks.
type DocumentSummarizer struct {
	docs      DocumentStore
	chunks    ChunkLister
	generator Generator
	maxChunks int
}

// NewDocumentSummarizer creates a DocumentSummarizer. maxChunks defaults
// when zero or negative.
func NewDocumentSummarizer(docs DocumentStore, chunks ChunkLister, generator Generator, maxChunks int) *DocumentSummarizer {
	if maxChunks <= 0 {
		maxChunks = DefaultSummaryChunks
	}
	return &DocumentSummarizer{
		docs:      docs,
		chunks:    chunks,
		generator: generator,
		maxChunks: maxChunks,
	}
}

// BuildSummaryPrompt renders the summary prompt over the given chunks,
// which appear in document order.
func BuildSummaryPrompt(filename string, chunks []domain.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}

	return fmt.Sprintf(`You are a helpful assistant that summarizes documents.

Document: %s

Content:
%s
Instructions:
- Write a concise summary of the content above in a few sentences.
- Mention only what the content actually says.

Summary:`, filename, b.String())
}

// Summarize generates a summary for the document with the given ID. Only
// the first chunks up to the configured limit feed the prompt; a document
// with no indexed content is rejected.
func (s *DocumentSummarizer) Summarize(ctx context.Context, documentID string) (*SummaryResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentSummarizer.Summarize", telemetry.SpanAttributes{
		DocumentID: documentID,
		Provider:   s.generator.Provider(),
		Operation:  "summarize",
	})
	defer span.End()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.chunks.Chunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation,
			"document has no indexed content to summarize")
	}
	if len(chunks) > s.maxChunks {
		chunks = chunks[:s.maxChunks]
	}

	summary, err := s.generator.Generate(ctx, BuildSummaryPrompt(doc.Filename, chunks))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationTimeout,
				"summary generation timed out", err)
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationFailure,
			"summary generation failed", err)
	}

	return &SummaryResult{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Summary:    summary,
		ChunksUsed: len(chunks),
		Provider:   s.generator.Provider(),
	}, nil
}
