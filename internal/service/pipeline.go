package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/telemetry"
)

// PipelineState tracks progress of one query through the pipeline.
type PipelineState string

const (
	StateRetrieving PipelineState = "retrieving"
	StateEmpty      PipelineState = "empty"
	StateRetrieved  PipelineState = "retrieved"
	StateGenerating PipelineState = "generating"
	StateDone       PipelineState = "done"
	StateFailed     PipelineState = "failed"
)

// NoInformationAnswer is returned when retrieval finds nothing relevant.
const NoInformationAnswer = "I couldn't find any relevant information in the uploaded documents to answer your question."

// QueryInput is a question with optional retrieval controls. TopK defaults
// when zero or negative; SimilarityFloor defaults when negative, so an
// explicit zero disables the floor.
type QueryInput struct {
	Question        string
	DocumentIDs     []string
	TopK            int
	SimilarityFloor float32
}

// QueryResult is the full answer envelope returned to clients. State records
// where the pipeline ended and is not serialized.
type QueryResult struct {
	State           PipelineState `json:"-"`
	Success         bool          `json:"success"`
	Query           string        `json:"query"`
	Answer          string        `json:"answer"`
	Sources         []Source      `json:"sources"`
	ChunksRetrieved int           `json:"chunks_retrieved"`
	RetrievalMs     int64         `json:"retrieval_ms"`
	GenerationMs    int64         `json:"generation_ms"`
	TotalMs         int64         `json:"total_ms"`
	Provider        string        `json:"provider"`
	ErrorCode       string        `json:"error,omitempty"`
}

// RAGPipeline orchestrates retrieval and answer synthesis. Query always
// produces a well-formed result; failures are reported inside the envelope
// rather than as transport errors.
type RAGPipeline struct {
	retriever    *Retriever
	synthesizer  *AnswerSynthesizer
	queryLog     QueryLogStore
	defaultFloor float32
}

// NewRAGPipeline creates a RAGPipeline. queryLog may be nil to disable
// logging; defaultFloor applies when the query does not set its own.
func NewRAGPipeline(retriever *Retriever, synthesizer *AnswerSynthesizer, queryLog QueryLogStore, defaultFloor float32) *RAGPipeline {
	return &RAGPipeline{
		retriever:    retriever,
		synthesizer:  synthesizer,
		queryLog:     queryLog,
		defaultFloor: defaultFloor,
	}
}

// Query runs one question through retrieve and generate. When retrieval
// finds nothing the pipeline answers directly without calling the language
// model; when generation fails the retrieved chunk count is preserved in the
// failure envelope.
func (p *RAGPipeline) Query(ctx context.Context, input QueryInput) *QueryResult {
	ctx, span := telemetry.StartSpan(ctx, "RAGPipeline.Query", telemetry.SpanAttributes{
		Provider:  p.synthesizer.Provider(),
		Operation: "query",
	})
	defer span.End()

	start := time.Now()

	floor := input.SimilarityFloor
	if floor < 0 {
		floor = p.defaultFloor
	}

	result := &QueryResult{
		State:    StateRetrieving,
		Query:    input.Question,
		Sources:  []Source{},
		Provider: p.synthesizer.Provider(),
	}

	matches, err := p.retriever.Retrieve(ctx, input.Question, input.TopK, input.DocumentIDs, floor)
	result.RetrievalMs = time.Since(start).Milliseconds()
	if err != nil {
		result.State = StateFailed
		result.Success = false
		result.Answer = err.Error()
		var derr *domain.DomainError
		if errors.As(err, &derr) {
			result.ErrorCode = derr.Code
			result.Answer = derr.Message
		} else {
			result.ErrorCode = domain.ErrCodeInternalError
		}
		result.TotalMs = time.Since(start).Milliseconds()
		p.record(ctx, result)
		return result
	}

	result.ChunksRetrieved = len(matches)

	if len(matches) == 0 {
		result.State = StateEmpty
		result.Success = true
		result.Answer = NoInformationAnswer
		result.TotalMs = time.Since(start).Milliseconds()
		p.record(ctx, result)
		return result
	}

	result.State = StateGenerating
	genStart := time.Now()
	synth := p.synthesizer.Synthesize(ctx, input.Question, matches)
	result.GenerationMs = time.Since(genStart).Milliseconds()

	result.Success = synth.Success
	result.Answer = synth.Answer
	result.Sources = synth.Sources
	result.ErrorCode = synth.ErrorCode
	if synth.Success {
		result.State = StateDone
	} else {
		result.State = StateFailed
	}

	result.TotalMs = time.Since(start).Milliseconds()
	p.record(ctx, result)
	return result
}

// record logs the query outcome without ever affecting the caller. The
// write runs detached from the request context so client disconnects do not
// drop log entries.
func (p *RAGPipeline) record(ctx context.Context, result *QueryResult) {
	if p.queryLog == nil {
		return
	}

	entry := QueryLogEntry{
		Query:             result.Query,
		Answer:            result.Answer,
		SourceDocumentIDs: make([]string, 0, len(result.Sources)),
		ChunksRetrieved:   result.ChunksRetrieved,
		RetrievalMs:       result.RetrievalMs,
		GenerationMs:      result.GenerationMs,
		TotalMs:           result.TotalMs,
		Success:           result.Success,
		ErrorCode:         result.ErrorCode,
	}
	for _, s := range result.Sources {
		entry.SourceDocumentIDs = append(entry.SourceDocumentIDs, s.DocumentID)
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	go func() {
		defer cancel()
		if _, err := p.queryLog.Record(logCtx, entry); err != nil {
			log.Printf("query log write failed: %v", err)
		}
	}()
}
