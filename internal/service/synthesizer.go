package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doclens-ai/doclens/internal/domain"
)

// Generator produces a completion for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// Source attributes part of an answer to a document. Sources are unique per
// document in first-retrieved order and carry the highest similarity among
// that document's retrieved chunks.
type Source struct {
	Index      int     `json:"index"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Similarity float32 `json:"similarity"`
	PageNumber int     `json:"page_number,omitempty"`
}

// SynthesisResult is the outcome of answer generation. Backend failures are
// reported through Success and ErrorCode rather than a bare error, so the
// transport layer always has a well-formed answer payload.
type SynthesisResult struct {
	Success   bool
	Answer    string
	Sources   []Source
	ErrorCode string
}

// AnswerSynthesizer renders retrieved chunks into a grounded prompt and asks
// the generation backend for an answer.
type AnswerSynthesizer struct {
	generator Generator
}

// NewAnswerSynthesizer creates an AnswerSynthesizer.
func NewAnswerSynthesizer(generator Generator) *AnswerSynthesizer {
	return &AnswerSynthesizer{generator: generator}
}

// Provider returns the name of the underlying generation backend.
func (s *AnswerSynthesizer) Provider() string {
	return s.generator.Provider()
}

// BuildPrompt renders the grounding prompt. Chunks appear in retrieval order,
// each tagged with a 1-based source marker the model is told to cite.
func BuildPrompt(query string, matches []domain.ChunkMatch) string {
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "[Source %d] (%s)\n%s\n\n", i+1, m.Filename, m.Content)
	}

	return fmt.Sprintf(`You are a helpful assistant that answers questions using the provided document excerpts.

Context:
%s
Question: %s

Instructions:
- Answer using ONLY the information in the context above.
- If the context does not contain enough information to answer the question, say so instead of guessing.
- Cite the excerpts you used as [Source N].

Answer:`, b.String(), query)
}

// Synthesize generates an answer grounded in the given matches. Generation
// errors come back as a structured failure result, classified as a timeout
// when the backend deadline expired.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, query string, matches []domain.ChunkMatch) SynthesisResult {
	prompt := BuildPrompt(query, matches)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		code := domain.ErrCodeGenerationFailure
		msg := "The answer could not be generated because the language model backend failed."
		if errors.Is(err, context.DeadlineExceeded) {
			code = domain.ErrCodeGenerationTimeout
			msg = "The answer could not be generated because the language model timed out."
		}
		return SynthesisResult{
			Success:   false,
			Answer:    msg,
			Sources:   []Source{},
			ErrorCode: code,
		}
	}

	return SynthesisResult{
		Success: true,
		Answer:  answer,
		Sources: CollectSources(matches),
	}
}

// CollectSources deduplicates matches by document, keeping first-retrieved
// order and the maximum similarity per document.
func CollectSources(matches []domain.ChunkMatch) []Source {
	sources := make([]Source, 0, len(matches))
	byDoc := make(map[string]int)
	for _, m := range matches {
		if i, ok := byDoc[m.DocumentID]; ok {
			if m.Similarity > sources[i].Similarity {
				sources[i].Similarity = m.Similarity
				sources[i].PageNumber = m.PageNumber
			}
			continue
		}
		byDoc[m.DocumentID] = len(sources)
		sources = append(sources, Source{
			Index:      len(sources) + 1,
			DocumentID: m.DocumentID,
			Filename:   m.Filename,
			Similarity: m.Similarity,
			PageNumber: m.PageNumber,
		})
	}
	return sources
}
