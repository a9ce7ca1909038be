package service

import (
	"context"
	"strings"

	"github.com/doclens-ai/doclens/internal/domain"
)

// Retriever embeds a query with the index's pinned model and returns the
// most similar chunks.
type Retriever struct {
	embedder    Embedder
	index       *EmbeddingIndex
	defaultTopK int
}

// NewRetriever creates a Retriever. defaultTopK applies when a query does
// not specify its own limit.
func NewRetriever(embedder Embedder, index *EmbeddingIndex, defaultTopK int) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Retriever{
		embedder:    embedder,
		index:       index,
		defaultTopK: defaultTopK,
	}
}

// Retrieve embeds the query and searches the index. Empty or whitespace-only
// queries are rejected before any embedding call. docIDs, when non-empty,
// restricts retrieval; floor truncates low-scoring matches after ranking.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, docIDs []string, floor float32) ([]domain.ChunkMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if topK <= 0 {
		topK = r.defaultTopK
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"failed to embed query", err)
	}

	return r.index.Search(ctx, embedding, topK, docIDs, floor)
}
