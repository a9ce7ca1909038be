package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/doclens-ai/doclens/internal/domain"
)

// ChunkStore persists embedded chunks and runs similarity search.
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error
	Search(ctx context.Context, embedding []float32, topK int, docIDs []string) ([]domain.ChunkMatch, error)
	ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
	CountByDocument(ctx context.Context, documentID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	EmbeddingDimensions(ctx context.Context) (int, error)
}

// IndexMetaStore persists the pinned embedding model identity.
type IndexMetaStore interface {
	GetModelInfo(ctx context.Context) (model string, dimensions int, err error)
	SetModelInfo(ctx context.Context, model string, dimensions int) error
}

// Embedder turns text into a fixed-dimension vector under a pinned model.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	ModelID() (string, int)
}

// IndexStats summarizes the index for the stats endpoint.
type IndexStats struct {
	Chunks     int64  `json:"chunks"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// EmbeddingIndex stores chunk vectors and answers similarity queries. All
// chunks of a document become visible atomically; add and delete of the same
// document are serialized by a per-document lock. The index is bound to one
// embedding model for its whole lifetime.
type EmbeddingIndex struct {
	embedder Embedder
	txRunner TxRunner
	chunks   ChunkStore
	meta     IndexMetaStore
	uuidGen  UUIDGenerator

	model      string
	dimensions int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEmbeddingIndex creates an EmbeddingIndex. Call Init before use to pin
// the embedding model against any previously indexed data.
func NewEmbeddingIndex(embedder Embedder, txRunner TxRunner, chunks ChunkStore, meta IndexMetaStore, uuidGen UUIDGenerator) *EmbeddingIndex {
	if uuidGen == nil {
		uuidGen = &DefaultUUIDGenerator{}
	}
	model, dimensions := embedder.ModelID()
	return &EmbeddingIndex{
		embedder:   embedder,
		txRunner:   txRunner,
		chunks:     chunks,
		meta:       meta,
		uuidGen:    uuidGen,
		model:      model,
		dimensions: dimensions,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Init verifies the configured embedding model against the vector column and
// the persisted pin, writing the pin on first use. A model or dimension
// change against an existing index is refused; the index must be rebuilt
// instead.
func (s *EmbeddingIndex) Init(ctx context.Context) error {
	colDims, err := s.chunks.EmbeddingDimensions(ctx)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"failed to read index schema", err)
	}
	if colDims > 0 && colDims != s.dimensions {
		return domain.NewDomainErrorWithCause(domain.ErrCodeDimensionMismatch,
			"configured embedding dimensions do not match the chunks table",
			fmt.Errorf("column holds %d dims, configured %d", colDims, s.dimensions))
	}

	stored, storedDims, err := s.meta.GetModelInfo(ctx)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"failed to read index metadata", err)
	}

	if stored == "" {
		if err := s.meta.SetModelInfo(ctx, s.model, s.dimensions); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
				"failed to pin embedding model", err)
		}
		return nil
	}

	if stored != s.model || storedDims != s.dimensions {
		return domain.NewDomainErrorWithCause(domain.ErrCodeDimensionMismatch,
			"embedding model does not match the existing index",
			fmt.Errorf("index built with %s (%d dims), configured %s (%d dims)",
				stored, storedDims, s.model, s.dimensions))
	}
	return nil
}

// ModelName returns the pinned embedding model name.
func (s *EmbeddingIndex) ModelName() string {
	return s.model
}

// Dimensions returns the pinned embedding dimensionality.
func (s *EmbeddingIndex) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingIndex) lockDocument(documentID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[documentID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Add embeds and stores all chunks of a document in a single transaction, so
// a document is either fully indexed or not indexed at all. Returns the IDs
// assigned to the stored chunks.
func (s *EmbeddingIndex) Add(ctx context.Context, documentID string, chunks []domain.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	unlock := s.lockDocument(documentID)
	defer unlock()

	now := time.Now().UTC()
	ids := make([]string, len(chunks))
	for i := range chunks {
		embedding, err := s.embedder.GenerateEmbedding(ctx, chunks[i].Content)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
				"embedding backend unavailable", err)
		}
		if len(embedding) != s.dimensions {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeDimensionMismatch,
				"embedding dimensionality does not match the index",
				fmt.Errorf("got %d, index has %d", len(embedding), s.dimensions))
		}

		ids[i] = s.uuidGen.NewString()
		chunks[i].ID = ids[i]
		chunks[i].DocumentID = documentID
		chunks[i].Embedding = embedding
		chunks[i].CreatedAt = now
	}

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		return repos.Chunks().InsertChunks(ctx, chunks)
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"failed to store chunks", err)
	}

	return ids, nil
}

// Delete removes all chunks of a document atomically. The count of rows to
// remove is taken and the delete executed in the same transaction; a
// mismatch rolls back and surfaces as ErrPartialDelete. Deleting a document
// with no chunks returns zero without error.
func (s *EmbeddingIndex) Delete(ctx context.Context, documentID string) (int64, error) {
	unlock := s.lockDocument(documentID)
	defer unlock()

	var deleted int64
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		expected, err := repos.Chunks().CountByDocument(ctx, documentID)
		if err != nil {
			return err
		}

		deleted, err = repos.Chunks().DeleteByDocument(ctx, documentID)
		if err != nil {
			return err
		}
		if deleted != expected {
			return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError,
				"index deletion removed fewer chunks than expected",
				fmt.Errorf("expected %d, deleted %d", expected, deleted))
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*domain.DomainError); ok {
			return 0, err
		}
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"failed to delete chunks", err)
	}

	return deleted, nil
}

// Search returns the topK nearest chunks to the query vector, then truncates
// matches scoring below floor. Truncation happens after ranking and never
// reorders results.
func (s *EmbeddingIndex) Search(ctx context.Context, embedding []float32, topK int, docIDs []string, floor float32) ([]domain.ChunkMatch, error) {
	if len(embedding) != s.dimensions {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeDimensionMismatch,
			"query embedding dimensionality does not match the index",
			fmt.Errorf("got %d, index has %d", len(embedding), s.dimensions))
	}

	matches, err := s.chunks.Search(ctx, embedding, topK, docIDs)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"similarity search failed", err)
	}

	if floor > 0 {
		kept := matches[:0]
		for _, m := range matches {
			if m.Similarity >= floor {
				kept = append(kept, m)
			}
		}
		matches = kept
	}
	return matches, nil
}

// Chunks returns a document's stored chunks in index order, without
// embeddings.
func (s *EmbeddingIndex) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	chunks, err := s.chunks.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"failed to list chunks", err)
	}
	return chunks, nil
}

// Stats reports the current index size and model identity.
func (s *EmbeddingIndex) Stats(ctx context.Context) (IndexStats, error) {
	count, err := s.chunks.Count(ctx)
	if err != nil {
		return IndexStats{}, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			"failed to read index stats", err)
	}
	return IndexStats{
		Chunks:     count,
		Model:      s.model,
		Dimensions: s.dimensions,
	}, nil
}
