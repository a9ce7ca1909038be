package domain

import "time"

// Chunk is a bounded segment of a document's text, the unit of embedding
// and retrieval. Chunk indices are contiguous and 0-based within a document
// and are never reordered after creation.
type Chunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Content    string
	CharCount  int
	PageNumber int // 0 when the source format has no real pagination
	Filename   string
	Embedding  []float32
	CreatedAt  time.Time
}

// ChunkMatch is a chunk returned by a similarity search, scored in [-1, 1].
type ChunkMatch struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Content    string
	PageNumber int
	Filename   string
	Similarity float32
}
