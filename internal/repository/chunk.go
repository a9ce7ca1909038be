package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository persists embedded chunks and runs similarity search.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// InsertChunks inserts all chunks. Callers wanting all-or-nothing visibility
// run it inside a transaction.
func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO chunks (id, document_id, chunk_index, content, char_count, page_number, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID,
			c.DocumentID,
			c.ChunkIndex,
			c.Content,
			c.CharCount,
			c.PageNumber,
			pgvector.NewVector(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Search returns the topK most similar chunks by cosine similarity, ordered
// similarity DESC, chunk_index ASC, document_id ASC. docIDs, when non-empty,
// restricts the search.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, topK int, docIDs []string) ([]domain.ChunkMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	vec := pgvector.NewVector(embedding)

	query := `
		SELECT c.id, c.document_id, c.chunk_index, c.content, c.page_number, d.filename,
		       1 - (c.embedding <=> $1) AS similarity
		FROM chunks c
		JOIN documents d ON d.id = c.document_id`
	args := []any{vec}
	if len(docIDs) > 0 {
		query += ` WHERE c.document_id = ANY($2::uuid[])`
		args = append(args, docIDs)
	}
	query += `
		ORDER BY similarity DESC, c.chunk_index ASC, c.document_id ASC
		LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, topK)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]domain.ChunkMatch, 0, topK)
	for rows.Next() {
		var m domain.ChunkMatch
		var similarity float64
		if err := rows.Scan(&m.ChunkID, &m.DocumentID, &m.ChunkIndex, &m.Content, &m.PageNumber, &m.Filename, &similarity); err != nil {
			return nil, err
		}
		m.Similarity = float32(similarity)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListByDocument returns a document's chunks in index order. Embeddings are
// not loaded; this feeds the inspection endpoint, not search.
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, chunk_index, content, char_count, page_number, created_at
		 FROM chunks
		 WHERE document_id = $1
		 ORDER BY chunk_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.CharCount, &c.PageNumber, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// EmbeddingDimensions reports the dimensionality of the chunks embedding
// column, or 0 when it cannot be determined. pgvector stores the dimension
// in the column's type modifier.
func (r *ChunkRepository) EmbeddingDimensions(ctx context.Context) (int, error) {
	var typmod int
	err := r.db.QueryRow(ctx,
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = 'chunks'::regclass AND attname = 'embedding'`,
	).Scan(&typmod)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	if typmod <= 0 {
		return 0, nil
	}
	return typmod, nil
}

// DeleteByDocument removes a document's chunks and reports how many rows went.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// CountByDocument returns how many chunks a document currently has.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE document_id = $1`, documentID).Scan(&count)
	return count, err
}

// Count returns the total number of indexed chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}
