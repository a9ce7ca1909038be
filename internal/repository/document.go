package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/pagination"
	"github.com/doclens-ai/doclens/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, filename, content_type, size_bytes, storage_path, status, page_count, word_count, chunk_count, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.Filename, d.ContentType, d.SizeBytes, d.StoragePath, d.Status,
		d.PageCount, d.WordCount, d.ChunkCount, nullableString(d.Error), d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var errMsg pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, filename, content_type, size_bytes, storage_path, status, page_count, word_count, chunk_count, error, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.StoragePath, &d.Status,
		&d.PageCount, &d.WordCount, &d.ChunkCount, &errMsg, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if errMsg.Valid {
		d.Error = errMsg.String
	}
	return &d, nil
}

// List returns documents newest first using keyset pagination.
func (r *DocumentRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, filename, content_type, size_bytes, storage_path, status, page_count, word_count, chunk_count, error, created_at, updated_at
		 FROM documents`
	args := []any{}
	if cursor != nil {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, cursor.Timestamp, cursor.LastID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		var errMsg pgtype.Text
		if err := rows.Scan(&d.ID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.StoragePath, &d.Status,
			&d.PageCount, &d.WordCount, &d.ChunkCount, &errMsg, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			d.Error = errMsg.String
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// UpdateStatus writes a lifecycle transition. Terminal statuses only apply
// while the document is processing, so indexed/failed is recorded at most
// once per ingestion.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, upd service.StatusUpdate) error {
	query := `UPDATE documents
		 SET status = $1, error = $2, page_count = $3, word_count = $4, chunk_count = $5, updated_at = $6
		 WHERE id = $7`
	if upd.Status.IsTerminal() {
		query += ` AND status = '` + string(domain.DocumentStatusProcessing) + `'`
	}

	cmdTag, err := r.db.Exec(ctx, query,
		upd.Status, nullableString(upd.Error), upd.PageCount, upd.WordCount, upd.ChunkCount,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// CountByStatus returns document counts grouped by lifecycle status.
func (r *DocumentRepository) CountByStatus(ctx context.Context) (map[domain.DocumentStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.DocumentStatus]int64)
	for rows.Next() {
		var status domain.DocumentStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
