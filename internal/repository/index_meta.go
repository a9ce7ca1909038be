package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexMetaRepository persists the embedding model identity the index was
// built with. The table holds a single row.
type IndexMetaRepository struct {
	db dbtx
}

func NewIndexMetaRepository(pool *pgxpool.Pool) *IndexMetaRepository {
	return &IndexMetaRepository{db: pool}
}

func NewIndexMetaRepositoryWithTx(tx pgx.Tx) *IndexMetaRepository {
	return &IndexMetaRepository{db: tx}
}

// GetModelInfo returns the pinned model name and dimensionality, or empty
// values when nothing has been pinned yet.
func (r *IndexMetaRepository) GetModelInfo(ctx context.Context) (string, int, error) {
	var model string
	var dimensions int
	err := r.db.QueryRow(ctx,
		`SELECT model_name, dimensions FROM index_meta WHERE id = 1`,
	).Scan(&model, &dimensions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, nil
		}
		return "", 0, err
	}
	return model, dimensions, nil
}

// SetModelInfo pins the model identity, overwriting any previous pin.
func (r *IndexMetaRepository) SetModelInfo(ctx context.Context, model string, dimensions int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO index_meta (id, model_name, dimensions, updated_at)
		 VALUES (1, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET model_name = $1, dimensions = $2, updated_at = $3`,
		model, dimensions, time.Now().UTC(),
	)
	return err
}
