package repository

import (
	"context"
	"encoding/json"

	"github.com/doclens-ai/doclens/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryLogRepository stores query logs for evaluation. Recording is
// best-effort; callers never fail a query on a logging error.
type QueryLogRepository struct {
	pool *pgxpool.Pool
}

func NewQueryLogRepository(pool *pgxpool.Pool) *QueryLogRepository {
	return &QueryLogRepository{pool: pool}
}

func (r *QueryLogRepository) Record(ctx context.Context, entry service.QueryLogEntry) (string, error) {
	sourcesJSON, _ := json.Marshal(entry.SourceDocumentIDs)

	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO query_logs (query, answer, source_document_ids, chunks_retrieved, retrieval_ms, generation_ms, total_ms, success, error_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		entry.Query,
		entry.Answer,
		sourcesJSON,
		entry.ChunksRetrieved,
		entry.RetrievalMs,
		entry.GenerationMs,
		entry.TotalMs,
		entry.Success,
		nullableString(entry.ErrorCode),
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Stats summarizes recorded queries for the stats endpoint.
func (r *QueryLogRepository) Stats(ctx context.Context) (service.QueryStats, error) {
	var stats service.QueryStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COALESCE(AVG(total_ms), 0)
		 FROM query_logs`,
	).Scan(&stats.TotalQueries, &stats.SuccessCount, &stats.AvgTotalMs)
	if err != nil {
		return service.QueryStats{}, err
	}
	return stats, nil
}
