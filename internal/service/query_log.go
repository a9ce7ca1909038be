package service

import "context"

// QueryLogEntry captures one answered (or failed) query for evaluation.
type QueryLogEntry struct {
	Query             string
	Answer            string
	SourceDocumentIDs []string
	ChunksRetrieved   int
	RetrievalMs       int64
	GenerationMs      int64
	TotalMs           int64
	Success           bool
	ErrorCode         string
}

// QueryStats summarizes recorded queries.
type QueryStats struct {
	TotalQueries int64   `json:"total_queries"`
	SuccessCount int64   `json:"success_count"`
	AvgTotalMs   float64 `json:"avg_total_ms"`
}

// QueryLogStore persists query logs.
type QueryLogStore interface {
	Record(ctx context.Context, entry QueryLogEntry) (string, error)
	Stats(ctx context.Context) (QueryStats, error)
}
