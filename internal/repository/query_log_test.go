//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/doclens-ai/doclens/internal/service"
	"github.com/doclens-ai/doclens/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogRepository_Record(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryLogRepository(pool)

	id, err := repo.Record(ctx, service.QueryLogEntry{
		Query:             "what is the refund policy?",
		Answer:            "Refunds are issued within 30 days. [Source 1]",
		SourceDocumentIDs: []string{"doc-1", "doc-2"},
		ChunksRetrieved:   5,
		RetrievalMs:       42,
		GenerationMs:      800,
		TotalMs:           850,
		Success:           true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestQueryLogRepository_Stats(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryLogRepository(pool)

	empty, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalQueries)
	assert.Zero(t, empty.AvgTotalMs)

	_, err = repo.Record(ctx, service.QueryLogEntry{Query: "q1", TotalMs: 100, Success: true})
	require.NoError(t, err)
	_, err = repo.Record(ctx, service.QueryLogEntry{Query: "q2", TotalMs: 300, Success: false, ErrorCode: "GENERATION_TIMEOUT"})
	require.NoError(t, err)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.SuccessCount)
	assert.InDelta(t, 200.0, stats.AvgTotalMs, 0.001)
}
