package handlers

import (
	"context"
	"net/http"

	"github.com/doclens-ai/doclens/internal/api"
	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/service"
)

type IndexStatsProvider interface {
	Stats(ctx context.Context) (service.IndexStats, error)
}

type DocumentCounter interface {
	Counts(ctx context.Context) (map[domain.DocumentStatus]int64, error)
}

type QueryStatsProvider interface {
	Stats(ctx context.Context) (service.QueryStats, error)
}

// SystemHandler serves health and operational stats.
type SystemHandler struct {
	index   IndexStatsProvider
	docs    DocumentCounter
	queries QueryStatsProvider
}

func NewSystemHandler(index IndexStatsProvider, docs DocumentCounter, queries QueryStatsProvider) *SystemHandler {
	return &SystemHandler{index: index, docs: docs, queries: queries}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

type StatsResponse struct {
	Documents map[domain.DocumentStatus]int64 `json:"documents"`
	Index     service.IndexStats              `json:"index"`
	Queries   service.QueryStats              `json:"queries"`
}

func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.docs.Counts(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	indexStats, err := h.index.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	queryStats, err := h.queries.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StatsResponse{
		Documents: counts,
		Index:     indexStats,
		Queries:   queryStats,
	})
}
