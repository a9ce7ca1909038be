package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/doclens-ai/doclens/internal/api"
	"github.com/doclens-ai/doclens/internal/service"
)

type QueryPipeline interface {
	Query(ctx context.Context, input service.QueryInput) *service.QueryResult
}

type QueryHandler struct {
	pipeline QueryPipeline
}

func NewQueryHandler(pipeline QueryPipeline) *QueryHandler {
	return &QueryHandler{pipeline: pipeline}
}

type QueryRequest struct {
	Question        string   `json:"question"`
	DocumentIDs     []string `json:"document_ids,omitempty"`
	TopK            int      `json:"top_k,omitempty"`
	SimilarityFloor *float32 `json:"similarity_floor,omitempty"`
}

// Query runs a question through the pipeline. The pipeline envelope is
// returned verbatim with status 200; only a malformed request gets a 4xx.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	floor := float32(-1)
	if req.SimilarityFloor != nil {
		floor = *req.SimilarityFloor
	}

	result := h.pipeline.Query(r.Context(), service.QueryInput{
		Question:        req.Question,
		DocumentIDs:     req.DocumentIDs,
		TopK:            req.TopK,
		SimilarityFloor: floor,
	})

	api.JSON(w, http.StatusOK, result)
}
