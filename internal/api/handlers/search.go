package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/doclens-ai/doclens/internal/api"
	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/service"
	"github.com/go-chi/chi/v5"
)

type RetrieverService interface {
	Retrieve(ctx context.Context, query string, topK int, docIDs []string, floor float32) ([]domain.ChunkMatch, error)
}

type SummaryService interface {
	Summarize(ctx context.Context, documentID string) (*service.SummaryResult, error)
}

// SearchHandler serves the read-only retrieval endpoints: raw similarity
// search without answer generation, and per-document summaries.
type SearchHandler struct {
	retriever    RetrieverService
	summarizer   SummaryService
	defaultFloor float32
}

func NewSearchHandler(retriever RetrieverService, summarizer SummaryService, defaultFloor float32) *SearchHandler {
	return &SearchHandler{
		retriever:    retriever,
		summarizer:   summarizer,
		defaultFloor: defaultFloor,
	}
}

type SearchRequest struct {
	Query           string   `json:"query"`
	DocumentIDs     []string `json:"document_ids,omitempty"`
	TopK            int      `json:"top_k,omitempty"`
	SimilarityFloor *float32 `json:"similarity_floor,omitempty"`
}

type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	PageNumber int     `json:"page_number,omitempty"`
	Filename   string  `json:"filename"`
	Similarity float32 `json:"similarity"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// Search runs a similarity search and returns the ranked chunks without
// calling the language model. An omitted similarity_floor uses the
// configured default; an explicit zero disables truncation.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	floor := h.defaultFloor
	if req.SimilarityFloor != nil {
		floor = *req.SimilarityFloor
	}

	matches, err := h.retriever.Retrieve(r.Context(), req.Query, req.TopK, req.DocumentIDs, floor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			ChunkID:    m.ChunkID,
			DocumentID: m.DocumentID,
			ChunkIndex: m.ChunkIndex,
			Content:    m.Content,
			PageNumber: m.PageNumber,
			Filename:   m.Filename,
			Similarity: m.Similarity,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Query:   req.Query,
		Results: results,
		Count:   len(results),
	})
}

// DocumentSummary generates a summary of one indexed document.
func (h *SearchHandler) DocumentSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	result, err := h.summarizer.Summarize(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}
