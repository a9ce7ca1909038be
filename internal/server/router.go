package server

import (
	"net/http"

	"github.com/doclens-ai/doclens/internal/api/handlers"
	"github.com/doclens-ai/doclens/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	QueryHandler    *handlers.QueryHandler
	SearchHandler   *handlers.SearchHandler
	SystemHandler   *handlers.SystemHandler
	MaxBodyBytes    int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 50 * 1024 * 1024
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.SystemHandler.Health)
	r.Get("/stats", cfg.SystemHandler.Stats)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Upload)
		r.Get("/", cfg.DocumentHandler.List)
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Get("/{id}/chunks", cfg.DocumentHandler.Chunks)
		r.Get("/{id}/summary", cfg.SearchHandler.DocumentSummary)
		r.Delete("/{id}", cfg.DocumentHandler.Delete)
	})

	r.Post("/query", cfg.QueryHandler.Query)
	r.Post("/search", cfg.SearchHandler.Search)

	return r
}
