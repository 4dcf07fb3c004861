package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/halvard/skein/internal/archive"
	"github.com/halvard/skein/internal/engine"
	"github.com/halvard/skein/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(eng *engine.Engine, store archive.Store, broker *sse.Broker, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(eng, store, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Canvas query and write-back.
	r.Post("/query", h.Query)
	r.Post("/place", h.Place)

	// Script validation loop.
	r.Post("/heal", h.Heal)

	// Document archive.
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{name}", h.GetDocument)
	r.Put("/documents/{name}", h.SaveDocument)
	r.Delete("/documents/{name}", h.DeleteDocument)
	r.Get("/search", h.SearchDocuments)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
