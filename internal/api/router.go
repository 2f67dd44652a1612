package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gaocuixia/running-journal/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events/stream inside the
// auth group.
func NewRouter(store *journal.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Articles CRUD.
	r.Get("/articles", h.ListArticles)
	r.Post("/articles", h.CreateArticle)
	r.Put("/articles/{id}", h.UpdateArticle)
	r.Delete("/articles/{id}", h.DeleteArticle)

	// Events CRUD.
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Put("/events/{id}", h.UpdateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)

	// Bulk transfer.
	r.Get("/export", h.Export)
	r.Post("/import", h.ImportJSON)
	r.Post("/import/events", h.ImportSheet)

	// SSE stream (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events/stream", sseHandler.ServeHTTP)
	}

	return r
}
