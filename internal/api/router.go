package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ledgr/internal/articleservice"
)

// NewRouter creates a chi router with all API routes mounted.
// Read routes are public; authEnabled controls whether the Bearer token is
// enforced on admin routes. sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *articleservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Articles.
	r.Get("/articles", h.ListArticles)
	r.Get("/articles/{id}", h.GetArticle)
	r.Get("/categories", h.Categories)

	// Admin.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Post("/refresh", h.Refresh)
		r.Get("/articles/{id}/sources", h.ExplainArticle)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
