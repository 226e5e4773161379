package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ledgr/internal/articleservice"
	"github.com/starford/ledgr/internal/catalog"
)

const maxQueryLen = 200

// Handler holds API route handlers.
type Handler struct {
	svc *articleservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *articleservice.Service) *Handler {
	return &Handler{svc: svc}
}

// listParams are the query parameters of GET /api/articles.
type listParams struct {
	Query    string
	Category string
}

func (p listParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Query, validation.RuneLength(0, maxQueryLen)),
		validation.Field(&p.Category, validation.By(knownCategory)),
	)
}

func knownCategory(v any) error {
	s, _ := v.(string)
	if _, ok := catalog.Resolve(s); !ok {
		return validation.NewError("validation_unknown_category", "must be one of the feed categories")
	}
	return nil
}

// ListArticles handles GET /api/articles.
//
//	@Summary		List published articles, newest first
//	@Tags			articles
//	@Produce		json
//	@Param			q			query		string	false	"Search title, description and category"
//	@Param			category	query		string	false	"Category"	Enums(All, Startups, Design, Tech, Product, Growth)
//	@Success		200			{object}	ArticleListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/articles [get]
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listParams{Query: q.Get("q"), Category: q.Get("category")}
	if err := params.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	items, err := h.svc.ListArticles(r.Context(), params.Query, params.Category)
	if err != nil {
		writeError(w, r, "list articles", err)
		return
	}
	if secs := int(h.svc.Revalidate().Seconds()); secs > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate", secs))
	}
	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: items, Total: len(items)})
}

// GetArticle handles GET /api/articles/{id}.
//
//	@Summary		Get one article with its formatted body
//	@Tags			articles
//	@Produce		json
//	@Param			id				path		string	true	"Page ID"
//	@Param			If-None-Match	header		string	false	"Checksum from a previous response"
//	@Success		200				{object}	ArticleDetail
//	@Success		304				"Not modified"
//	@Failure		404				{object}	errResponse
//	@Failure		502				{object}	errResponse
//	@Router			/articles/{id} [get]
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.svc.GetArticle(r.Context(), id)
	if err != nil {
		writeError(w, r, "get article", err, slog.String("id", id))
		return
	}

	etag := `"` + d.Checksum + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), d.Checksum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// etagMatches reports whether an If-None-Match header lists sum.
func etagMatches(header, sum string) bool {
	if header == "" {
		return false
	}
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		tag = strings.TrimPrefix(tag, "W/")
		if strings.Trim(tag, `"`) == sum {
			return true
		}
	}
	return false
}

// Categories handles GET /api/categories.
//
//	@Summary		List feed categories
//	@Tags			articles
//	@Produce		json
//	@Success		200	{object}	CategoryListResponse
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: h.svc.Categories()})
}

// Refresh handles POST /api/refresh.
//
//	@Summary		Refetch the article list now
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	RefreshResponse
//	@Failure		401	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeError(w, r, "refresh", err)
		return
	}
	slog.Info("articles refreshed", slog.Int("count", n))
	writeJSON(w, http.StatusOK, RefreshResponse{Count: n})
}

// ExplainArticle handles GET /api/articles/{id}/sources.
//
//	@Summary		Show which record field produced each article field
//	@Tags			admin
//	@Produce		json
//	@Param			id	path		string	true	"Page ID"
//	@Success		200	{object}	SourcesResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/articles/{id}/sources [get]
func (h *Handler) ExplainArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sources, err := h.svc.Explain(r.Context(), id)
	if err != nil {
		writeError(w, r, "explain article", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, SourcesResponse{ID: id, Sources: sources})
}
