package api

import (
	"github.com/starford/ledgr/internal/articleservice"
	"github.com/starford/ledgr/internal/catalog"
	"github.com/starford/ledgr/internal/models"
)

// Article is a normalized article (aliased from the domain layer).
type Article = models.Article

// ArticleDetail is the detail response type (aliased from the domain layer).
type ArticleDetail = articleservice.Detail

// Category is a feed category (aliased from the domain layer).
type Category = catalog.Category

// ArticleListResponse wraps filtered article listings.
type ArticleListResponse struct {
	Articles []Article `json:"articles" validate:"required"`
	Total    int       `json:"total" example:"42" validate:"required"`
}

// CategoryListResponse wraps the category list.
type CategoryListResponse struct {
	Categories []Category `json:"categories" validate:"required"`
}

// RefreshResponse is returned after a forced snapshot refresh.
type RefreshResponse struct {
	Count int `json:"count" example:"12" validate:"required"`
}

// SourcesResponse reports which record field produced each article field.
type SourcesResponse struct {
	ID      string            `json:"id" validate:"required"`
	Sources map[string]string `json:"sources" validate:"required"`
}
