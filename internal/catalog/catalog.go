// Package catalog holds the fixed set of feed categories and the list
// filtering applied to normalized articles.
package catalog

import (
	"strings"

	"github.com/starford/ledgr/internal/models"
)

// Category is a feed tab. Keywords are matched against an article's
// category label.
type Category struct {
	Value    string   `json:"value"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords,omitempty"`
}

// All is the category that disables category filtering.
const All = "All"

var categories = []Category{
	{Value: All, Label: "All"},
	{Value: "Startups", Label: "Startups", Keywords: []string{"스타트업", "startup", "Startups"}},
	{Value: "Design", Label: "Design", Keywords: []string{"디자인", "design", "Design"}},
	{Value: "Tech", Label: "Tech", Keywords: []string{"개발", "dev", "Dev", "Development", "Tech"}},
	{Value: "Product", Label: "Product", Keywords: []string{"기획", "pm", "PM", "Planning", "Product"}},
	{Value: "Growth", Label: "Growth", Keywords: []string{"마케팅", "marketing", "Marketing", "Growth"}},
}

// Categories returns a copy of the category list in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Resolve finds a category by value, ignoring case. An empty param
// resolves to All.
func Resolve(param string) (Category, bool) {
	if param == "" {
		return categories[0], true
	}
	for _, c := range categories {
		if strings.EqualFold(c.Value, param) {
			return c, true
		}
	}
	return Category{}, false
}

// Matches reports whether an article category label belongs to c.
func (c Category) Matches(label string) bool {
	if c.Value == All {
		return true
	}
	if label == c.Value {
		return true
	}
	lower := strings.ToLower(label)
	for _, kw := range c.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Filter returns the articles matching both the search query and the
// category, preserving order. The query is matched case-insensitively
// against title, description and category; an empty query matches all.
func Filter(items []models.Article, query string, c Category) []models.Article {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Article, 0, len(items))
	for _, a := range items {
		if q != "" && !containsAny(q, a.Title, a.Description, a.Category) {
			continue
		}
		if !c.Matches(a.Category) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
