package catalog

import (
	"testing"

	"github.com/starford/ledgr/internal/models"
)

func articles() []models.Article {
	return []models.Article{
		{ID: "1", Title: "Seed round notes", Category: "스타트업", Description: "funding"},
		{ID: "2", Title: "Color systems", Category: "Design"},
		{ID: "3", Title: "Go services", Category: "Backend Development", Description: "chi and slog"},
		{ID: "4", Title: "Roadmaps", Category: "PM"},
		{ID: "5", Title: "Misc", Category: "General"},
	}
}

func ids(items []models.Article) string {
	s := ""
	for _, a := range items {
		s += a.ID
	}
	return s
}

func TestResolve(t *testing.T) {
	tests := []struct {
		param string
		want  string
		ok    bool
	}{
		{"", All, true},
		{"all", All, true},
		{"tech", "Tech", true},
		{"GROWTH", "Growth", true},
		{"Sports", "", false},
	}
	for _, tt := range tests {
		c, ok := Resolve(tt.param)
		if ok != tt.ok || c.Value != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.param, c.Value, ok, tt.want, tt.ok)
		}
	}
}

func TestFilter_Category(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"All", "12345"},
		{"Startups", "1"},
		{"Design", "2"},
		{"Tech", "3"},
		{"Product", "4"},
		{"Growth", ""},
	}
	for _, tt := range tests {
		c, _ := Resolve(tt.category)
		if got := ids(Filter(articles(), "", c)); got != tt.want {
			t.Errorf("Filter(%s) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestFilter_Query(t *testing.T) {
	all, _ := Resolve("")
	tests := []struct {
		query string
		want  string
	}{
		{"GO", "3"},
		{"funding", "1"},
		{"design", "2"},
		{"  ", "12345"},
		{"nothing", ""},
	}
	for _, tt := range tests {
		if got := ids(Filter(articles(), tt.query, all)); got != tt.want {
			t.Errorf("Filter(q=%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestFilter_QueryAndCategory(t *testing.T) {
	tech, _ := Resolve("Tech")
	if got := ids(Filter(articles(), "slog", tech)); got != "3" {
		t.Errorf("got %q", got)
	}
	if got := ids(Filter(articles(), "color", tech)); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cs := Categories()
	cs[0].Value = "changed"
	if Categories()[0].Value != All {
		t.Error("Categories exposed internal slice")
	}
}
