package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/starford/ledgr/internal/articleservice"
	"github.com/starford/ledgr/internal/models"
	"github.com/starford/ledgr/internal/normalizer"
	"github.com/starford/ledgr/internal/storage"
	"github.com/starford/ledgr/internal/testutil"
)

// testEnv builds an export directory, service and router for testing.
// A non-empty authToken enables token mode on admin routes.
func testEnv(t *testing.T, authToken string) (http.Handler, string) {
	t.Helper()

	go1 := testutil.Published("go1", "2024-02-01T09:00:00.000Z", "Go services")
	go1.Properties["카테고리"] = testutil.SelectProp("개발")
	go1.Properties["시분석"] = testutil.TextProp("## Why\nchi is **small**")

	color := testutil.Published("color", "2024-01-01T09:00:00.000Z", "Color systems")
	color.Properties["카테고리"] = testutil.SelectProp("디자인")

	dir := testutil.ExportDir(t, []models.Record{go1, color}, map[string]string{
		"color": "## Palette\nwarm tones",
	})
	src, err := storage.NewExport(dir, "Status", "발행하기", nil)
	if err != nil {
		t.Fatalf("NewExport: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := articleservice.NewService(src, time.Minute, logger)
	return NewRouter(svc, authToken != "", authToken, nil), dir
}

func do(t *testing.T, h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListArticles(t *testing.T) {
	router, _ := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/articles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ArticleListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Articles[0].ID != "go1" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Articles[0].Brand != normalizer.BrandListDefault {
		t.Errorf("brand = %q", resp.Articles[0].Brand)
	}
	if resp.Articles[0].BodyRaw != "" {
		t.Error("list item carries body")
	}
	if cc := w.Header().Get("Cache-Control"); cc == "" {
		t.Error("missing Cache-Control")
	}
}

func TestListArticles_Filters(t *testing.T) {
	router, _ := testEnv(t, "")

	tests := []struct {
		target string
		want   string
	}{
		{"/articles?category=tech", "go1"},
		{"/articles?category=Design", "color"},
		{"/articles?q=COLOR", "color"},
		{"/articles?q=go&category=Tech", "go1"},
	}
	for _, tt := range tests {
		w := do(t, router, http.MethodGet, tt.target, nil)
		var resp ArticleListResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Total != 1 || resp.Articles[0].ID != tt.want {
			t.Errorf("%s = %+v, want %s", tt.target, resp.Articles, tt.want)
		}
	}
}

func TestListArticles_BadCategory(t *testing.T) {
	router, _ := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/articles?category=sports", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetArticle(t *testing.T) {
	router, _ := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/articles/go1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var d ArticleDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.Article.Title != "Go services" || d.Article.Category != "개발" {
		t.Errorf("article = %+v", d.Article)
	}
	if len(d.Blocks) != 2 || d.Blocks[0].Kind != models.BlockHeading || d.Blocks[0].Text != "Why" {
		t.Errorf("blocks = %+v", d.Blocks)
	}
	if w.Header().Get("ETag") != `"`+d.Checksum+`"` {
		t.Errorf("ETag = %q, checksum = %q", w.Header().Get("ETag"), d.Checksum)
	}

	w = do(t, router, http.MethodGet, "/articles/go1", map[string]string{"If-None-Match": w.Header().Get("ETag")})
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", w.Code)
	}
}

func TestGetArticle_ConvertedBody(t *testing.T) {
	router, _ := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/articles/color", nil)
	var d ArticleDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Article.BodyRaw != "## Palette\nwarm tones" {
		t.Errorf("body = %q", d.Article.BodyRaw)
	}
}

func TestGetArticle_NotFound(t *testing.T) {
	router, _ := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/articles/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCategories(t *testing.T) {
	router, _ := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/categories", nil)
	var resp CategoryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Categories) != 6 || resp.Categories[0].Value != "All" {
		t.Errorf("categories = %+v", resp.Categories)
	}
}

func TestRefresh_RequiresToken(t *testing.T) {
	router, dir := testEnv(t, "s3cret")

	if w := do(t, router, http.MethodPost, "/refresh", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/refresh", map[string]string{"Authorization": "Bearer nope"}); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}

	// Read routes stay public.
	if w := do(t, router, http.MethodGet, "/articles", nil); w.Code != http.StatusOK {
		t.Errorf("public list status = %d", w.Code)
	}

	testutil.WritePage(t, dir, testutil.Published("new", "2024-03-01T00:00:00.000Z", "New"))
	w := do(t, router, http.MethodPost, "/refresh", map[string]string{"Authorization": "Bearer s3cret"})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp RefreshResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
}

func TestExplainArticle(t *testing.T) {
	router, _ := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/articles/go1/sources", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SourcesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Sources["title"] != "primary:제목/title" {
		t.Errorf("title source = %q", resp.Sources["title"])
	}
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{"*", true},
		{`"abd"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, "abc"); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
