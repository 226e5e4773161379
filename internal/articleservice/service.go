// Package articleservice serves normalized articles from a content source.
//
// The list view is backed by an in-memory snapshot that is revalidated
// after a fixed interval, the same way a statically generated page is
// regenerated. Detail pages are always fetched fresh.
package articleservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/starford/ledgr/internal/apperr"
	"github.com/starford/ledgr/internal/catalog"
	"github.com/starford/ledgr/internal/checksum"
	"github.com/starford/ledgr/internal/formatter"
	"github.com/starford/ledgr/internal/models"
	"github.com/starford/ledgr/internal/normalizer"
	"github.com/starford/ledgr/internal/storage"
)

// DefaultRevalidate is the list snapshot lifetime.
const DefaultRevalidate = 60 * time.Second

// Detail is the full representation of one article.
type Detail struct {
	Article  models.Article `json:"article"`
	Blocks   []models.Block `json:"blocks"`
	Checksum string         `json:"checksum"`
}

// ChangeFunc is notified of list changes detected by a refresh.
// kind is one of "created", "updated", "deleted".
type ChangeFunc func(kind, id string)

// Service coordinates the content source, normalization and formatting.
type Service struct {
	src        storage.Source
	revalidate time.Duration
	logger     *slog.Logger
	now        func() time.Time

	// reloadMu serializes fetch-and-swap so change notifications follow
	// the order of snapshots. list coalesces concurrent list reloads.
	reloadMu sync.Mutex
	list     singleflight.Group

	mu       sync.Mutex
	items    []models.Article
	sums     map[string]string
	loadedAt time.Time
	loaded   bool
	onChange ChangeFunc
}

// NewService creates an article service. A zero revalidate uses
// DefaultRevalidate; a negative one disables the snapshot.
func NewService(src storage.Source, revalidate time.Duration, logger *slog.Logger) *Service {
	if revalidate == 0 {
		revalidate = DefaultRevalidate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, revalidate: revalidate, logger: logger, now: time.Now}
}

// OnChange registers fn to be called for every article that a refresh finds
// created, updated or deleted. fn runs on the reloading goroutine after the
// new snapshot is visible; it must not call Refresh.
func (s *Service) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Revalidate returns the list snapshot lifetime.
func (s *Service) Revalidate() time.Duration {
	return s.revalidate
}

// Categories returns the feed categories.
func (s *Service) Categories() []catalog.Category {
	return catalog.Categories()
}

// ListArticles returns the published articles matching query and category,
// newest first. A source failure is logged and yields the last good
// snapshot, or an empty list.
func (s *Service) ListArticles(ctx context.Context, query, category string) ([]models.Article, error) {
	c, ok := catalog.Resolve(category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q: %w", category, apperr.ErrInvalidInput)
	}
	return catalog.Filter(s.snapshot(ctx), query, c), nil
}

// IDs returns the IDs of all published articles.
func (s *Service) IDs(ctx context.Context) []string {
	items := s.snapshot(ctx)
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = a.ID
	}
	return out
}

// Ready reports whether the list has been loaded successfully at least once.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sums != nil
}

// Invalidate drops the snapshot so the next list call refetches.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

// Refresh refetches the list unconditionally and returns the number of
// published articles. Unlike list calls it reports source errors.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	return s.reload(ctx)
}

// snapshot returns the list, reloading it first when it has expired.
// Readers of a fresh snapshot never wait for a fetch, and concurrent
// readers of an expired one share a single fetch.
func (s *Service) snapshot(ctx context.Context) []models.Article {
	if !s.fresh() {
		// The shared fetch must not fail because the caller that started
		// it went away.
		_, err, _ := s.list.Do("list", func() (any, error) {
			if s.fresh() {
				return nil, nil
			}
			_, err := s.reload(context.WithoutCancel(ctx))
			return nil, err
		})
		if err != nil {
			s.mu.Lock()
			s.logger.Warn("articles: list fetch failed",
				slog.String("error", err.Error()),
				slog.Int("stale_items", len(s.items)))
			// Keep serving what we have until the next interval.
			s.loaded = true
			s.loadedAt = s.now()
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Article, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) fresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded && s.revalidate > 0 && s.now().Sub(s.loadedAt) < s.revalidate
}

// reload fetches the list outside the snapshot lock, swaps the snapshot in
// and then reports changes against the previous one.
func (s *Service) reload(ctx context.Context) (int, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	recs, err := s.src.QueryPublished(ctx)
	if err != nil {
		return 0, err
	}
	items := normalizer.NormalizeAll(recs)
	sums := make(map[string]string, len(items))
	for _, a := range items {
		sums[a.ID] = articleSum(a)
	}

	s.mu.Lock()
	prev, fn := s.sums, s.onChange
	s.items = items
	s.sums = sums
	s.loaded = true
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.Debug("articles: snapshot loaded", slog.Int("count", len(items)))
	if fn != nil && prev != nil {
		notifyDiff(prev, sums, fn)
	}
	return len(items), nil
}

func notifyDiff(prev, next map[string]string, fn ChangeFunc) {
	for id, sum := range next {
		old, ok := prev[id]
		switch {
		case !ok:
			fn("created", id)
		case old != sum:
			fn("updated", id)
		}
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			fn("deleted", id)
		}
	}
}

// GetArticle fetches page properties and the converted body concurrently,
// normalizes them for the detail view and formats the body into blocks.
// A body conversion failure is logged and treated as an empty body.
func (s *Service) GetArticle(ctx context.Context, id string) (*Detail, error) {
	rec, body, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	a := normalizer.NormalizeDetail(rec, body)
	return &Detail{
		Article:  a,
		Blocks:   formatter.Format(a.BodyRaw),
		Checksum: articleSum(a),
	}, nil
}

// Explain reports which record field produced each article field.
func (s *Service) Explain(ctx context.Context, id string) (map[string]string, error) {
	rec, body, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return normalizer.Explain(rec, normalizer.ViewDetail, body), nil
}

func (s *Service) fetch(ctx context.Context, id string) (*models.Record, string, error) {
	if id == "" {
		return nil, "", fmt.Errorf("article id is empty: %w", apperr.ErrInvalidInput)
	}

	var (
		rec  *models.Record
		body string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.src.Page(gctx, id)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	g.Go(func() error {
		md, err := s.src.PageMarkdown(gctx, id)
		if err != nil {
			s.logger.Warn("articles: body conversion failed",
				slog.String("id", id),
				slog.String("error", err.Error()))
			return nil
		}
		body = md
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return rec, body, nil
}

func articleSum(a models.Article) string {
	data, _ := json.Marshal(a)
	return checksum.Sum(data)
}
