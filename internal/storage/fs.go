package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/ledgr/internal/apperr"
	"github.com/starford/ledgr/internal/models"
)

// PagesDir is the export subdirectory holding page files.
const PagesDir = "pages"

const (
	pageExt = ".json"
	bodyExt = ".md"
)

// Export implements Source over a directory of exported pages:
// pages/<id>.json holds the page object, pages/<id>.md the optional
// converted body.
type Export struct {
	root            string // absolute path to export directory
	statusProperty  string
	statusPublished string
	logger          *slog.Logger
}

// NewExport creates an export source rooted at the given directory.
// The directory must already exist. When statusProperty is empty every
// non-archived page is listed. logger may be nil, in which case the
// default logger is used.
func NewExport(root, statusProperty, statusPublished string, logger *slog.Logger) (*Export, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Export{
		root:            abs,
		statusProperty:  statusProperty,
		statusPublished: statusPublished,
		logger:          logger,
	}, nil
}

// Root returns the absolute export directory.
func (e *Export) Root() string { return e.root }

// safePath resolves a relative path against the export root and rejects
// any result that escapes it (directory traversal).
func (e *Export) safePath(rel string) (string, error) {
	if rel == "" {
		return e.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidInput)
	}
	abs, err := filepath.Abs(filepath.Join(e.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, e.root+string(os.PathSeparator)) && abs != e.root {
		return "", fmt.Errorf("storage: path escapes export root: %s: %w", rel, apperr.ErrInvalidInput)
	}
	return abs, nil
}

func (e *Export) pagePath(id, ext string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("storage: invalid page id %q: %w", id, apperr.ErrInvalidInput)
	}
	return e.safePath(filepath.Join(PagesDir, id+ext))
}

// QueryPublished reads every page file and returns the published ones,
// newest created_time first. A page file that cannot be decoded is logged
// and left out; it does not fail the rest of the list.
func (e *Export) QueryPublished(ctx context.Context) ([]models.Record, error) {
	base, err := e.safePath(PagesDir)
	if err != nil {
		return nil, err
	}
	var out []models.Record
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != base {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), pageExt) {
			return nil
		}
		rec, err := readRecord(p)
		if err != nil {
			e.logger.Warn("storage: skipping unreadable page",
				slog.String("path", p), slog.String("error", err.Error()))
			return nil
		}
		if e.published(rec) {
			out = append(out, *rec)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	// RFC 3339 timestamps of one export share a format, so they sort as text.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedTime != out[j].CreatedTime {
			return out[i].CreatedTime > out[j].CreatedTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (e *Export) published(rec *models.Record) bool {
	if rec.Archived {
		return false
	}
	if e.statusProperty == "" {
		return true
	}
	p, ok := rec.Prop(e.statusProperty)
	if !ok {
		return false
	}
	switch {
	case p.Status != nil:
		return p.Status.Name == e.statusPublished
	case p.Select != nil:
		return p.Select.Name == e.statusPublished
	}
	return false
}

// Page reads pages/<id>.json.
func (e *Export) Page(ctx context.Context, id string) (*models.Record, error) {
	p, err := e.pagePath(id, pageExt)
	if err != nil {
		return nil, err
	}
	rec, err := readRecord(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: page %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// PageMarkdown reads pages/<id>.md. A missing body file is not an error.
func (e *Export) PageMarkdown(ctx context.Context, id string) (string, error) {
	p, err := e.pagePath(id, bodyExt)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: read body %s: %w", id, err)
	}
	return string(data), nil
}

func readRecord(path string) (*models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec models.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", filepath.Base(path), err)
	}
	if rec.ID == "" {
		rec.ID = strings.TrimSuffix(filepath.Base(path), pageExt)
	}
	return &rec, nil
}

// PageID returns the page ID encoded in an export file name and whether the
// file is a page or body file at all.
func PageID(name string) (string, bool) {
	base := filepath.Base(name)
	for _, ext := range []string{pageExt, bodyExt} {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) && !strings.HasPrefix(base, ".") {
			return strings.TrimSuffix(base, ext), true
		}
	}
	return "", false
}
