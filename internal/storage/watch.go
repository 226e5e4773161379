package storage

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ledgr/internal/checksum"
)

// EventCallback is called after a watched export file changes.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the export directory and reports page
// changes until ctx is cancelled. Writes that leave a file's content
// unchanged are suppressed. A body file (.md) change is always reported as
// "updated" for its page.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	pages := filepath.Join(root, PagesDir)
	if err := os.MkdirAll(pages, 0o755); err != nil {
		return err
	}
	if err := w.Add(pages); err != nil {
		return err
	}

	seen := scanChecksums(pages)
	logger.Info("watcher: started", slog.String("root", root), slog.Int("files", len(seen)))

	emit := func(kind, id string) {
		logger.Debug("watcher: change", slog.String("id", id), slog.String("op", kind))
		if cb != nil {
			cb(kind, id)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			id, ok := PageID(ev.Name)
			if !ok {
				continue
			}
			isBody := strings.HasSuffix(ev.Name, bodyExt)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(ev.Name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", ev.Name), slog.String("error", readErr.Error()))
					continue
				}
				sum := checksum.Sum(data)
				prev, known := seen[ev.Name]
				if known && prev == sum {
					continue
				}
				seen[ev.Name] = sum
				kind := "updated"
				if !known && !isBody {
					kind = "created"
				}
				emit(kind, id)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new name arrives as
				// a separate Create.
				if _, known := seen[ev.Name]; !known {
					continue
				}
				delete(seen, ev.Name)
				if isBody {
					emit("updated", id)
				} else {
					emit("deleted", id)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// scanChecksums returns the checksum of every page and body file in dir.
func scanChecksums(dir string) map[string]string {
	out := make(map[string]string)
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := PageID(p); !ok {
			return nil
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return nil
		}
		out[p] = checksum.Sum(data)
		return nil
	})
	return out
}
