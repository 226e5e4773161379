// Package storage defines where article records come from and provides the
// offline export-directory source.
package storage

import (
	"context"

	"github.com/starford/ledgr/internal/models"
)

// Source delivers raw records and converted page bodies. Both the
// document-store client and the export directory implement it.
type Source interface {
	// QueryPublished returns every published record, newest created_time first.
	QueryPublished(ctx context.Context) ([]models.Record, error)
	// Page returns the record with the given ID.
	Page(ctx context.Context, id string) (*models.Record, error)
	// PageMarkdown returns the converted document body of a page, or "".
	PageMarkdown(ctx context.Context, id string) (string, error)
}
