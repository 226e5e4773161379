// Package notion wraps the document-store API client: it queries the
// published articles database, fetches page properties and converts page
// content blocks into Markdown text.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/starford/ledgr/internal/apperr"
	"github.com/starford/ledgr/internal/models"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
	defaultTimeout = 15 * time.Second
	pageSize       = 100
)

// Options configures a Client. It is built once per process from the
// application config and never modified afterwards.
type Options struct {
	APIKey          string
	DatabaseID      string
	Version         string
	BaseURL         string
	Timeout         time.Duration
	StatusProperty  string
	StatusPublished string
}

// Client talks to the document-store API.
type Client struct {
	opts Options
	api  *notionapi.Client
}

// New creates a Client. hc may be nil, in which case a client with
// opts.Timeout is used. A BaseURL other than DefaultBaseURL redirects every
// request to that host and path prefix.
func New(opts Options, hc *http.Client) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if opts.BaseURL != DefaultBaseURL {
		if base, err := url.Parse(opts.BaseURL); err == nil {
			rewritten := *hc
			rewritten.Transport = &baseURLTransport{base: base, next: hc.Transport}
			hc = &rewritten
		}
	}

	api := notionapi.NewClient(
		notionapi.Token(opts.APIKey),
		notionapi.WithHTTPClient(hc),
		notionapi.WithVersion(opts.Version),
	)
	return &Client{opts: opts, api: api}
}

// baseURLTransport sends requests built for the public API host to base.
type baseURLTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *baseURLTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	out := req.Clone(req.Context())
	out.URL.Scheme = t.base.Scheme
	out.URL.Host = t.base.Host
	out.URL.Path = strings.TrimRight(t.base.Path, "/") + strings.TrimPrefix(req.URL.Path, "/v1")
	out.URL.RawPath = ""
	out.Host = t.base.Host
	return next.RoundTrip(out)
}

// QueryPublished returns every published record of the configured
// database, newest first.
func (c *Client) QueryPublished(ctx context.Context) ([]models.Record, error) {
	req := &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{{
			Timestamp: notionapi.TimestampCreated,
			Direction: notionapi.SortOrderDESC,
		}},
		PageSize: pageSize,
	}
	if c.opts.StatusProperty != "" && c.opts.StatusPublished != "" {
		req.Filter = &notionapi.PropertyFilter{
			Property: c.opts.StatusProperty,
			Status:   &notionapi.StatusFilterCondition{Equals: c.opts.StatusPublished},
		}
	}

	var out []models.Record
	for {
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(c.opts.DatabaseID), req)
		if err != nil {
			return nil, fmt.Errorf("notion: query database: %w", mapError(err))
		}
		for i := range resp.Results {
			out = append(out, recordFromPage(&resp.Results[i]))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// Page fetches a single page with its properties.
func (c *Client) Page(ctx context.Context, id string) (*models.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("notion: page id is empty: %w", apperr.ErrInvalidInput)
	}
	p, err := c.api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		return nil, fmt.Errorf("notion: get page %s: %w", id, mapError(err))
	}
	rec := recordFromPage(p)
	return &rec, nil
}

// PageMarkdown fetches the content blocks of a page and converts them into
// Markdown text.
func (c *Client) PageMarkdown(ctx context.Context, id string) (string, error) {
	nodes, err := c.children(ctx, notionapi.BlockID(id), 0)
	if err != nil {
		return "", fmt.Errorf("notion: page content %s: %w", id, mapError(err))
	}
	return ToMarkdown(nodes), nil
}

// maxDepth bounds recursion into nested blocks.
const maxDepth = 3

func (c *Client) children(ctx context.Context, id notionapi.BlockID, depth int) ([]Node, error) {
	var (
		out    []Node
		cursor notionapi.Cursor
	)
	for {
		resp, err := c.api.Block.GetChildren(ctx, id, &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    pageSize,
		})
		if err != nil {
			return nil, err
		}
		for _, b := range resp.Results {
			n := Node{Block: b}
			if b.GetHasChildren() && depth < maxDepth {
				kids, err := c.children(ctx, b.GetID(), depth+1)
				if err != nil {
					return nil, err
				}
				n.Children = kids
			}
			out = append(out, n)
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}
}

// mapError translates API and transport failures into apperr sentinels.
func mapError(err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		switch apiErr.Status {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", apperr.ErrNotFound, msg)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, msg)
		}
		return fmt.Errorf("%w: status %d: %s", apperr.ErrUnavailable, apiErr.Status, msg)
	}
	return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
}
