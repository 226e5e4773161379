// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ledgr articles to LLM tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ledgr/internal/apperr"
	"github.com/starford/ledgr/internal/articleservice"
	"github.com/starford/ledgr/internal/formatter"
)

// BodyFormatURI is the resource URI of the body format contract.
const BodyFormatURI = "ledgr://body-format"

// Server wraps the MCP server with Ledgr tools.
type Server struct {
	mcp *server.MCPServer
	svc *articleservice.Service
}

// New creates a new MCP server with all Ledgr tools registered.
func New(svc *articleservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ledgr",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List published articles, newest first, optionally filtered by a search query and a category."),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against title, description and category")),
		mcp.WithString("category", mcp.Description("One of All, Startups, Design, Tech, Product, Growth")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read one article: a header with title, category, brand and date, followed by the body text. "+
			"The body follows the format described by get_body_format."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page ID as returned by list_articles")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the feed categories and the keywords each one matches."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("explain_article",
		mcp.WithDescription("Show which source property produced each article field. Useful when a field shows a default value."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page ID")),
	), s.explainArticle)

	s.mcp.AddTool(mcp.NewTool("get_body_format",
		mcp.WithDescription("Returns the body text conventions: headings, emphasis, spacing and wrappers."),
	), s.getBodyFormat)

	s.mcp.AddResource(
		mcp.NewResource(BodyFormatURI, "Body Format",
			mcp.WithResourceDescription("How article body text is split into headings, paragraphs and spacing."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBodyFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	category := req.GetString("category", "")

	items, err := s.svc.ListArticles(ctx, query, category)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no articles found"), nil
	}

	var sb strings.Builder
	for _, a := range items {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", a.ID, a.Date, a.Category, a.Title)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetArticle(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(toolError(id, err)), nil
	}

	a := d.Article
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", a.Title)
	fmt.Fprintf(&sb, "category: %s\nbrand: %s\ndate: %s\n", a.Category, a.Brand, a.Date)
	if a.ImageURL != nil {
		fmt.Fprintf(&sb, "image: %s\n", *a.ImageURL)
	}
	sb.WriteString("\n")
	sb.WriteString(formatter.PlainText(d.Blocks))
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Categories(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) explainArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sources, err := s.svc.Explain(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(toolError(id, err)), nil
	}
	out, _ := json.MarshalIndent(sources, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getBodyFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BodyFormatContract), nil
}

func (s *Server) readBodyFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      BodyFormatURI,
			MIMEType: "text/markdown",
			Text:     BodyFormatContract,
		},
	}, nil
}

func toolError(id string, err error) string {
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Sprintf("not found: %s", id)
	}
	return err.Error()
}
