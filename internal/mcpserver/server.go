// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the running journal to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gaocuixia/running-journal/internal/journal"
	"github.com/gaocuixia/running-journal/internal/models"
)

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp   *server.MCPServer
	store *journal.Store
}

// New creates a new MCP server with all journal tools registered.
func New(store *journal.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Running Journal",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List journal articles, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Category filter; omit or \"all\" for every article")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read the full content of one article."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Article id")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("create_article",
		mcp.WithDescription("Create a new journal article. Date defaults to today when omitted."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Article title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Article body text")),
		mcp.WithString("category", mcp.Description("Category label")),
		mcp.WithString("date", mcp.Description("Calendar date, YYYY-MM-DD")),
	), s.createArticle)

	s.mcp.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List recorded race events, most recent first."),
	), s.listEvents)

	s.mcp.AddTool(mcp.NewTool("record_event",
		mcp.WithDescription("Record a race event. Distance is in kilometers."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Race name")),
		mcp.WithString("date", mcp.Description("Calendar date, YYYY-MM-DD; defaults to today")),
		mcp.WithNumber("distance", mcp.Description("Distance in kilometers")),
		mcp.WithString("location", mcp.Description("Race location")),
		mcp.WithString("finishTime", mcp.Required(), mcp.Description("Finish time as free text, e.g. 3:45:12")),
		mcp.WithString("category", mcp.Description("Race type label, e.g. 全马, 半马")),
		mcp.WithString("notes", mcp.Description("Optional notes")),
	), s.recordEvent)

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
	category := req.GetString("category", journal.CategoryAll)
	items := journal.FilterArticlesByCategory(s.store.Articles(), category)
	items = journal.SortArticlesByDate(items, false)
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, a := range s.store.Articles() {
		if a.ID == int64(id) {
			out, _ := json.MarshalIndent(a, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("article not found: %d", int64(id))), nil
}

func (s *Server) createArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a := models.Article{
		Title:    title,
		Content:  content,
		Category: req.GetString("category", "其他"),
		Date:     req.GetString("date", time.Now().Format("2006-01-02")),
	}
	created := s.store.AddArticle(a)
	return mcp.NewToolResultText(fmt.Sprintf("created article %d", created.ID)), nil
}

func (s *Server) listEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := journal.SortEventsByDate(s.store.Events(), false)
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) recordEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	finishTime, err := req.RequireString("finishTime")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	e := models.Event{
		Name:       name,
		FinishTime: finishTime,
		Date:       req.GetString("date", time.Now().Format("2006-01-02")),
		Distance:   req.GetFloat("distance", 0),
		Location:   req.GetString("location", name),
		Category:   req.GetString("category", "其他"),
		Notes:      req.GetString("notes", ""),
	}
	if e.Distance < 0 {
		return mcp.NewToolResultError("distance must be non-negative"), nil
	}
	created := s.store.AddEvent(e)
	return mcp.NewToolResultText(fmt.Sprintf("recorded event %d", created.ID)), nil
}
