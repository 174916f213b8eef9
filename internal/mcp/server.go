package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/brandkit/knowledge-server/internal/markdown"
	"github.com/brandkit/knowledge-server/internal/search"
	"github.com/brandkit/knowledge-server/internal/storage"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server       *mcp.Server
	storage      *storage.Store
	orchestrator *search.Orchestrator
	chunker      *markdown.Chunker
}

// Config holds server dependencies.
type Config struct {
	Storage      *storage.Store
	Orchestrator *search.Orchestrator
	Chunker      *markdown.Chunker
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "brand-knowledge-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search brand knowledge across conversation history, brand assets, and documents. Combines vector similarity and keyword matching, with optional cross-encoder reranking and diversity selection.",
	}, makeSearchHandler(cfg.Orchestrator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_similar",
		Description: "Find content similar to a stored chunk by its ID. Useful for discovering related brand guidance without writing a query.",
	}, makeSimilarHandler(cfg.Orchestrator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_facets",
		Description: "Get metadata facet counts (categories, variants) per source type, for narrowing subsequent searches.",
	}, makeFacetsHandler(cfg.Orchestrator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_document",
		Description: "Retrieve a specific brand document by path. Returns full markdown content with metadata.",
	}, makeFetchHandler(cfg.Storage))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "document_outline",
		Description: "Get the heading outline of a brand document by path, as a nested table of contents.",
	}, makeOutlineHandler(cfg.Storage, cfg.Chunker))

	return &Server{
		server:       server,
		storage:      cfg.Storage,
		orchestrator: cfg.Orchestrator,
		chunker:      cfg.Chunker,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
