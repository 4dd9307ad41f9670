package mcpserver

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sitebuilder/internal/catalog"
	"sitebuilder/internal/service"
)

// Server is the MCP server for the site builder.
// It exposes tools, resources, and prompts so AI agents can compose pages.
type Server struct {
	mcp *server.MCPServer
	log *slog.Logger

	// Services (injected from app layer)
	pages   *service.PageService
	builder *service.BuilderService
	sync    *service.SyncService
	catalog *catalog.Registry

	// Active page context (set by set_active_page / create_page)
	mu           sync.RWMutex
	activePageID string
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Pages   *service.PageService
	Builder *service.BuilderService
	Sync    *service.SyncService // optional; enables export_page to disk
	Catalog *catalog.Registry    // defaults to catalog.Default()
	Logger  *slog.Logger
	Version string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	s := &Server{
		log:     deps.Logger,
		pages:   deps.Pages,
		builder: deps.Builder,
		sync:    deps.Sync,
		catalog: deps.Catalog,
	}

	s.mcp = server.NewMCPServer(
		"sitebuilder-mcp",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerCatalogTools()
	s.registerPageTools()
	s.registerComponentTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("mcp: starting stdio server")
	return server.ServeStdio(s.mcp,
		server.WithErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError)),
	)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := marshalIndent(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// ActivePage returns the page tools fall back to when no pageId is given.
func (s *Server) ActivePage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activePageID
}

func (s *Server) setActivePage(id string) {
	s.mu.Lock()
	s.activePageID = id
	s.mu.Unlock()
}

// resolvePageID returns the page named by the pageId argument (id or slug)
// or falls back to the active page.
func (s *Server) resolvePageID(args map[string]any) (string, error) {
	if ref, ok := args["pageId"].(string); ok && ref != "" {
		p, err := s.pages.FindPage(ref)
		if err != nil {
			return "", err
		}
		return p.ID, nil
	}
	if id := s.ActivePage(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no pageId provided and no active page set (use set_active_page first)")
}

// clearActiveIf forgets the active page when it is pageID.
func (s *Server) clearActiveIf(pageID string) {
	s.mu.Lock()
	if s.activePageID == pageID {
		s.activePageID = ""
	}
	s.mu.Unlock()
}
