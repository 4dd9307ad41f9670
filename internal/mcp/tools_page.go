package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages of the site"),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new empty page and make it the active page"),
		mcp.WithString("name", mcp.Description("Name of the new page"), mcp.Required()),
	), s.handleCreatePage)

	// ── rename_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_page",
		mcp.WithDescription("Rename a page. Its slug does not change."),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
	), s.handleRenamePage)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("DESTRUCTIVE: Delete a page and all of its components"),
		mcp.WithString("pageId", mcp.Description("Page ID or slug"), mcp.Required()),
		mcp.WithDestructiveHintAnnotation(true),
	), s.handleDeletePage)

	// ── set_active_page ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Set the active page for subsequent tool calls. Tools that accept pageId will default to this."),
		mcp.WithString("pageId", mcp.Description("Page ID or slug"), mcp.Required()),
	), s.handleSetActivePage)

	// ── save_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_page",
		mcp.WithDescription("Write the page's current components to storage now"),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
	), s.handleSavePage)

	// ── export_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_page",
		mcp.WithDescription("Export a page with its component tree as a JSON document"),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
		mcp.WithBoolean("writeFile", mcp.Description("Also write the document to the sync directory (default false)")),
	), s.handleExportPage)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return jsonResult(pages)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	page, err := s.pages.CreatePage(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	// Auto-set as active page
	s.setActivePage(page.ID)
	return jsonResult(page)
}

func (s *Server) handleRenamePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.pages.RenamePage(ctx, pageID, name); err != nil {
		return nil, fmt.Errorf("rename page: %w", err)
	}
	return textResult(fmt.Sprintf("Page %s renamed to %q", pageID, name)), nil
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetString("pageId", "") == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.pages.DeletePage(ctx, pageID); err != nil {
		return nil, fmt.Errorf("delete page: %w", err)
	}
	s.clearActiveIf(pageID)
	return textResult(fmt.Sprintf("Page %s deleted", pageID)), nil
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := req.GetString("pageId", "")
	if ref == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	page, err := s.pages.FindPage(ref)
	if err != nil {
		return nil, err
	}
	s.setActivePage(page.ID)
	return textResult(fmt.Sprintf("Active page set to %s (%s)", page.ID, page.Name)), nil
}

func (s *Server) handleSavePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.builder.Save(ctx, pageID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Page %s saved", pageID)), nil
}

func (s *Server) handleExportPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if req.GetBool("writeFile", false) {
		if s.sync == nil {
			return nil, fmt.Errorf("no sync directory configured")
		}
		path, err := s.sync.ExportPage(pageID)
		if err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Page %s written to %s", pageID, path)), nil
	}
	doc, err := s.builder.Export(pageID)
	if err != nil {
		return nil, err
	}
	return jsonResult(doc)
}
