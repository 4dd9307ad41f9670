package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/domain"
)

func (s *Server) registerComponentTools() {
	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Add a component at the end of the page (or inside parentId) and select it. Props not given keep their catalog defaults."),
		mcp.WithString("type", mcp.Description("Component type, see list_component_types"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
		mcp.WithString("parentId", mcp.Description("Nest inside this component (optional)")),
		mcp.WithObject("props", mcp.Description("Initial prop overrides (optional)")),
	), s.handleAddComponent)

	// ── update_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_component",
		mcp.WithDescription("Merge props into a component. Keys not given are kept."),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithObject("props", mcp.Description("Props to set"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
	), s.handleUpdateComponent)

	// ── remove_component (destructive) ─────────────────
	s.mcp.AddTool(mcp.NewTool("remove_component",
		mcp.WithDescription("DESTRUCTIVE: Remove a component and everything nested in it"),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
		mcp.WithDestructiveHintAnnotation(true),
	), s.handleRemoveComponent)

	// ── select_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_component",
		mcp.WithDescription("Select a component for editing. An empty componentId clears the selection."),
		mcp.WithString("componentId", mcp.Description("Component ID, or empty to clear")),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
	), s.handleSelectComponent)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component one position up or down among its siblings"),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Required(), mcp.Enum("up", "down")),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
	), s.handleMoveComponent)

	// ── duplicate_component ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_component",
		mcp.WithDescription("Copy a component (with nested components) to the end of its sibling group and select the copy"),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
	), s.handleDuplicateComponent)

	// ── list_components ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List components of a page in display order"),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
		mcp.WithString("scope", mcp.Description("all (default), roots, or children"), mcp.Enum("all", "roots", "children")),
		mcp.WithString("parentId", mcp.Description("Parent component for scope=children")),
		mcp.WithString("type", mcp.Description("Filter by component type (optional)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListComponents)

	// ── get_selected ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_selected",
		mcp.WithDescription("Return the selected component of a page, if any"),
		mcp.WithString("pageId", mcp.Description("Page ID or slug (optional, defaults to active page)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetSelected)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	t := domain.ComponentType(req.GetString("type", ""))
	if t == "" {
		return nil, fmt.Errorf("type is required")
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	props, err := propsArg(args, "props")
	if err != nil {
		return nil, err
	}

	// Check the overrides up front so a rejected call leaves nothing behind.
	if len(props) > 0 {
		merged, err := s.catalog.DefaultProps(t)
		if err != nil {
			return nil, err
		}
		merged.Merge(props)
		if err := s.catalog.Validate(t, merged); err != nil {
			return nil, err
		}
	}

	c, err := s.builder.AddComponent(ctx, pageID, t, req.GetString("parentId", ""))
	if err != nil {
		return nil, fmt.Errorf("add component: %w", err)
	}
	if len(props) > 0 {
		if err := s.builder.UpdateComponent(ctx, pageID, c.ID, props); err != nil {
			return nil, err
		}
		c, _, _ = s.builder.Component(pageID, c.ID)
	}
	return jsonResult(c)
}

func (s *Server) handleUpdateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id := req.GetString("componentId", "")
	if id == "" {
		return nil, fmt.Errorf("componentId is required")
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	patch, err := propsArg(args, "props")
	if err != nil {
		return nil, err
	}
	if err := s.builder.UpdateComponent(ctx, pageID, id, patch); err != nil {
		return nil, err
	}
	c, ok, err := s.builder.Component(pageID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Component %s not found; nothing changed", id)), nil
	}
	return jsonResult(c)
}

func (s *Server) handleRemoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("componentId", "")
	if id == "" {
		return nil, fmt.Errorf("componentId is required")
	}
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.builder.Component(pageID, id); err != nil {
		return nil, err
	} else if !ok {
		return textResult(fmt.Sprintf("Component %s not found; nothing changed", id)), nil
	}
	if err := s.builder.RemoveComponent(ctx, pageID, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Component %s removed", id)), nil
}

func (s *Server) handleSelectComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("componentId", "")
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.builder.SelectComponent(ctx, pageID, id); err != nil {
		return nil, err
	}
	return s.selectedResult(pageID)
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("componentId", "")
	if id == "" {
		return nil, fmt.Errorf("componentId is required")
	}
	dir := domain.Direction(req.GetString("direction", ""))
	if !dir.Valid() {
		return nil, fmt.Errorf("direction must be up or down")
	}
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.builder.MoveComponent(ctx, pageID, id, dir); err != nil {
		return nil, err
	}
	c, ok, err := s.builder.Component(pageID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Component %s not found; nothing changed", id)), nil
	}
	return textResult(fmt.Sprintf("Component %s is now at position %d", id, c.Order)), nil
}

func (s *Server) handleDuplicateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("componentId", "")
	if id == "" {
		return nil, fmt.Errorf("componentId is required")
	}
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	copyID, err := s.builder.DuplicateComponent(ctx, pageID, id)
	if err != nil {
		return nil, err
	}
	if copyID == "" {
		return textResult(fmt.Sprintf("Component %s not found; nothing changed", id)), nil
	}
	c, _, _ := s.builder.Component(pageID, copyID)
	return jsonResult(c)
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}

	var cs []domain.Component
	switch scope := req.GetString("scope", "all"); scope {
	case "all", "":
		cs, err = s.builder.Components(pageID)
	case "roots":
		cs, err = s.builder.Roots(pageID)
	case "children":
		parentID := req.GetString("parentId", "")
		if parentID == "" {
			return nil, fmt.Errorf("parentId is required for scope=children")
		}
		cs, err = s.builder.Children(pageID, parentID)
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
	if err != nil {
		return nil, err
	}

	if filterType := req.GetString("type", ""); filterType != "" {
		filtered := cs[:0]
		for _, c := range cs {
			if string(c.Type) == filterType {
				filtered = append(filtered, c)
			}
		}
		cs = filtered
	}

	selected, _, err := s.builder.Selected(pageID)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(cs, selected.ID))
}

func (s *Server) handleGetSelected(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	return s.selectedResult(pageID)
}

func (s *Server) selectedResult(pageID string) (*mcp.CallToolResult, error) {
	c, ok, err := s.builder.Selected(pageID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult("No component selected"), nil
	}
	return jsonResult(c)
}
