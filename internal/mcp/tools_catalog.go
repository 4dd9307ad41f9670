package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/catalog"
	"sitebuilder/internal/domain"
)

func (s *Server) registerCatalogTools() {
	// ── list_component_types ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_component_types",
		mcp.WithDescription("List the component types that can be placed on a page, with their editable fields"),
		mcp.WithString("category", mcp.Description("Only types in this palette category (optional)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListComponentTypes)

	// ── get_default_props ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_default_props",
		mcp.WithDescription("Return the props a new component of the given type starts with"),
		mcp.WithString("type", mcp.Description("Component type, e.g. hero or heading"), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetDefaultProps)
}

type typeSummary struct {
	Type        domain.ComponentType `json:"type"`
	Label       string               `json:"label"`
	Category    string               `json:"category"`
	Description string               `json:"description,omitempty"`
	Fields      []catalog.Field      `json:"fields"`
}

func (s *Server) handleListComponentTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	out := []typeSummary{}
	for _, e := range s.catalog.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, typeSummary{
			Type:        e.Type,
			Label:       e.Label,
			Category:    e.Category,
			Description: e.Description,
			Fields:      e.Fields,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleGetDefaultProps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := req.GetString("type", "")
	if t == "" {
		return nil, fmt.Errorf("type is required")
	}
	props, err := s.catalog.DefaultProps(domain.ComponentType(t))
	if err != nil {
		return nil, err
	}
	return jsonResult(props)
}
