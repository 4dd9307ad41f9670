package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	catalogURI       = "builder://catalog"
	pageURIPrefix    = "builder://page/"
	componentsSuffix = "/components"
)

func (s *Server) registerResources() {
	// ── builder://catalog ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		catalogURI,
		"Component Catalog",
		mcp.WithResourceDescription("Every placeable component type with its fields and defaults"),
		mcp.WithMIMEType("application/json"),
	), s.handleCatalogResource)

	// ── builder://page/{pageId}/components ─────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{pageId}"+componentsSuffix,
			"Components on a Page",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handlePageComponentsResource,
	)
}

func (s *Server) handleCatalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := marshalIndent(s.catalog.Entries())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      catalogURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageComponentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	ref := extractPageIDFromURI(uri)
	if ref == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	page, err := s.pages.FindPage(ref)
	if err != nil {
		return nil, err
	}
	snap, err := s.builder.Export(page.ID)
	if err != nil {
		return nil, err
	}

	data, err := marshalIndent(summarize(snap.Snapshot.Components, snap.Snapshot.SelectedID))
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractPageIDFromURI extracts the page reference from
// "builder://page/{id}/components".
func extractPageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, componentsSuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
