package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/logging"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	b, err := storage.OpenBackend(context.Background(), storage.Options{
		Driver: storage.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "builder.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	log := logging.Discard()
	em := service.LogEmitter{Logger: log}
	bs := service.NewBuilderService(b, b, em, log)
	ps := service.NewPageService(b, b, bs, em, log)
	ss := service.NewSyncService(ps, bs, filepath.Join(t.TempDir(), "pages"), em, log)
	return New(Deps{Pages: ps, Builder: bs, Sync: ss, Logger: log})
}

func call(t *testing.T, h toolHandler, args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func callErr(t *testing.T, h toolHandler, args map[string]any) error {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	_, err := h(context.Background(), req)
	return err
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(text), &v), text)
	return v
}

func TestCatalogTools(t *testing.T) {
	s := newTestServer(t)

	types := decode[[]typeSummary](t, call(t, s.handleListComponentTypes, map[string]any{}))
	require.Len(t, types, 11)
	assert.Equal(t, domain.ComponentHero, types[0].Type)

	props := decode[map[string]any](t, call(t, s.handleGetDefaultProps, map[string]any{"type": "heading"}))
	assert.Equal(t, "Heading", props["text"])

	assert.Error(t, callErr(t, s.handleGetDefaultProps, map[string]any{"type": "carousel"}))
}

func TestPageTools_ActivePage(t *testing.T) {
	s := newTestServer(t)

	assert.Error(t, callErr(t, s.handleListComponents, map[string]any{}), "no active page yet")

	page := decode[domain.Page](t, call(t, s.handleCreatePage, map[string]any{"name": "Launch Day"}))
	assert.Equal(t, "launch-day", page.Slug)
	assert.Equal(t, page.ID, s.ActivePage())

	other := decode[domain.Page](t, call(t, s.handleCreatePage, map[string]any{"name": "Other"}))
	assert.Equal(t, other.ID, s.ActivePage())

	call(t, s.handleSetActivePage, map[string]any{"pageId": "launch-day"})
	assert.Equal(t, page.ID, s.ActivePage())

	call(t, s.handleRenamePage, map[string]any{"name": "Launch"})
	pages := decode[[]domain.Page](t, call(t, s.handleListPages, map[string]any{}))
	require.Len(t, pages, 2)
	assert.Equal(t, "Launch", pages[0].Name)

	call(t, s.handleDeletePage, map[string]any{"pageId": page.ID})
	assert.Empty(t, s.ActivePage())
	assert.Error(t, callErr(t, s.handleDeletePage, map[string]any{}))
}

func TestComponentTools_BuildPage(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleCreatePage, map[string]any{"name": "Home"})

	hero := decode[domain.Component](t, call(t, s.handleAddComponent, map[string]any{
		"type":  "hero",
		"props": map[string]any{"title": "Ship faster"},
	}))
	assert.Equal(t, "Ship faster", hero.Props["title"])

	section := decode[domain.Component](t, call(t, s.handleAddComponent, map[string]any{"type": "background-section"}))
	child := decode[domain.Component](t, call(t, s.handleAddComponent, map[string]any{
		"type":     "paragraph",
		"parentId": section.ID,
		"props":    `{"text":"Nested"}`,
	}))
	assert.Equal(t, section.ID, child.ParentID)

	roots := decode[[]componentSummary](t, call(t, s.handleListComponents, map[string]any{"scope": "roots"}))
	require.Len(t, roots, 2)
	assert.Equal(t, hero.ID, roots[0].ID)

	all := decode[[]componentSummary](t, call(t, s.handleListComponents, map[string]any{}))
	require.Len(t, all, 3)
	assert.Equal(t, []string{hero.ID, section.ID, child.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[2].Selected)

	call(t, s.handleMoveComponent, map[string]any{"componentId": section.ID, "direction": "up"})
	roots = decode[[]componentSummary](t, call(t, s.handleListComponents, map[string]any{"scope": "roots"}))
	assert.Equal(t, section.ID, roots[0].ID)

	copied := decode[domain.Component](t, call(t, s.handleDuplicateComponent, map[string]any{"componentId": section.ID}))
	assert.NotEqual(t, section.ID, copied.ID)
	children := decode[[]componentSummary](t, call(t, s.handleListComponents, map[string]any{"scope": "children", "parentId": copied.ID}))
	require.Len(t, children, 1)
	assert.Equal(t, "Nested", children[0].Props["text"])

	selected := decode[domain.Component](t, call(t, s.handleGetSelected, map[string]any{}))
	assert.Equal(t, copied.ID, selected.ID)

	call(t, s.handleRemoveComponent, map[string]any{"componentId": copied.ID})
	all = decode[[]componentSummary](t, call(t, s.handleListComponents, map[string]any{}))
	assert.Len(t, all, 3)
	assert.Equal(t, "No component selected", call(t, s.handleGetSelected, map[string]any{}))
}

func TestComponentTools_Validation(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleCreatePage, map[string]any{"name": "Home"})

	err := callErr(t, s.handleAddComponent, map[string]any{"type": "heading", "props": map[string]any{"level": 12}})
	assert.Error(t, err)
	all := decode[[]componentSummary](t, call(t, s.handleListComponents, map[string]any{}))
	assert.Empty(t, all, "rejected add leaves nothing behind")

	h := decode[domain.Component](t, call(t, s.handleAddComponent, map[string]any{"type": "heading"}))
	err = callErr(t, s.handleUpdateComponent, map[string]any{"componentId": h.ID, "props": map[string]any{"level": "two"}})
	assert.ErrorIs(t, err, service.ErrInvalidProps)

	updated := decode[domain.Component](t, call(t, s.handleUpdateComponent, map[string]any{
		"componentId": h.ID,
		"props":       map[string]any{"text": "Pricing"},
	}))
	assert.Equal(t, "Pricing", updated.Props["text"])
	assert.EqualValues(t, 2, updated.Props["level"])

	assert.Error(t, callErr(t, s.handleMoveComponent, map[string]any{"componentId": h.ID, "direction": "left"}))
	assert.Error(t, callErr(t, s.handleAddComponent, map[string]any{"type": "carousel"}))
	assert.Contains(t, call(t, s.handleRemoveComponent, map[string]any{"componentId": "ghost"}), "not found")
}

func TestSaveAndExport(t *testing.T) {
	s := newTestServer(t)
	page := decode[domain.Page](t, call(t, s.handleCreatePage, map[string]any{"name": "Docs"}))
	call(t, s.handleAddComponent, map[string]any{"type": "divider"})

	assert.Contains(t, call(t, s.handleSavePage, map[string]any{}), "saved")

	doc := decode[domain.PageDocument](t, call(t, s.handleExportPage, map[string]any{"pageId": "docs"}))
	assert.Equal(t, page.ID, doc.Page.ID)
	require.Len(t, doc.Snapshot.Components, 1)

	out := call(t, s.handleExportPage, map[string]any{"writeFile": true})
	assert.Contains(t, out, "docs.json")
}

func TestResources(t *testing.T) {
	s := newTestServer(t)
	page := decode[domain.Page](t, call(t, s.handleCreatePage, map[string]any{"name": "Home"}))
	call(t, s.handleAddComponent, map[string]any{"type": "spacer"})

	contents, err := s.handleCatalogResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, `"icons-section"`)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "builder://page/" + page.ID + "/components"
	contents, err = s.handlePageComponentsResource(context.Background(), req)
	require.NoError(t, err)
	list := decode[[]componentSummary](t, contents[0].(mcp.TextResourceContents).Text)
	require.Len(t, list, 1)
	assert.Equal(t, "spacer", list[0].Type)

	assert.Equal(t, "home", extractPageIDFromURI("builder://page/home/components"))
	assert.Empty(t, extractPageIDFromURI("builder://page/a/b/components"))
	assert.Empty(t, extractPageIDFromURI("pages://page/home/components"))
}

func TestLandingPagePrompt(t *testing.T) {
	s := newTestServer(t)
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"product": "Acme Rockets"}
	res, err := s.handleLandingPagePrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(mcp.TextContent).Text
	assert.Contains(t, text, "Acme Rockets")
	assert.Contains(t, text, "background-section")

	_, err = s.handleLandingPagePrompt(context.Background(), mcp.GetPromptRequest{})
	assert.Error(t, err)
}
