package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/logging"
	"sitebuilder/internal/service"
)

func newSync(t *testing.T, e *env) (*service.SyncService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "pages")
	return service.NewSyncService(e.pages, e.builder, dir, e.emitter, logging.Discard()), dir
}

func TestSyncService_ExportAll(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, dir := newSync(t, e)

	home := e.page(t, "Home")
	e.page(t, "About Us")
	_, err := e.builder.AddComponent(ctx, home, domain.ComponentHero, "")
	require.NoError(t, err)

	paths, err := s.ExportAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "home.json"),
		filepath.Join(dir, "about-us.json"),
	}, paths)

	data, err := os.ReadFile(filepath.Join(dir, "home.json"))
	require.NoError(t, err)
	doc, err := service.DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, home, doc.Page.ID)
	require.Len(t, doc.Snapshot.Components, 1)
	assert.Equal(t, domain.ComponentHero, doc.Snapshot.Components[0].Type)
}

func TestSyncService_ImportFile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, dir := newSync(t, e)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	doc := &domain.PageDocument{
		Page: domain.Page{Name: "Pricing"},
		Snapshot: domain.Snapshot{
			Components: []domain.Component{
				{ID: "s1", Type: domain.ComponentBackgroundSection, Order: 0},
				{ID: "b1", Type: domain.ComponentButton, ParentID: "s1", Order: 0, Props: domain.Props{"text": "Buy"}},
			},
			SelectedID: "b1",
		},
	}
	data, err := service.EncodeDocument(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, "pricing.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	page, err := s.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Pricing", page.Name)
	assert.Equal(t, "pricing", page.Slug)

	children, err := e.builder.Children(page.ID, "s1")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Buy", children[0].Props["text"])

	// a second import of the same file targets the same page by slug
	again, err := s.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, page.ID, again.ID)
	pages, err := e.pages.ListPages()
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestSyncService_ImportFileRejectsGarbage(t *testing.T) {
	e := newEnv(t)
	s, dir := newSync(t, e)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.ImportFile(context.Background(), path)
	assert.Error(t, err)
}

func TestSyncService_WatchImportsChangedFiles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, dir := newSync(t, e)
	pageID := e.page(t, "Home")

	require.NoError(t, s.Watch(ctx))
	defer s.Stop()

	doc := &domain.PageDocument{Snapshot: domain.Snapshot{Components: []domain.Component{
		{ID: "x", Type: domain.ComponentSpacer, Props: domain.Props{"height": 24}},
	}}}
	data, err := service.EncodeDocument(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.json"), data, 0o644))

	assert.Eventually(t, func() bool {
		got, err := e.builder.Components(pageID)
		return err == nil && len(got) == 1 && got[0].ID == "x"
	}, 5*time.Second, 50*time.Millisecond)
}
