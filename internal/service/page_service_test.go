package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"About Us":          "about-us",
		"  Pricing & FAQ  ": "pricing-and-faq",
		"Página 2":          "pagina-2",
		"Página Señal":      "pagina-senal",
		"Über uns":          "uber-uns",
		"Café Menü":         "cafe-menu",
		"日本語":               "ri-ben-yu",
		"---":               "page",
		"landing_v2":        "landing-v2",
	}
	for in, want := range tests {
		assert.Equal(t, want, service.Slugify(in), in)
	}
}

func TestPageService_CreateMakesUniqueSlugs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.pages.CreatePage(ctx, "About Us")
	require.NoError(t, err)
	second, err := e.pages.CreatePage(ctx, "About us")
	require.NoError(t, err)

	assert.Equal(t, "about-us", first.Slug)
	assert.Equal(t, "about-us-2", second.Slug)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, e.emitter.Count(service.EventPagesChanged))

	_, err = e.pages.CreatePage(ctx, "   ")
	assert.Error(t, err)
}

func TestPageService_FindPage(t *testing.T) {
	e := newEnv(t)
	p, err := e.pages.CreatePage(context.Background(), "Contact")
	require.NoError(t, err)

	byID, err := e.pages.FindPage(p.ID)
	require.NoError(t, err)
	bySlug, err := e.pages.FindPage("contact")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byID.ID)
	assert.Equal(t, p.ID, bySlug.ID)

	_, err = e.pages.FindPage("nowhere")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPageService_RenameKeepsSlug(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.pages.CreatePage(ctx, "Team")
	require.NoError(t, err)

	require.NoError(t, e.pages.RenamePage(ctx, p.ID, "Our Team"))
	got, err := e.pages.GetPage(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Our Team", got.Name)
	assert.Equal(t, "team", got.Slug)

	assert.ErrorIs(t, e.pages.RenamePage(ctx, "missing", "x"), storage.ErrNotFound)
}

func TestPageService_DeleteDropsTreeAndSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pageID := e.page(t, "Old")
	_, err := e.builder.AddComponent(ctx, pageID, domain.ComponentHero, "")
	require.NoError(t, err)

	require.NoError(t, e.pages.DeletePage(ctx, pageID))
	assert.NotContains(t, e.builder.OpenPages(), pageID)

	_, err = e.pages.GetPage(pageID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	snap, err := e.backend.LoadSnapshot(pageID)
	require.NoError(t, err)
	assert.Empty(t, snap.Components)

	assert.ErrorIs(t, e.pages.DeletePage(ctx, pageID), storage.ErrNotFound)
}

func TestPageService_ListAndState(t *testing.T) {
	e := newEnv(t)
	pages, err := e.pages.ListPages()
	require.NoError(t, err)
	assert.NotNil(t, pages)
	assert.Empty(t, pages)

	pageID := e.page(t, "Home")
	_, err = e.builder.AddComponent(context.Background(), pageID, domain.ComponentIconsSection, "")
	require.NoError(t, err)

	state, err := e.pages.GetPageState(pageID)
	require.NoError(t, err)
	assert.Equal(t, "Home", state.Page.Name)
	assert.Len(t, state.Roots, 1)
	assert.False(t, state.Dirty)
}
