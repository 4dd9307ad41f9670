package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/config"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/logging"
	"sitebuilder/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), Options{
		Config:        cfg,
		Logger:        logging.Discard(),
		WatchInterval: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	return a
}

func TestApp_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a := newTestApp(t, cfg)
	require.NoError(t, a.Start(ctx))
	page, err := a.Pages.CreatePage(ctx, "Landing")
	require.NoError(t, err)
	_, err = a.Builder.AddComponent(ctx, page.ID, domain.ComponentHero, "")
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(ctx))

	assert.FileExists(t, filepath.Join(cfg.DataDir, "builder.db"))

	b := newTestApp(t, cfg)
	defer b.Shutdown(ctx)
	found, err := b.Pages.FindPage("landing")
	require.NoError(t, err)
	comps, err := b.Builder.Components(found.ID)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, domain.ComponentHero, comps[0].Type)
}

func TestApp_ScheduledAutosave(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Autosave.Mode = config.AutosaveScheduled
	cfg.Autosave.Schedule = "@every 1s"

	a := newTestApp(t, cfg)
	defer a.Shutdown(ctx)
	require.NoError(t, a.Start(ctx))
	assert.Equal(t, service.PersistScheduled, a.Builder.Mode())
	assert.Equal(t, "@every 1s", a.Autosave.Schedule())

	page, err := a.Pages.CreatePage(ctx, "Draft")
	require.NoError(t, err)
	_, err = a.Builder.AddComponent(ctx, page.ID, domain.ComponentParagraph, "")
	require.NoError(t, err)
	assert.Equal(t, []string{page.ID}, a.Builder.DirtyPages())

	assert.Eventually(t, func() bool {
		return len(a.Builder.DirtyPages()) == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestApp_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "oracle"
	_, err := New(context.Background(), Options{Config: cfg, Logger: logging.Discard()})
	assert.Error(t, err)
}

func TestApp_MissingSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "postgres"
	cfg.Storage.DSN = "postgres://builder:<password>@localhost/builder"
	cfg.Storage.PasswordKey = "app-test-missing"
	_, err := New(context.Background(), Options{Config: cfg, Logger: logging.Discard()})
	assert.Error(t, err)
}

func TestPageWatcher_ReloadsExternalWrites(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a := newTestApp(t, cfg)
	defer a.Shutdown(ctx)
	em := &service.MockEmitter{}
	// A second builder on the same storage stands in for another process.
	other := service.NewBuilderService(a.backend, a.backend, em, logging.Discard())

	page, err := a.Pages.CreatePage(ctx, "Shared")
	require.NoError(t, err)
	comps, err := a.Builder.Components(page.ID)
	require.NoError(t, err)
	require.Empty(t, comps)

	w := newPageWatcher(ctx, a.backend, a.Builder, em, logging.Discard(), time.Hour)
	w.check()

	_, err = other.AddComponent(ctx, page.ID, domain.ComponentButton, "")
	require.NoError(t, err)
	w.check()

	comps, err = a.Builder.Components(page.ID)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, domain.ComponentButton, comps[0].Type)
	assert.Equal(t, 1, em.Count(service.EventPagesChanged))

	w.check()
	assert.Equal(t, 1, em.Count(service.EventPagesChanged), "no change, no event")
}

func TestApp_ConfigReloadSwitchesAutosave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	require.NoError(t, config.Save(cfg, path))

	a, err := New(ctx, Options{ConfigPath: path, Logger: logging.Discard()})
	require.NoError(t, err)
	defer a.Shutdown(ctx)
	require.NoError(t, a.Start(ctx))
	assert.Equal(t, service.PersistImmediate, a.Builder.Mode())

	cfg.Autosave.Mode = config.AutosaveScheduled
	cfg.Autosave.Schedule = "@every 10s"
	require.NoError(t, config.Save(cfg, path))

	assert.Eventually(t, func() bool {
		return a.Builder.Mode() == service.PersistScheduled && a.Autosave.Schedule() == "@every 10s"
	}, 5*time.Second, 50*time.Millisecond)
}
