package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/logging"
	"sitebuilder/internal/service"
)

func TestAutosaver_RunOnceFlushesDirtyPages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.builder.SetMode(service.PersistScheduled)
	a := service.NewAutosaver(e.builder, logging.Discard())

	pageID := e.page(t, "Home")
	_, err := e.builder.AddComponent(ctx, pageID, domain.ComponentHero, "")
	require.NoError(t, err)

	assert.Equal(t, 1, a.RunOnce(ctx))
	assert.Equal(t, 0, a.RunOnce(ctx))

	snap, err := e.backend.LoadSnapshot(pageID)
	require.NoError(t, err)
	assert.Len(t, snap.Components, 1)
}

func TestAutosaver_StartRejectsBadSchedule(t *testing.T) {
	e := newEnv(t)
	a := service.NewAutosaver(e.builder, logging.Discard())
	assert.Error(t, a.Start(context.Background(), "whenever"))
	assert.Empty(t, a.Schedule())
}

func TestAutosaver_Schedule(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.builder.SetMode(service.PersistScheduled)
	a := service.NewAutosaver(e.builder, logging.Discard())
	require.NoError(t, a.Start(ctx, "@every 1s"))
	assert.Equal(t, "@every 1s", a.Schedule())

	pageID := e.page(t, "Blog")
	_, err := e.builder.AddComponent(ctx, pageID, domain.ComponentParagraph, "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		snap, err := e.backend.LoadSnapshot(pageID)
		return err == nil && len(snap.Components) == 1
	}, 5*time.Second, 100*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	a.Stop(stopCtx)
	assert.Empty(t, a.Schedule())
}
