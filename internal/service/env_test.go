package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sitebuilder/internal/logging"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

type env struct {
	backend storage.Backend
	emitter *service.MockEmitter
	builder *service.BuilderService
	pages   *service.PageService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	b, err := storage.OpenBackend(context.Background(), storage.Options{
		Driver: storage.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "builder.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return newEnvOn(t, b)
}

// newEnvOn builds fresh services over an existing backend, as a restarted
// process would.
func newEnvOn(t *testing.T, b storage.Backend) *env {
	t.Helper()
	em := &service.MockEmitter{}
	log := logging.Discard()
	bs := service.NewBuilderService(b, b, em, log)
	return &env{
		backend: b,
		emitter: em,
		builder: bs,
		pages:   service.NewPageService(b, b, bs, em, log),
	}
}

func (e *env) page(t *testing.T, name string) string {
	t.Helper()
	p, err := e.pages.CreatePage(context.Background(), name)
	require.NoError(t, err)
	return p.ID
}
