// Package app wires configuration, storage and services into a running
// builder process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"sitebuilder/internal/catalog"
	"sitebuilder/internal/config"
	"sitebuilder/internal/logging"
	"sitebuilder/internal/secret"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

// Options customise New. Zero values pick the defaults.
type Options struct {
	ConfigPath string
	// Config skips loading from ConfigPath when set.
	Config  *config.Config
	Emitter service.EventEmitter
	Logger  *slog.Logger
	Secrets secret.SecretStore
	// LogOutput is where the default logger writes. Defaults to stderr,
	// which keeps stdout free for the MCP transport.
	LogOutput     io.Writer
	WatchInterval time.Duration
}

// App owns the storage backend and every service built on top of it.
type App struct {
	cfg    *config.Config
	loader *config.Loader
	log    *slog.Logger

	backend storage.Backend
	emitter service.EventEmitter

	Catalog  *catalog.Registry
	Builder  *service.BuilderService
	Pages    *service.PageService
	Sync     *service.SyncService
	Autosave *service.Autosaver

	watcher       *pageWatcher
	watchInterval time.Duration
}

// New loads configuration, opens storage and constructs the services.
// Nothing runs in the background until Start.
func New(ctx context.Context, opts Options) (*App, error) {
	loader := config.NewLoader(opts.ConfigPath)
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = loader.Load(); err != nil {
			return nil, fmt.Errorf("load config %s: %w", loader.Path(), err)
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		var err error
		if logger, err = logging.Setup(cfg.Log.Level, cfg.Log.Format, out); err != nil {
			return nil, err
		}
	}

	secrets := opts.Secrets
	if secrets == nil {
		secrets = secretStoreFor(cfg.Storage.SecretBackend)
	}
	dsn, err := secret.ResolveDSN(secrets, cfg.Storage.DSN, cfg.Storage.PasswordKey)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Driver == string(storage.DriverSQLite) {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	backend, err := storage.OpenBackend(ctx, storage.Options{
		Driver:   storage.Driver(cfg.Storage.Driver),
		Path:     cfg.StoragePath(),
		DSN:      dsn,
		Database: cfg.Storage.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	logger.Info("storage opened", "driver", cfg.Storage.Driver)

	emitter := opts.Emitter
	if emitter == nil {
		emitter = service.LogEmitter{Logger: logger}
	}

	a := &App{
		cfg:           cfg,
		loader:        loader,
		log:           logger,
		backend:       backend,
		emitter:       emitter,
		Catalog:       catalog.Default(),
		watchInterval: opts.WatchInterval,
	}
	a.Builder = service.NewBuilderService(backend, backend, emitter, logger)
	a.Builder.SetMode(service.PersistMode(cfg.Autosave.Mode))
	a.Pages = service.NewPageService(backend, backend, a.Builder, emitter, logger)
	a.Sync = service.NewSyncService(a.Pages, a.Builder, cfg.SyncDir(), emitter, logger)
	a.Autosave = service.NewAutosaver(a.Builder, logger)
	return a, nil
}

func secretStoreFor(backend string) secret.SecretStore {
	if backend == "keychain" {
		return secret.NewKeychainStore()
	}
	return secret.NewEnvStore("SITEBUILDER_SECRET_")
}

// Config returns the configuration the app runs with.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger { return a.log }

// Start launches the background workers: scheduled autosave, the external
// change watcher and, when the config came from a file, its hot reload.
func (a *App) Start(ctx context.Context) error {
	if err := a.applyAutosave(ctx, a.cfg); err != nil {
		return err
	}

	a.watcher = newPageWatcher(ctx, a.backend, a.Builder, a.emitter, a.log, a.watchInterval)
	a.watcher.Start()

	if a.loader.Config() == nil {
		return nil
	}
	a.loader.OnChange(func(cfg *config.Config) {
		if err := a.applyAutosave(ctx, cfg); err != nil {
			a.log.Error("apply reloaded config", "err", err)
			return
		}
		a.log.Info("config reloaded", "autosave", cfg.Autosave.Mode)
	})
	if err := a.loader.Watch(); err != nil {
		a.log.Warn("config watch disabled", "err", err)
	}
	return nil
}

// applyAutosave switches persistence mode and (re)schedules the autosaver.
// Leaving scheduled mode flushes whatever was pending.
func (a *App) applyAutosave(ctx context.Context, cfg *config.Config) error {
	mode := service.PersistMode(cfg.Autosave.Mode)
	a.Builder.SetMode(mode)
	if mode != service.PersistScheduled {
		a.Autosave.Stop(ctx)
		return a.Builder.FlushAll(ctx)
	}
	if a.Autosave.Schedule() == cfg.Autosave.Schedule {
		return nil
	}
	return a.Autosave.Start(ctx, cfg.Autosave.Schedule)
}

// Shutdown stops the workers in reverse start order, flushes pending
// changes and closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.loader.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.Sync.Stop()
	a.Autosave.Stop(ctx)
	if err := a.Builder.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.backend.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
