package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpserver "sitebuilder/internal/mcp"
)

// ServeMCP runs the builder as a standalone MCP server on stdin/stdout.
// Logs go to stderr. It blocks until the client disconnects or the process
// is interrupted, then flushes pending changes.
func ServeMCP(opts Options, version string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	if err := a.Start(ctx); err != nil {
		return err
	}

	srv := mcpserver.New(mcpserver.Deps{
		Pages:   a.Pages,
		Builder: a.Builder,
		Sync:    a.Sync,
		Catalog: a.Catalog,
		Logger:  a.log,
		Version: version,
	})

	a.log.Info("starting standalone stdio server", "config", a.loader.Path())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
