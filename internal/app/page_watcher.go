package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

const defaultWatchInterval = 2 * time.Second

// pageWatcher polls storage for changes made by another process (an MCP
// server next to a CLI import, say). Open pages that changed underneath us
// and have no unsaved edits are reloaded, and a changed page list is
// announced so listeners can refresh.
type pageWatcher struct {
	ctx      context.Context
	pages    domain.PageStore
	builder  *service.BuilderService
	emitter  service.EventEmitter
	log      *slog.Logger
	interval time.Duration

	mu           sync.Mutex
	lastPageList string // count + max updated_at
	stopCh       chan struct{}
	done         chan struct{}
}

func newPageWatcher(ctx context.Context, pages domain.PageStore, builder *service.BuilderService, emitter service.EventEmitter, logger *slog.Logger, interval time.Duration) *pageWatcher {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return &pageWatcher{ctx: ctx, pages: pages, builder: builder, emitter: emitter, log: logger, interval: interval}
}

// Start begins the polling loop.
func (w *pageWatcher) Start() {
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	w.check()
	go w.pollLoop()
}

// Stop terminates the polling loop and waits for it to exit.
func (w *pageWatcher) Stop() {
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	<-w.done
	w.stopCh = nil
}

func (w *pageWatcher) pollLoop() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *pageWatcher) check() {
	pages, err := w.pages.ListPages()
	if err != nil {
		w.log.Warn("page watcher: list pages", "err", err)
		return
	}

	// ── Page list fingerprint ───────────────────────────
	var maxUpdated time.Time
	byID := make(map[string]time.Time, len(pages))
	for _, p := range pages {
		byID[p.ID] = p.UpdatedAt
		if p.UpdatedAt.After(maxUpdated) {
			maxUpdated = p.UpdatedAt
		}
	}
	fingerprint := fmt.Sprintf("%d:%d", len(pages), maxUpdated.UnixNano())

	w.mu.Lock()
	pagesChanged := w.lastPageList != "" && w.lastPageList != fingerprint
	w.lastPageList = fingerprint
	w.mu.Unlock()

	// ── Open pages written elsewhere ────────────────────
	for _, id := range w.builder.OpenPages() {
		updated, ok := byID[id]
		if !ok {
			continue
		}
		saved, open := w.builder.LastSaved(id)
		if !open || !updated.After(saved) {
			continue
		}
		if _, err := w.builder.Reload(w.ctx, id); err != nil {
			w.log.Warn("page watcher: reload", "page", id, "err", err)
		}
	}

	if pagesChanged {
		w.emitter.Emit(w.ctx, service.EventPagesChanged, nil)
	}
}
