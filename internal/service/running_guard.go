package service

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ExportedFlushGuard is an exported alias so _test packages can test the guard.
type ExportedFlushGuard = flushGuard

// flushGuard tracks which pages the autosaver is writing. A page flushes at
// most once at a time; Stop waits on WaitAll for the rest to land.
type flushGuard struct {
	mu       sync.Mutex
	flushing map[string]time.Time
	// idle is closed when the last flush ends. nil while nothing flushes.
	idle chan struct{}
}

// Begin claims pageID for a flush. It reports false when a flush of the
// page is already under way.
func (g *flushGuard) Begin(pageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.flushing[pageID]; busy {
		return false
	}
	if g.flushing == nil {
		g.flushing = make(map[string]time.Time)
	}
	if len(g.flushing) == 0 {
		g.idle = make(chan struct{})
	}
	g.flushing[pageID] = time.Now()
	return true
}

// Done releases pageID and returns how long its flush took. Releasing a page
// that was never claimed is a no-op.
func (g *flushGuard) Done(pageID string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	started, ok := g.flushing[pageID]
	if !ok {
		return 0
	}
	delete(g.flushing, pageID)
	if len(g.flushing) == 0 {
		close(g.idle)
		g.idle = nil
	}
	return time.Since(started)
}

// Flushing lists the pages being flushed, sorted.
func (g *flushGuard) Flushing() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.flushing))
	for id := range g.flushing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WaitAll blocks until no page is flushing or ctx ends. It reports whether
// every flush finished.
func (g *flushGuard) WaitAll(ctx context.Context) bool {
	g.mu.Lock()
	idle := g.idle
	g.mu.Unlock()
	if idle == nil {
		return true
	}
	select {
	case <-idle:
		return true
	case <-ctx.Done():
		return false
	}
}
