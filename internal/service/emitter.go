package service

import (
	"context"
	"log/slog"
	"sync"

	"sitebuilder/internal/domain"
)

// Event names emitted by the services.
const (
	EventBuilderChanged = "builder:changed"
	EventPageSaved      = "page:saved"
	EventPagesChanged   = "pages:changed"
	EventPageImported   = "page:imported"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from whatever front end listens
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for pushing change events to a front end.
// Services receive this interface instead of a transport, which makes them
// independently testable with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// BuilderChange is the payload of EventBuilderChanged.
type BuilderChange struct {
	PageID   string          `json:"pageId"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// LogEmitter writes events to a structured logger. Used when no front end
// is attached, e.g. the standalone MCP server.
type LogEmitter struct {
	Logger *slog.Logger
}

func (e LogEmitter) Emit(ctx context.Context, event string, data any) {
	l := e.Logger
	if l == nil {
		l = slog.Default()
	}
	if c, ok := data.(BuilderChange); ok {
		l.DebugContext(ctx, "event", "name", event, "page", c.PageID)
		return
	}
	l.DebugContext(ctx, "event", "name", event, "data", data)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Last returns the most recent emission of event.
func (m *MockEmitter) Last(event string) (EmittedEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Event == event {
			return m.Events[i], true
		}
	}
	return EmittedEvent{}, false
}
