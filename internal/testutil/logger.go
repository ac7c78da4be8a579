package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogger captures structured logs for assertion in tests.
type TestLogger struct {
	mu      sync.RWMutex
	entries []LogEntry
	buffer  *bytes.Buffer

	Logger *slog.Logger
}

// LogEntry represents a captured log entry.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// NewTestLogger creates a logger that captures all log entries for testing.
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()

	tl := &TestLogger{buffer: &bytes.Buffer{}}
	tl.Logger = slog.New(&captureHandler{
		testLogger: tl,
		handler:    slog.NewTextHandler(tl.buffer, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return tl
}

// captureHandler wraps a slog handler to capture entries.
type captureHandler struct {
	testLogger *TestLogger
	handler    slog.Handler
	attrs      []slog.Attr
}

func (h *captureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *captureHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any),
	}
	for _, a := range h.attrs {
		entry.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value.Any()
		return true
	})

	h.testLogger.mu.Lock()
	h.testLogger.entries = append(h.testLogger.entries, entry)
	err := h.handler.Handle(ctx, r)
	h.testLogger.mu.Unlock()
	return err
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &captureHandler{
		testLogger: h.testLogger,
		handler:    h.handler.WithAttrs(attrs),
		attrs:      merged,
	}
}

// WithGroup is not used by kudosx; groups are flattened into the record.
func (h *captureHandler) WithGroup(name string) slog.Handler {
	return &captureHandler{
		testLogger: h.testLogger,
		handler:    h.handler.WithGroup(name),
		attrs:      h.attrs,
	}
}

// Entries returns a copy of all captured log entries.
func (l *TestLogger) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]LogEntry, len(l.entries))
	copy(result, l.entries)
	return result
}

// EntriesAt returns entries at a specific level.
func (l *TestLogger) EntriesAt(level slog.Level) []LogEntry {
	var result []LogEntry
	for _, e := range l.Entries() {
		if e.Level == level {
			result = append(result, e)
		}
	}
	return result
}

// HasMessage reports whether any entry's message contains substring.
func (l *TestLogger) HasMessage(substring string) bool {
	for _, e := range l.Entries() {
		if strings.Contains(e.Message, substring) {
			return true
		}
	}
	return false
}

// Output returns the text-formatted log output.
func (l *TestLogger) Output() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buffer.String()
}

// AssertContains asserts that at least one log entry contains the message.
func (l *TestLogger) AssertContains(t *testing.T, msg string) {
	t.Helper()
	if !l.HasMessage(msg) {
		t.Errorf("Expected log to contain message %q, got:\n%s", msg, l.Output())
	}
}

// AssertNoErrors asserts that there are no ERROR level entries.
func (l *TestLogger) AssertNoErrors(t *testing.T) {
	t.Helper()
	if errs := l.EntriesAt(slog.LevelError); len(errs) > 0 {
		t.Errorf("Expected no errors, got %d:\n%s", len(errs), l.Output())
	}
}
