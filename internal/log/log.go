package log

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultLimit is how many records a Handler keeps.
const DefaultLimit = 20

type history struct {
	mu    sync.Mutex
	limit int
	logs  []slog.Record
}

// Handler is a slog.Handler that keeps the most recent records it handled,
// so callers can inspect what an operation that only logs its failures did.
type Handler struct {
	slog.Handler
	h *history
}

// NewHandler wraps handler, keeping up to limit records.
func NewHandler(handler slog.Handler, limit int) *Handler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Handler{Handler: handler, h: &history{limit: limit}}
}

// Handle stores the record and passes it on.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.h.mu.Lock()
	h.h.logs = append(h.h.logs, r.Clone())
	if len(h.h.logs) > h.h.limit {
		h.h.logs = h.h.logs[1:]
	}
	h.h.mu.Unlock()

	if !h.Handler.Enabled(ctx, r.Level) {
		return nil
	}
	return h.Handler.Handle(ctx, r)
}

// Enabled always reports true so that records below the output level are
// still kept.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs), h: h.h}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name), h: h.h}
}

// Logs returns the stored records, oldest first.
func (h *Handler) Logs() []slog.Record {
	h.h.mu.Lock()
	defer h.h.mu.Unlock()
	return append([]slog.Record(nil), h.h.logs...)
}

// Errors returns the stored records at error level or above.
func (h *Handler) Errors() []slog.Record {
	var errs []slog.Record
	for _, r := range h.Logs() {
		if r.Level >= slog.LevelError {
			errs = append(errs, r)
		}
	}
	return errs
}

// Reset drops the stored records.
func (h *Handler) Reset() {
	h.h.mu.Lock()
	defer h.h.mu.Unlock()
	h.h.logs = nil
}

// Init wraps handler, installs it as the default slog logger and returns it.
func Init(handler slog.Handler) *Handler {
	h := NewHandler(handler, DefaultLimit)
	slog.SetDefault(slog.New(h))
	return h
}
