package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// bulkyFields hold photo payloads and whole snapshot documents. They are
// logged as their size only.
var bulkyFields = map[string]struct{}{
	"data":     {},
	"payload":  {},
	"snapshot": {},
}

// ElidingHandler replaces bulky attribute values with a short size marker
type ElidingHandler struct {
	inner slog.Handler
}

func NewElidingHandler(inner slog.Handler) *ElidingHandler {
	return &ElidingHandler{inner: inner}
}

func (h *ElidingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ElidingHandler) Handle(ctx context.Context, record slog.Record) error {
	elided := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		elided.AddAttrs(elideAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, elided)
}

func (h *ElidingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	elided := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		elided = append(elided, elideAttr(attr))
	}
	return &ElidingHandler{inner: h.inner.WithAttrs(elided)}
}

func (h *ElidingHandler) WithGroup(name string) slog.Handler {
	return &ElidingHandler{inner: h.inner.WithGroup(name)}
}

func elideAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()

	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		elided := make([]slog.Attr, 0, len(group))
		for _, nested := range group {
			elided = append(elided, elideAttr(nested))
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(elided...)}
	}

	if _, ok := bulkyFields[strings.ToLower(attr.Key)]; !ok {
		return attr
	}
	switch v := attr.Value.Any().(type) {
	case string:
		return slog.String(attr.Key, fmt.Sprintf("[%d bytes]", len(v)))
	case []byte:
		return slog.String(attr.Key, fmt.Sprintf("[%d bytes]", len(v)))
	default:
		return slog.String(attr.Key, "[elided]")
	}
}
