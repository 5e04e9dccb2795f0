package logger

import (
	"context"
	"log/slog"
)

// Attribute names for the request-scoped values copied onto every record.
const (
	AttrRequestID = "request_id"
	AttrRoute     = "route"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	routeKey
)

// WithRequestID returns a new context with the given request ID stored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithRoute tags ctx with the route pattern a lottery read was matched to.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

// Route returns the route pattern stored by WithRoute, or "".
func Route(ctx context.Context) string {
	route, _ := ctx.Value(routeKey).(string)
	return route
}

// contextAttrs returns the request-scoped attributes set on ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String(AttrRequestID, id))
	}
	if route := Route(ctx); route != "" {
		attrs = append(attrs, slog.String(AttrRoute, route))
	}
	return attrs
}

// NewContextHandler wraps inner so that records logged with a context carry
// that context's request ID and route.
func NewContextHandler(inner slog.Handler) slog.Handler {
	return contextHandler{inner: inner}
}

type contextHandler struct {
	inner slog.Handler
}

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	rec.AddAttrs(contextAttrs(ctx)...)
	return h.inner.Handle(ctx, rec)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{inner: h.inner.WithGroup(name)}
}
