package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID  contextKey = "request_id"
	ContextKeyAttachment contextKey = "attachment"
	ContextKeyFormat     contextKey = "format"
	ContextKeyFallback   contextKey = "fallback"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithAttachment adds the source attachment filename to the context
func WithAttachment(ctx context.Context, filename string) context.Context {
	return context.WithValue(ctx, ContextKeyAttachment, filename)
}

// AttachmentFromContext extracts the attachment filename from context
func AttachmentFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyAttachment).(string); ok {
		return name
	}
	return ""
}

// WithFormat records the document format that produced the order in flight
func WithFormat(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyFormat, name)
}

// FormatFromContext extracts the document format from context
func FormatFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyFormat).(string); ok {
		return name
	}
	return ""
}

// WithFallback marks the order in flight as the fallback record
func WithFallback(ctx context.Context, fallback bool) context.Context {
	return context.WithValue(ctx, ContextKeyFallback, fallback)
}

// FallbackFromContext reports whether the order in flight is the fallback record
func FallbackFromContext(ctx context.Context) bool {
	fallback, _ := ctx.Value(ContextKeyFallback).(bool)
	return fallback
}

// Logger returns base enriched with the request-scoped values found in ctx.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		base = base.With("request_id", id)
	}
	if name := AttachmentFromContext(ctx); name != "" {
		base = base.With("attachment", name)
	}
	return base
}
