package logging

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type contextKey int

const (
	traceIDKey contextKey = iota
	auditLoggerKey
)

// ContextWithTraceID returns ctx carrying traceID.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns the trace id carried by ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// GetOrGenerateTraceID returns the trace id carried by ctx, minting a fresh
// ULID when there is none.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return ulid.Make().String()
}

// FromContext returns the logger embedded in ctx, or a disabled logger when
// none was attached. Attach one with zerolog's Logger.WithContext.
func FromContext(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}

// ContextWithAuditLogger returns ctx carrying the audit logger.
func ContextWithAuditLogger(ctx context.Context, audit *AuditLogger) context.Context {
	return context.WithValue(ctx, auditLoggerKey, audit)
}

// AuditLoggerFromContext returns the audit logger carried by ctx, or a
// disabled one so callers can record and close unconditionally.
func AuditLoggerFromContext(ctx context.Context) *AuditLogger {
	if audit, ok := ctx.Value(auditLoggerKey).(*AuditLogger); ok && audit != nil {
		return audit
	}
	return disabledAuditLogger
}
