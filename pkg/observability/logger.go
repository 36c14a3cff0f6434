package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID    = "trace_id"
	attrSpanID     = "span_id"
	attrService    = "service"
	attrEnv        = "env"
	attrRunID      = "run_id"
	attrRepository = "repository"
)

type logContextKey int

const (
	runIDKey logContextKey = iota
	repositoryKey
)

// ContextWithRun tags every record logged with ctx with the batch run id.
func ContextWithRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// ContextWithRepository tags every record logged with ctx with the
// repository being analyzed.
func ContextWithRepository(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, repositoryKey, name)
}

// RunID returns the batch run id carried by ctx, if any.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)

	return id, ok
}

// TracingHandler is an [slog.Handler] that adds the service metadata, the
// trace context (trace_id, span_id) and the batch run and repository carried
// by the record's context.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner. Service attributes are attached here so
// they stay at the top level when groups are used.
func NewTracingHandler(inner slog.Handler, service, env string) *TracingHandler {
	attrs := []slog.Attr{slog.String(attrService, service)}

	if env != "" {
		attrs = append(attrs, slog.String(attrEnv, env))
	}

	return &TracingHandler{inner: inner.WithAttrs(attrs)}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle adds the context attributes, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if id, ok := RunID(ctx); ok {
		record.AddAttrs(slog.String(attrRunID, id))
	}

	if name, ok := ctx.Value(repositoryKey).(string); ok {
		record.AddAttrs(slog.String(attrRepository, name))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if err := th.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}
