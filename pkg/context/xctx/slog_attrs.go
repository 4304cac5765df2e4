package xctx

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// AppendJobAttrs 将 context 中的作业字段追加到 attrs，只追加非空字段。
func AppendJobAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := JobID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyJobID, v))
	}
	if v := Operation(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyOperation, v))
	}
	return attrs
}

// JobAttrs 返回作业字段，都为空时返回 nil。
func JobAttrs(ctx context.Context) []slog.Attr {
	attrs := AppendJobAttrs(make([]slog.Attr, 0, jobFieldCount), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// AppendTraceAttrs 追加当前 OpenTelemetry span 的 trace_id 与 span_id。
// context 中没有有效 span 时不追加。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return attrs
	}
	return append(attrs,
		slog.String(KeyTraceID, sc.TraceID().String()),
		slog.String(KeySpanID, sc.SpanID().String()),
	)
}
