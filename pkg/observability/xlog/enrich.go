package xlog

import (
	"context"
	"log/slog"

	"github.com/omeyang/xfilekit/pkg/context/xctx"
)

// maxEnrichAttrs job_id、operation、trace_id、span_id
const maxEnrichAttrs = 4

// EnrichHandler 在记录前从 context 注入作业字段与 trace 字段。
// context 中缺失的字段直接跳过。
//
// 对其调用 WithGroup 后注入字段也会落在该分组下。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 包装 base。
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 按 slog 契约先 Clone 再追加属性。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxEnrichAttrs]slog.Attr
	attrs := xctx.AppendJobAttrs(buf[:0], ctx)
	attrs = xctx.AppendTraceAttrs(attrs, ctx)
	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
