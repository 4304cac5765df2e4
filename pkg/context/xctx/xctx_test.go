package xctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestJobID(t *testing.T) {
	ctx, err := WithJobID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", JobID(ctx))

	got, err := RequireJobID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-1", got)

	_, err = RequireJobID(context.Background())
	assert.ErrorIs(t, err, ErrMissingJobID)

	//nolint:staticcheck // 测试 nil context 处理
	_, err = WithJobID(nil, "x")
	assert.ErrorIs(t, err, ErrNilContext)
	//nolint:staticcheck // 测试 nil context 处理
	assert.Empty(t, JobID(nil))
}

func TestEnsureJobID(t *testing.T) {
	ctx, id, err := EnsureJobID(context.Background())
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, id, JobID(ctx))

	again, id2, err := EnsureJobID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, id2, "已有 ID 时保持不变")
	assert.Equal(t, ctx, again)

	//nolint:staticcheck // 测试 nil context 处理
	_, _, err = EnsureJobID(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestWithJob(t *testing.T) {
	ctx, err := WithJob(context.Background(), "j", "save")
	require.NoError(t, err)
	assert.Equal(t, "j", JobID(ctx))
	assert.Equal(t, "save", Operation(ctx))

	// 空值跳过，保留父 context 中的字段
	ctx, err = WithJob(ctx, "", "remove")
	require.NoError(t, err)
	assert.Equal(t, "j", JobID(ctx))
	assert.Equal(t, "remove", Operation(ctx))

	//nolint:staticcheck // 测试 nil context 处理
	_, err = WithOperation(nil, "x")
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestJobAttrs(t *testing.T) {
	assert.Nil(t, JobAttrs(context.Background()))

	ctx, err := WithJob(context.Background(), "j", "save")
	require.NoError(t, err)
	assert.Equal(t, []slog.Attr{
		slog.String(KeyJobID, "j"),
		slog.String(KeyOperation, "save"),
	}, JobAttrs(ctx))
}

func TestAppendTraceAttrs(t *testing.T) {
	assert.Empty(t, AppendTraceAttrs(nil, context.Background()))

	tid, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("0123456789abcdef")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	attrs := AppendTraceAttrs(nil, ctx)
	require.Len(t, attrs, 2)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", attrs[0].Value.String())
	assert.Equal(t, "0123456789abcdef", attrs[1].Value.String())
}
