package xmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Internal", KindInternal.String())
	assert.Equal(t, "Server", KindServer.String())
	assert.Equal(t, "Client", KindClient.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestStart_NilObserver(t *testing.T) {
	//nolint:staticcheck // 测试 nil context 处理
	ctx, span := Start(nil, nil, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.IsType(t, NoopSpan{}, span)
	assert.NotPanics(t, func() { span.End(Result{Err: errors.New("x")}) })
}

type nilObserver struct{}

func (nilObserver) Start(context.Context, SpanOptions) (context.Context, Span) { return nil, nil }

func TestStart_ObserverReturnsNil(t *testing.T) {
	ctx, span := Start(context.Background(), nilObserver{}, SpanOptions{})
	assert.Equal(t, context.Background(), ctx)
	assert.IsType(t, NoopSpan{}, span)
}

func TestNoopObserver(t *testing.T) {
	var obs Observer = NoopObserver{}
	//nolint:staticcheck // 测试 nil context 处理
	ctx, span := obs.Start(nil, SpanOptions{Operation: "save"})
	require.NotNil(t, ctx)
	span.End(Result{})
}

func TestResolveStatus(t *testing.T) {
	assert.Equal(t, StatusOK, resolveStatus(Result{}))
	assert.Equal(t, StatusError, resolveStatus(Result{Err: errors.New("x")}))
	assert.Equal(t, StatusOK, resolveStatus(Result{Status: StatusOK, Err: errors.New("x")}))
	assert.Equal(t, StatusError, resolveStatus(Result{Status: StatusError}))
}

func TestAttrHelpers(t *testing.T) {
	assert.Equal(t, Attr{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Attr{Key: "k", Value: true}, Bool("k", true))
	assert.Equal(t, Attr{Key: "k", Value: int64(-1)}, Int64("k", -1))
	assert.Equal(t, Attr{Key: "k", Value: uint64(1)}, Uint64("k", 1))
}
