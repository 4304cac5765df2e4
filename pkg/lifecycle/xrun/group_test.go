package xrun

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xfilekit/pkg/observability/xlog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(t *testing.T) (xlog.Logger, *lockedBuffer) {
	t.Helper()
	out := &lockedBuffer{}
	l, _, err := xlog.New().SetOutput(out).SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)
	return l, out
}

func TestGroup_Empty(t *testing.T) {
	g, _ := NewGroup(context.Background())
	assert.NoError(t, g.Wait())
}

func TestGroup_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	var stopped atomic.Bool

	g, ctx := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return ctx.Err()
	})
	g.Go(func(context.Context) error { return boom })

	assert.ErrorIs(t, g.Wait(), boom)
	assert.True(t, stopped.Load())
	assert.Error(t, ctx.Err())
}

func TestGroup_NilFuncAndNilContext(t *testing.T) {
	//nolint:staticcheck // 测试 nil context 归一化
	g, _ := NewGroup(nil)
	g.Go(nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)
}

func TestGroup_CancelCause(t *testing.T) {
	custom := errors.New("shutdown requested")

	g, _ := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.Cancel(custom)
	assert.ErrorIs(t, g.Wait(), custom)

	g, _ = NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	g.Cancel(nil)
	assert.NoError(t, g.Wait(), "无显式原因的取消不是错误")
}

func TestGroup_InternalCanceledNotFiltered(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, g.Wait(), context.Canceled)
}

func TestGroup_ParentCanceled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g, _ := NewGroup(parent)
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()
	assert.NoError(t, g.Wait())
}

func TestGroup_GoWithNameLogs(t *testing.T) {
	logger, out := newTestLogger(t)
	g, _ := NewGroup(context.Background(), WithLogger(logger), WithName("serve"))
	g.GoWithName("reader", func(context.Context) error { return errors.New("stdin closed badly") })
	require.Error(t, g.Wait())

	logs := out.String()
	assert.Contains(t, logs, "service starting")
	assert.Contains(t, logs, "service exited with error")
	assert.Contains(t, logs, "component=reader")
	assert.Contains(t, logs, "group=serve")
}

func TestRun_Signal(t *testing.T) {
	sigc := make(chan os.Signal, 1)
	ctx := withTestSigChan(context.Background(), sigc)
	logger, out := newTestLogger(t)

	var reached atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- RunWithOptions(ctx, []Option{WithLogger(logger)}, func(ctx context.Context) error {
			reached.Store(true)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	sigc <- syscall.SIGTERM
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrSignal)
		var se *SignalError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, syscall.SIGTERM, se.Signal)
		assert.Contains(t, se.Error(), "terminated")
	case <-time.After(2 * time.Second):
		t.Fatal("Run 未在信号后返回")
	}
	assert.Contains(t, out.String(), "received signal")
}

func TestRun_WithoutSignalHandler(t *testing.T) {
	err := RunWithOptions(context.Background(), []Option{WithoutSignalHandler(), WithSignals(nil)},
		func(context.Context) error { return nil })
	assert.NoError(t, err, "没有信号监听时服务返回即结束")
}

func TestRun_ServiceError(t *testing.T) {
	boom := errors.New("boom")
	sigc := make(chan os.Signal)
	ctx := withTestSigChan(context.Background(), sigc)
	assert.ErrorIs(t, Run(ctx, func(context.Context) error { return boom }), boom)
}

func TestSignalError_NilSignal(t *testing.T) {
	e := &SignalError{}
	assert.Equal(t, "received signal <nil>", e.Error())
	assert.ErrorIs(t, e, ErrSignal)
}

func TestDefaultSignals_Fresh(t *testing.T) {
	a := DefaultSignals()
	a[0] = syscall.SIGUSR1
	assert.Equal(t, syscall.SIGHUP, DefaultSignals()[0])
}

func TestTicker(t *testing.T) {
	var n atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	stop := errors.New("enough")

	err := Ticker(time.Millisecond, true, func(context.Context) error {
		if n.Add(1) == 3 {
			return stop
		}
		return nil
	})(ctx)
	cancel()
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, int32(3), n.Load())

	assert.ErrorIs(t, Ticker(0, false, func(context.Context) error { return nil })(context.Background()), ErrInvalidInterval)
	assert.ErrorIs(t, Ticker(time.Second, false, nil)(context.Background()), ErrNilFunc)

	canceled, cancel2 := context.WithCancel(context.Background())
	cancel2()
	called := false
	err = Ticker(time.Second, true, func(context.Context) error { called = true; return nil })(canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called, "已取消的 ctx 不应触发 immediate 执行")
}

func TestGracefulStop(t *testing.T) {
	var gotDeadline atomic.Bool
	g, _ := NewGroup(context.Background())
	g.Go(GracefulStop(time.Second, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		gotDeadline.Store(ok)
		return ctx.Err()
	}))
	g.Cancel(nil)
	assert.NoError(t, g.Wait())
	assert.True(t, gotDeadline.Load(), "stop 应收到带超时的 ctx")

	stopErr := errors.New("drain timeout")
	g, _ = NewGroup(context.Background())
	g.Go(GracefulStop(0, func(context.Context) error { return stopErr }))
	g.Cancel(nil)
	assert.ErrorIs(t, g.Wait(), stopErr)

	assert.ErrorIs(t, GracefulStop(time.Second, nil)(context.Background()), ErrNilFunc)
}
