package xfilejob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xfilekit/pkg/observability/xlog"
	"github.com/omeyang/xfilekit/pkg/util/xpool"
)

// JobHandler 处理单个作业。*Handler 实现此接口。
type JobHandler interface {
	Handle(ctx context.Context, job Job) JobResult
}

// Emitter 接收作业结果，会被多个 worker 并发调用。
type Emitter func(JobResult)

// Dispatcher 并发执行作业，每个作业的结果交给 Emitter。
type Dispatcher struct {
	handler JobHandler
	emit    Emitter
	timeout time.Duration
	logger  xlog.Logger
	pool    *xpool.Pool[Job]
}

// DispatcherOption 配置 Dispatcher。
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	workers   int
	queueSize int
	timeout   time.Duration
	logger    xlog.Logger
}

// WithWorkers 设置并发 worker 数，默认 4。
func WithWorkers(n int) DispatcherOption {
	return func(o *dispatcherOptions) { o.workers = n }
}

// WithQueueSize 设置排队上限，默认 64。
func WithQueueSize(n int) DispatcherOption {
	return func(o *dispatcherOptions) { o.queueSize = n }
}

// WithJobTimeout 设置单个作业的超时，0 表示不限时。
func WithJobTimeout(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) { o.timeout = d }
}

// WithDispatcherLogger 设置日志，nil 忽略。
func WithDispatcherLogger(l xlog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewDispatcher 创建并启动 Dispatcher。
func NewDispatcher(h JobHandler, emit Emitter, opts ...DispatcherOption) (*Dispatcher, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if emit == nil {
		return nil, ErrNilEmitter
	}
	o := dispatcherOptions{workers: 4, queueSize: 64, logger: xlog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.timeout < 0 {
		return nil, fmt.Errorf("%w: job timeout %s", ErrInvalidConfig, o.timeout)
	}

	d := &Dispatcher{handler: h, emit: emit, timeout: o.timeout, logger: o.logger}
	pool, err := xpool.New(o.workers, o.queueSize, d.process,
		xpool.WithName("xfilejob"),
		xpool.WithLogger(o.logger),
		xpool.WithPanicHandler(d.onPanic),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	d.pool = pool
	return d, nil
}

func (d *Dispatcher) process(ctx context.Context, job Job) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	d.emit(d.handler.Handle(ctx, job))
}

// onPanic 处理 Handler 之外（如 Emitter）的 panic，作业以内部错误结束。
func (d *Dispatcher) onPanic(task, recovered any) {
	job, ok := task.(Job)
	if !ok {
		return
	}
	err := fmt.Errorf("%w: %v", ErrInternal, recovered)
	func() {
		defer func() { _ = recover() }()
		d.emit(JobResult{ID: job.ID, Operation: job.Operation, Output: Failure(err)})
	}()
}

// Submit 阻塞直到作业入队，ctx 结束或 Dispatcher 已停止时返回错误。
func (d *Dispatcher) Submit(ctx context.Context, job Job) error {
	return d.pool.SubmitWait(ctx, job)
}

// TrySubmit 非阻塞提交，队列满时返回 xpool.ErrQueueFull。
func (d *Dispatcher) TrySubmit(job Job) error {
	return d.pool.Submit(job)
}

// Shutdown 停止接收作业并等待在途作业完成。
// ctx 到期时取消在途作业的 ctx 并返回 ctx 的错误。
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	err := d.pool.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		d.logger.Warn(context.WithoutCancel(ctx), "dispatcher shutdown timed out, canceling in-flight jobs", xlog.Err(err))
		d.pool.Kill()
	}
	return err
}

// Done 在所有 worker 退出后关闭。
func (d *Dispatcher) Done() <-chan struct{} { return d.pool.Done() }
