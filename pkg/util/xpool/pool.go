package xpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

const (
	maxWorkers   = 1 << 16
	maxQueueSize = 1 << 24
)

// Pool 是泛型 worker pool，New 后立即启动。
type Pool[T any] struct {
	handler func(context.Context, T)
	queue   chan T
	opts    options

	// ctx 传给 handler，Kill 时取消
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool

	wg   sync.WaitGroup
	done chan struct{}
	once sync.Once
}

// New 创建并启动 pool。queueSize 为 0 时任务只能在有空闲 worker 时入队。
func New[T any](workers, queueSize int, handler func(context.Context, T), opts ...Option) (*Pool[T], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if workers < 1 || workers > maxWorkers {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	if queueSize < 0 || queueSize > maxQueueSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQueueSize, queueSize)
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool[T]{
		handler: handler,
		queue:   make(chan T, queueSize),
		opts:    o,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		cancel()
		close(p.done)
	}()
	return p, nil
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool[T]) run(task T) {
	defer func() {
		if r := recover(); r != nil {
			p.opts.logger.Error(p.ctx, "xpool: handler panic recovered",
				slog.String("pool", p.opts.name),
				slog.String("task_type", fmt.Sprintf("%T", task)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			if p.opts.onPanic != nil {
				p.opts.onPanic(task, r)
			}
		}
	}()
	p.handler(p.ctx, task)
}

// Submit 非阻塞提交。
func (p *Pool[T]) Submit(task T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitWait 阻塞直到任务入队、pool 停止或 ctx 结束。
func (p *Pool[T]) SubmitWait(ctx context.Context, task T) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	// 持有读锁期间 Shutdown 无法关闭 queue，发送是安全的
	select {
	case p.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown 拒绝新任务并等待已入队任务完成。
// ctx 到期时返回其错误，残留任务继续在后台执行。
//
// 有 SubmitWait 阻塞时，Shutdown 需等它们入队或放弃后才能关闭队列，
// 调用方应先取消传给 SubmitWait 的 ctx。
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.queue)
		p.mu.Unlock()
	})
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Kill 取消传给 handler 的 ctx，用于 Shutdown 超时后通知在途任务放弃。
func (p *Pool[T]) Kill() { p.cancel() }

// Done 在所有 worker 退出后关闭。
func (p *Pool[T]) Done() <-chan struct{} { return p.done }

// Close 等价于 Shutdown(context.Background())。
func (p *Pool[T]) Close() error {
	return p.Shutdown(context.Background())
}

var _ interface{ Close() error } = (*Pool[int])(nil)
