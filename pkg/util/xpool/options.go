package xpool

import "github.com/omeyang/xfilekit/pkg/observability/xlog"

// Option 配置 Pool。
type Option func(*options)

type options struct {
	logger  xlog.Logger
	name    string
	onPanic func(task any, recovered any)
}

func defaultOptions() options {
	return options{logger: xlog.Default()}
}

// WithLogger 设置日志，nil 忽略。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithName 设置 pool 名称，出现在日志的 pool 字段中。
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithPanicHandler 在 handler panic 被恢复后调用，task 为触发 panic 的任务。
func WithPanicHandler(fn func(task any, recovered any)) Option {
	return func(o *options) { o.onPanic = fn }
}
