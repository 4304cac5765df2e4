// Package xrun 基于 errgroup 管理 xfilejob 常驻进程中各服务的并发运行与协调关闭。
//
// 任一服务返回错误或收到终止信号时，共享的 ctx 被取消，其余服务应监听
// ctx.Done() 退出。[Run] 默认监听 [DefaultSignals]，收到信号时 Wait 返回
// [*SignalError]，可用 errors.Is(err, ErrSignal) 判断。
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger)},
//	    readJobs,
//	    xrun.Ticker(time.Minute, false, reportTotals),
//	    xrun.GracefulStop(30*time.Second, dispatcher.Shutdown),
//	)
//
// 直接使用 [NewGroup] 时不包含信号处理。
//
// Wait 过滤 context.Canceled：Group 被主动取消且带有显式原因时返回该原因，
// 无原因时返回 nil；服务内部产生的 context.Canceled 原样返回。
package xrun
