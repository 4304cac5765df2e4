// Package xmetrics 为文件作业提供统一的观测接口（metrics + tracing）。
//
// 业务代码只依赖 [Observer] 与 [Span]：
//
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xfilejob",
//		Operation: "save",
//	})
//	defer func() { span.End(xmetrics.Result{Err: err, Bytes: n}) }()
//
// 默认实现基于 OpenTelemetry，记录以下指标，属性为 component / operation / status：
//   - xfilekit.operation.total
//   - xfilekit.operation.duration（秒）
//   - xfilekit.operation.bytes
//
// [Recorder] 是进程内的 MeterProvider，用于在 CLI 退出时汇总各操作计数。
package xmetrics
