// Package xlog 基于 log/slog 的结构化日志。
//
// 使用 Builder 配置输出目标、级别、格式与文件轮转：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString(cfg.Level).
//		SetFormat("json").
//		SetRotation("/var/log/xfilekit/job.log", xlog.RotateConfig{MaxSizeMB: 100}).
//		Build()
//	defer cleanup()
//
// Builder 采用 first-error-wins：第一个配置错误会在 Build 时返回。
//
// 默认启用 [EnrichHandler]，从 context 注入 job_id、operation 以及当前
// OpenTelemetry span 的 trace_id、span_id。
//
// 派生 logger（With/WithGroup）共享父级的 LevelVar，级别热更新对所有派生实例同时生效。
package xlog
