// Package xctx 在 context 中携带单次作业的标识：作业 ID 与操作名（save / remove）。
//
// 日志 enrich handler 通过 [AppendJobAttrs] 与 [AppendTraceAttrs] 读取这些字段，
// 业务代码只需在作业入口注入一次：
//
//	ctx, jobID, err := xctx.EnsureJobID(ctx)
//	ctx, err = xctx.WithOperation(ctx, "save")
//
// 所有 With 函数对 nil ctx 返回 [ErrNilContext]；读取函数对 nil ctx 返回零值。
package xctx
