// Package xpool 提供泛型 worker pool，用于并发执行文件作业。
//
//   - [Pool.Submit] 非阻塞，队列满时返回 [ErrQueueFull]
//   - [Pool.SubmitWait] 阻塞直到入队或 ctx 结束，适合从 stdin 读取作业的背压场景
//   - handler panic 被恢复并交给 [WithPanicHandler]，单个任务失败不影响其他 worker
//   - [Pool.Shutdown] 拒绝新任务并等待队列耗尽；ctx 到期后立即返回，
//     残留 worker 继续处理直至 [Pool.Done] 关闭
//
// handler 内不可调用 Shutdown，否则会死锁。
package xpool
