// Package xfilejob 编排文件保存与删除作业。
//
// 保存流程：校验请求 → 解析路径（[xfile.ResolveJoinWithOptions]，解析符号链接）→ 写权限检查 →
// 分块解码写入（xchunk）→ 可选 gzip 压缩 → 元数据提取（xmeta）。
//
// 删除流程：校验请求 → 解析路径 → 删除权限检查 → xremove。
//
// 任何阶段的错误以及未预期的 panic 都转换为 success=false 的 [OperationResult]，
// error 字段是可读的错误信息，不含堆栈。
//
// # 根目录
//
// [Config.Root] 是权威根目录。请求中的根目录（destination_root、allowed_root）
// 只能等于或位于其内，解析符号链接后仍须如此；根目录内指向外部的链接
// 不能用来越界。未配置 Root 时直接使用请求根目录；两者都为空时请求失败。
//
// # 作业
//
// [Handler.Handle] 处理 {id, operation, input} 形式的作业信封，
// [Dispatcher] 基于 xpool 并发执行作业，供 serve 模式使用。
//
// [xfile.ResolveJoinWithOptions]: github.com/omeyang/xfilekit/pkg/util/xfile.ResolveJoinWithOptions
package xfilejob
