// Package xfile 提供沙箱根目录下的路径约束与权限预检。
//
// 所有来自请求的路径都必须先经 [Resolve] 得到 [ResolvedPath]，
// 之后的写入、压缩、删除只接受 ResolvedPath，不接受裸字符串。
//
// # 路径约束
//
//   - Resolve / ResolveJoin: 约束到 root 之下，返回 ResolvedPath
//   - ResolveWithOptions: 额外解析父目录中的符号链接，对真实路径再做边界检查；
//     根目录内可能存在不可信符号链接时必须使用
//   - RealPath: 解析已存在部分的符号链接，用于比较两个根目录
//   - Within: 分隔符对齐的包含判断
//   - SanitizePath: 仅做格式净化，用于本地配置路径（如日志文件）
//
// 穿越检测在规范化之前进行，按 '/' 与 '\' 切分原始输入，
// 只有恰为 ".." 的段才视为穿越，"..config" 这类文件名是合法的：
//
//	Resolve("/data", "..config")           // ✓ /data/..config
//	Resolve("/data", `a\..\..\etc`)         // ✗ ErrPathTraversal
//	Resolve("/data", "x/../../data-evil/y") // ✗ ErrPathTraversal
//
// 边界检查要求前缀在分隔符处对齐，"/data" 不包含 "/data-evil"。
//
// 本包处理文件系统路径，不处理 URL 编码。来自 HTTP 的输入须先解码。
//
// # 权限预检
//
// [CheckPermission] 按 read/write/delete 探测权限，失败一律返回 false。
// 目标不存在时，写入与删除检查最近的已存在祖先目录。
//
// # 错误处理
//
// 预定义错误支持 [errors.Is]；[KindOf] 把错误归为 invalid / traversal / escape：
//
//	_, err := xfile.Resolve("/data", "../etc/passwd")
//	if xfile.KindOf(err) == xfile.KindTraversal {
//	    // 拒绝请求
//	}
package xfile
