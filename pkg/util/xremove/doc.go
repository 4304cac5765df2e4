// Package xremove 删除沙箱根目录下的文件或目录树，并报告删除了什么。
//
// 结果分类：
//   - OutcomeRemoved: 目标存在并已删除
//   - OutcomeAlreadyAbsent: 目标本就不存在，视为成功（幂等删除）
//   - ErrIsDirectory: 目标是目录但未要求递归
//   - *PartialError: 递归删除中途失败或被取消，携带已删除条目数
//
// 符号链接只删除链接本身，从不跟随。根目录本身不能被删除。
package xremove
