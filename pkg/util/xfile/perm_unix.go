//go:build unix

package xfile

import "golang.org/x/sys/unix"

const (
	accessRead  uint32 = unix.R_OK
	accessWrite uint32 = unix.W_OK
	accessExec  uint32 = unix.X_OK
)

// accessFn 按真实 uid/gid 探测权限，测试中可替换以模拟拒绝。
// 非并发安全，替换它的用例不应使用 t.Parallel()。
var accessFn = unix.Access
