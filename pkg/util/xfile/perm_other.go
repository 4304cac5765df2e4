//go:build !unix

package xfile

import (
	"io/fs"
	"os"
)

const (
	accessRead  uint32 = 4
	accessWrite uint32 = 2
	accessExec  uint32 = 1
)

// accessFn 在没有 access(2) 的平台上退化为所有者权限位检查。
var accessFn = func(path string, mode uint32) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	owner := uint32(info.Mode().Perm()>>6) & 7
	if owner&mode != mode {
		return fs.ErrPermission
	}
	return nil
}
