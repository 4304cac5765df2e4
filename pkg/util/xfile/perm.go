package xfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// PermMode 是待执行操作所需的权限类别。
type PermMode uint8

const (
	// PermRead 读取目标。
	PermRead PermMode = iota + 1
	// PermWrite 创建或覆盖目标。
	PermWrite
	// PermDelete 删除目标。
	PermDelete
)

// String 返回权限类别名称。
func (m PermMode) String() string {
	switch m {
	case PermRead:
		return "read"
	case PermWrite:
		return "write"
	case PermDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// CheckPermission 检查当前进程对 p 是否具备 mode 所需的权限。
//
// 规则：
//   - 目标存在：检查目标本身（目录额外要求执行位以便遍历）；
//     PermDelete 还要求所在目录可写，否则 unlink 无法完成
//   - 目标不存在：PermRead 返回 false；PermWrite/PermDelete 检查最近的已存在祖先目录是否可写
//
// 任何探测失败都返回 false，不返回错误。结果只是预检，调用方仍需处理实际操作的失败。
func CheckPermission(p ResolvedPath, mode PermMode) bool {
	if p.IsZero() {
		return false
	}

	info, err := os.Lstat(p.abs)
	switch {
	case err == nil:
		return checkExisting(p.abs, info, mode)
	case errors.Is(err, fs.ErrNotExist):
		if mode != PermWrite && mode != PermDelete {
			return false
		}
		ancestor, ok := nearestExistingDir(p.abs)
		if !ok {
			return false
		}
		return accessFn(ancestor, accessWrite|accessExec) == nil
	default:
		return false
	}
}

func checkExisting(path string, info fs.FileInfo, mode PermMode) bool {
	isLink := info.Mode()&fs.ModeSymlink != 0
	var want uint32
	switch mode {
	case PermRead:
		want = accessRead
	case PermWrite, PermDelete:
		want = accessWrite
	default:
		return false
	}
	if info.IsDir() {
		want |= accessExec
	}

	// 删除符号链接只影响链接本身，不探测其指向
	if !(mode == PermDelete && isLink) {
		if accessFn(path, want) != nil {
			return false
		}
	}
	if mode == PermDelete {
		return accessFn(filepath.Dir(path), accessWrite|accessExec) == nil
	}
	return true
}

// nearestExistingDir 自下而上查找最近的已存在祖先。
// 祖先若是普通文件则无法在其下创建任何内容，返回 false。
func nearestExistingDir(path string) (string, bool) {
	current := filepath.Clean(path)
	for i := 0; i <= maxSymlinkDepth; i++ {
		dir := filepath.Dir(current)
		if dir == current {
			return "", false
		}
		info, err := os.Stat(dir)
		if err == nil {
			return dir, info.IsDir()
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false
		}
		current = dir
	}
	return "", false
}
