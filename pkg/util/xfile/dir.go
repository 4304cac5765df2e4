package xfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirPerm 是创建父目录时使用的默认权限（所有者 rwx，组 r-x，其他无）。
const DefaultDirPerm = 0750

// DefaultFilePerm 是写入文件时使用的默认权限。
const DefaultFilePerm = 0640

// EnsureDir 确保文件的父目录存在，使用默认权限 0750。
//
// 面向本地配置路径（如日志文件）；底层 os.MkdirAll 会跟随符号链接。
// 请求路径请使用 [EnsureParent]，它只接受已校验的 [ResolvedPath]。
func EnsureDir(filename string) error {
	return EnsureDirWithPerm(filename, DefaultDirPerm)
}

// EnsureDirWithPerm 确保文件的父目录存在，使用指定权限。
//
// perm 必须包含所有者执行位（0100），否则目录无法遍历。
// 目录已存在时不修改其权限；并发创建同一目录不会报错。
func EnsureDirWithPerm(filename string, perm os.FileMode) error {
	if filename == "" {
		return fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	if perm&0100 == 0 {
		return fmt.Errorf("directory permission %04o missing owner execute bit: %w", perm, ErrInvalidPerm)
	}
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

// EnsureParent 为已校验路径创建父目录（幂等）。
// 这是 Resolve 之后唯一显式的目录创建步骤。
func EnsureParent(p ResolvedPath, perm os.FileMode) error {
	if p.IsZero() {
		return fmt.Errorf("unresolved path: %w", ErrEmptyPath)
	}
	if p.IsRoot() {
		return fmt.Errorf("root has no parent inside root: %w", ErrInvalidPath)
	}
	return EnsureDirWithPerm(p.abs, perm)
}
