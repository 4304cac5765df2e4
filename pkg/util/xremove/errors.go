package xremove

import (
	"errors"
	"fmt"
)

var (
	// ErrIsDirectory 表示目标是目录，但请求未开启递归删除。
	ErrIsDirectory = errors.New("xremove: path is a directory, recursive removal required")

	// ErrPartial 表示递归删除中途失败，部分条目已删除。
	ErrPartial = errors.New("xremove: removal partially completed")

	// ErrRemoveRoot 表示试图删除根目录本身。
	ErrRemoveRoot = errors.New("xremove: refusing to remove the root directory")

	// ErrInvalidPath 表示路径未经解析。
	ErrInvalidPath = errors.New("xremove: unresolved path")

	// ErrIO 表示删除单个文件时的文件系统失败。
	ErrIO = errors.New("xremove: filesystem failure")
)

// PartialError 描述递归删除中途失败时的进度。
type PartialError struct {
	// Removed 是失败前已删除的条目数（不含目录本身）。
	Removed uint32
	// Path 是导致失败的条目。
	Path string
	Err  error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("xremove: removal stopped after %d entries at %s: %v", e.Removed, e.Path, e.Err)
}

// Unwrap 同时暴露 [ErrPartial] 与底层错误。
func (e *PartialError) Unwrap() []error {
	return []error{ErrPartial, e.Err}
}
