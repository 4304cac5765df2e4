package xcompress

import (
	"errors"
	"fmt"
)

var (
	// ErrIO 表示压缩或解压过程中的文件系统失败。
	ErrIO = errors.New("xcompress: filesystem failure")

	// ErrInvalidSource 表示源路径未经解析、是根目录或不是普通文件。
	ErrInvalidSource = errors.New("xcompress: invalid source")

	// ErrInvalidLevel 表示压缩级别超出范围。
	ErrInvalidLevel = errors.New("xcompress: invalid compression level")
)

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
