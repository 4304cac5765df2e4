package xchunk

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode 表示编码内容非法。具体位置见 [DecodeError]。
	ErrDecode = errors.New("xchunk: malformed base64 input")

	// ErrIO 表示写入过程中的文件系统失败。
	ErrIO = errors.New("xchunk: filesystem failure")

	// ErrEmptyInput 表示去掉空白后没有任何编码字符。
	ErrEmptyInput = errors.New("xchunk: encoded input is empty")

	// ErrInvalidChunkSize 表示块大小小于 4。
	ErrInvalidChunkSize = errors.New("xchunk: chunk size must be at least 4")

	// ErrInvalidDestination 表示目标路径未经解析或指向根目录本身。
	ErrInvalidDestination = errors.New("xchunk: invalid destination")
)

// DecodeError 描述编码内容中第一个非法位置。
type DecodeError struct {
	// Offset 是去掉空白后的字符偏移。
	Offset int64
	// Err 是底层解码错误，可能为 nil。
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("xchunk: malformed base64 at offset %d", e.Offset)
	}
	return fmt.Sprintf("xchunk: malformed base64 at offset %d: %v", e.Offset, e.Err)
}

// Unwrap 同时暴露 [ErrDecode] 与底层错误。
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
