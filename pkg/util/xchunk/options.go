package xchunk

import (
	"os"

	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

// DefaultChunkSize 是每次解码的编码字符数。
const DefaultChunkSize = 8192

// Option 定义 Write 的可选配置。
type Option func(*options)

type options struct {
	chunkSize int
	filePerm  os.FileMode
	dirPerm   os.FileMode
}

func defaultOptions() options {
	return options{
		chunkSize: DefaultChunkSize,
		filePerm:  xfile.DefaultFilePerm,
		dirPerm:   xfile.DefaultDirPerm,
	}
}

// WithChunkSize 设置每块的编码字符数。
// 非 4 的整数倍时向下取整；取整后小于 4 时 Write 返回 [ErrInvalidChunkSize]。
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithFilePerm 设置目标文件权限，默认 0640。0 被忽略。
func WithFilePerm(perm os.FileMode) Option {
	return func(o *options) {
		if perm != 0 {
			o.filePerm = perm
		}
	}
}

// WithDirPerm 设置父目录权限，默认 0750。0 被忽略。
func WithDirPerm(perm os.FileMode) Option {
	return func(o *options) {
		if perm != 0 {
			o.dirPerm = perm
		}
	}
}

// alignChunk 把块大小向下对齐到 4 的整数倍。
func alignChunk(n int) (int, error) {
	n -= n % 4
	if n < 4 {
		return 0, ErrInvalidChunkSize
	}
	return n, nil
}
