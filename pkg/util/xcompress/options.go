package xcompress

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Suffix 是压缩文件的后缀。
const Suffix = ".gz"

// Option 定义 Compress 的可选配置。
type Option func(*options)

type options struct {
	level int
	// wrap 包装压缩输出的目标 writer，仅用于测试注入故障。
	wrap func(io.Writer) io.Writer
}

func defaultOptions() options {
	return options{level: gzip.DefaultCompression}
}

// WithLevel 设置 gzip 压缩级别（gzip.HuffmanOnly 到 gzip.BestCompression）。
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}
