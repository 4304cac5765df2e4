package xcompress

import "io"

// WithWriterWrap 在压缩输出与临时文件之间插入一个 writer。
func WithWriterWrap(wrap func(io.Writer) io.Writer) Option {
	return func(o *options) {
		o.wrap = wrap
	}
}
