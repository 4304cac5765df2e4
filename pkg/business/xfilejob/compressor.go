package xfilejob

import (
	"context"

	"github.com/omeyang/xfilekit/pkg/util/xcompress"
	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

//go:generate mockgen -source=compressor.go -destination=mock_compressor_test.go -package=xfilejob

// Compressor 是保存流程的压缩阶段。
//
// 实现必须保证失败时 src 原样保留，成功时返回压缩产物路径。
type Compressor interface {
	Compress(ctx context.Context, src xfile.ResolvedPath) (xfile.ResolvedPath, error)
}

// GzipCompressor 使用 xcompress 生成 <path>.gz。
type GzipCompressor struct {
	Level int
}

func (g GzipCompressor) Compress(ctx context.Context, src xfile.ResolvedPath) (xfile.ResolvedPath, error) {
	return xcompress.Compress(ctx, src, xcompress.WithLevel(g.Level))
}
