package xcompress

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

const copyBufferSize = 32 * 1024

// Compress 将 src 压缩为 src+".gz" 并删除原文件，返回压缩文件路径。
//
// 失败时原文件保持原样，不会留下部分写入的 .gz。
func Compress(ctx context.Context, src xfile.ResolvedPath, opts ...Option) (xfile.ResolvedPath, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.level < gzip.HuffmanOnly || o.level > gzip.BestCompression {
		return xfile.ResolvedPath{}, fmt.Errorf("%w: %d", ErrInvalidLevel, o.level)
	}
	if src.IsZero() || src.IsRoot() {
		return xfile.ResolvedPath{}, ErrInvalidSource
	}
	dst, err := src.WithSuffix(Suffix)
	if err != nil {
		return xfile.ResolvedPath{}, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	in, err := os.Open(src.Abs())
	if err != nil {
		return xfile.ResolvedPath{}, ioError("open source", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return xfile.ResolvedPath{}, ioError("stat source", err)
	}
	if !info.Mode().IsRegular() {
		return xfile.ResolvedPath{}, fmt.Errorf("%w: %s is not a regular file", ErrInvalidSource, src.Base())
	}

	if err := writeAtomic(ctx, dst, info.Mode().Perm(), func(w io.Writer) error {
		if o.wrap != nil {
			w = o.wrap(w)
		}
		zw, err := gzip.NewWriterLevel(w, o.level)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLevel, err)
		}
		zw.Name = info.Name()
		zw.ModTime = info.ModTime()
		if err := copyContext(ctx, zw, in); err != nil {
			_ = zw.Close()
			return err
		}
		// Close 写出剩余数据与 gzip 尾部，失败即视为输出不完整
		if err := zw.Close(); err != nil {
			return ioError("flush gzip stream", err)
		}
		return nil
	}); err != nil {
		return xfile.ResolvedPath{}, err
	}

	if err := os.Remove(src.Abs()); err != nil {
		_ = os.Remove(dst.Abs())
		return xfile.ResolvedPath{}, ioError("remove original", err)
	}
	return dst, nil
}

// Decompress 将 gzip 文件 src 解压到 dst，src 保持不变。
// dst 已存在时仅在成功后被替换。
func Decompress(ctx context.Context, src, dst xfile.ResolvedPath) error {
	if src.IsZero() || dst.IsZero() || dst.IsRoot() {
		return ErrInvalidSource
	}
	in, err := os.Open(src.Abs())
	if err != nil {
		return ioError("open source", err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return ioError("read gzip header", err)
	}
	defer zr.Close()

	return writeAtomic(ctx, dst, xfile.DefaultFilePerm, func(w io.Writer) error {
		return copyContext(ctx, w, zr)
	})
}

// writeAtomic 在 dst 同目录创建临时文件，由 fill 写入内容，
// Sync 与 Close 成功后重命名为 dst。任何失败都会删除临时文件。
func writeAtomic(ctx context.Context, dst xfile.ResolvedPath, perm os.FileMode, fill func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(dst.Dir(), ".xcompress-*.part")
	if err != nil {
		return ioError("create temp file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return fmt.Errorf("xcompress: canceled: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return ioError("chmod temp file", err)
	}
	if err = tmp.Sync(); err != nil {
		return ioError("sync", err)
	}
	if err = tmp.Close(); err != nil {
		return ioError("close", err)
	}
	if err = os.Rename(tmpPath, dst.Abs()); err != nil {
		return ioError("rename into place", err)
	}
	return nil
}

// copyContext 按块复制，每块之间检查 ctx。
func copyContext(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("xcompress: canceled: %w", err)
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return ioError("write", werr)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return ioError("read", rerr)
		}
	}
}
