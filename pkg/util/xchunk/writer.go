package xchunk

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

// Result 是一次成功写入的结果。
type Result struct {
	// BytesWritten 是解码后写入的字节数。
	BytesWritten uint64
	// Checksum 是解码后内容的 xxhash64。
	Checksum uint64
}

// ChecksumHex 以 16 位十六进制返回校验和。
func (r Result) ChecksumHex() string {
	return fmt.Sprintf("%016x", r.Checksum)
}

// Write 将 encoded 分块解码写入 dst。
//
// 失败时不会在 dst 留下任何内容；dst 原有文件仅在成功时被替换。
// ctx 在每块之间检查，取消后立即清理并返回。
func Write(ctx context.Context, dst xfile.ResolvedPath, encoded string, opts ...Option) (Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	chunk, err := alignChunk(o.chunkSize)
	if err != nil {
		return Result{}, err
	}
	if dst.IsZero() || dst.IsRoot() {
		return Result{}, ErrInvalidDestination
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("xchunk: write canceled: %w", err)
	}

	if err := xfile.EnsureParent(dst, o.dirPerm); err != nil {
		return Result{}, ioError("create parent directories", err)
	}

	tmp, err := os.CreateTemp(dst.Dir(), ".xchunk-*.part")
	if err != nil {
		return Result{}, ioError("create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	h := xxhash.New()
	d := newDecoder(io.MultiWriter(tmp, h), chunk)
	if err := d.stream(ctx, encoded); err != nil {
		return Result{}, err
	}

	if err := tmp.Chmod(o.filePerm); err != nil {
		return Result{}, ioError("chmod temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return Result{}, ioError("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, ioError("close", err)
	}
	if err := os.Rename(tmpPath, dst.Abs()); err != nil {
		return Result{}, ioError("rename into place", err)
	}
	committed = true

	return Result{BytesWritten: d.written, Checksum: h.Sum64()}, nil
}

// decoder 持有单块的编码缓冲与解码缓冲，两者大小都只与块大小相关。
type decoder struct {
	w       io.Writer
	chunk   int
	enc     []byte
	out     []byte
	offset  int64 // enc[0] 在去空白流中的偏移
	padded  bool  // 已经解码过带 '=' 的块
	written uint64
}

func newDecoder(w io.Writer, chunk int) *decoder {
	return &decoder{
		w:     w,
		chunk: chunk,
		enc:   make([]byte, 0, chunk),
		out:   make([]byte, base64.StdEncoding.DecodedLen(chunk)),
	}
}

func (d *decoder) stream(ctx context.Context, encoded string) error {
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if isSpace(c) {
			continue
		}
		if d.padded {
			return &DecodeError{Offset: d.offset, Err: errors.New("data after padding")}
		}
		d.enc = append(d.enc, c)
		if len(d.enc) < d.chunk {
			continue
		}
		if err := d.flush(d.enc); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("xchunk: write canceled: %w", err)
		}
	}

	if d.offset == 0 && len(d.enc) == 0 {
		return ErrEmptyInput
	}
	return d.finish()
}

// flush 解码一个完整的、长度为 4 的整数倍的块。
func (d *decoder) flush(enc []byte) error {
	n, err := base64.StdEncoding.Decode(d.out, enc)
	if err != nil {
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) {
			return &DecodeError{Offset: d.offset + int64(corrupt), Err: err}
		}
		return &DecodeError{Offset: d.offset, Err: err}
	}
	if err := d.emit(d.out[:n]); err != nil {
		return err
	}
	d.padded = bytes.IndexByte(enc, '=') >= 0
	d.offset += int64(len(enc))
	d.enc = d.enc[:0]
	return nil
}

// finish 处理最后不足一块的剩余字符。
// 末尾分组缺少 '=' 填充（余 2 或 3 个字符）时按无填充编码解码；余 1 个字符一定非法。
func (d *decoder) finish() error {
	if len(d.enc) == 0 {
		return nil
	}
	whole := len(d.enc) - len(d.enc)%4
	tail := d.enc[whole:]
	if whole > 0 {
		if err := d.flush(d.enc[:whole]); err != nil {
			return err
		}
		if len(tail) > 0 && d.padded {
			return &DecodeError{Offset: d.offset, Err: errors.New("data after padding")}
		}
	}

	switch {
	case len(tail) == 0:
		return nil
	case len(tail) == 1:
		return &DecodeError{Offset: d.offset, Err: errors.New("truncated final group")}
	case bytes.IndexByte(tail, '=') >= 0:
		return &DecodeError{Offset: d.offset + int64(bytes.IndexByte(tail, '=')), Err: errors.New("incomplete padding")}
	}

	n, err := base64.RawStdEncoding.Decode(d.out, tail)
	if err != nil {
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) {
			return &DecodeError{Offset: d.offset + int64(corrupt), Err: err}
		}
		return &DecodeError{Offset: d.offset, Err: err}
	}
	d.offset += int64(len(tail))
	return d.emit(d.out[:n])
}

func (d *decoder) emit(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := d.w.Write(p); err != nil {
		return ioError("write chunk", err)
	}
	d.written += uint64(len(p))
	return nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
