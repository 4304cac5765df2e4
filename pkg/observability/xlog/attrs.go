package xlog

import (
	"log/slog"
	"time"

	"github.com/omeyang/xfilekit/pkg/context/xctx"
)

// 常用属性 key。
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyOperation = xctx.KeyOperation
	KeyCount     = "count"
	KeyPath      = "path"
	KeyBytes     = "bytes"
	KeyOutcome   = "outcome"
)

// Err 返回 error 属性，err 为 nil 时返回空属性（slog 会忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 以人类可读格式记录耗时，如 "1.5ms"。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

func Operation(name string) slog.Attr { return slog.String(KeyOperation, name) }

func Count(n int64) slog.Attr { return slog.Int64(KeyCount, n) }

// Path 记录文件路径。
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Bytes 记录字节数。
func Bytes(n uint64) slog.Attr { return slog.Uint64(KeyBytes, n) }

// Outcome 记录操作结果，如 "removed"、"already_absent"、"failed"。
func Outcome(s string) slog.Attr { return slog.String(KeyOutcome, s) }
