package xmeta

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// UnknownMIME 是无法识别内容类型时的取值。
const UnknownMIME = "unknown"

// ErrNotRegular 表示目标不是普通文件。
var ErrNotRegular = errors.New("xmeta: not a regular file")

// FileMetadata 是一次保存产生的文件元数据。
type FileMetadata struct {
	Size       uint64    `json:"size"`
	MimeType   string    `json:"mime_type"`
	CreatedAt  time.Time `json:"created_at"`
	Compressed bool      `json:"compressed"`
	// Checksum 是解码后原始内容的 xxhash64（十六进制），由写入阶段提供。
	Checksum string `json:"checksum,omitempty"`
}

// Outcome 区分提取成功与退化为默认值。
type Outcome uint8

const (
	// OutcomeDetected 表示大小与内容类型均来自文件本身。
	OutcomeDetected Outcome = iota
	// OutcomeFallback 表示提取失败，元数据为默认值。
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeFallback {
		return "fallback"
	}
	return "detected"
}

// Extraction 是 Extract 的结果，两种结果都携带可直接返回给调用方的元数据。
type Extraction struct {
	Metadata FileMetadata
	Outcome  Outcome
	// Cause 仅在 OutcomeFallback 时非 nil。
	Cause error
}

// Degraded 报告是否退化为默认元数据。
func (e Extraction) Degraded() bool { return e.Outcome == OutcomeFallback }

// Default 返回提取失败时使用的默认元数据。
func Default(now time.Time) FileMetadata {
	return FileMetadata{Size: 0, MimeType: UnknownMIME, CreatedAt: now}
}

// Option 定义 Extract 的可选配置。
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock 替换时间来源，默认 time.Now().UTC()。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Extract 计算 path 的元数据，永不失败。
func Extract(path string, opts ...Option) Extraction {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	now := o.now()

	md, err := detect(path, now)
	if err != nil {
		return Extraction{Metadata: Default(now), Outcome: OutcomeFallback, Cause: err}
	}
	return Extraction{Metadata: md, Outcome: OutcomeDetected}
}

func detect(path string, now time.Time) (FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("xmeta: stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return FileMetadata{}, ErrNotRegular
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("xmeta: sniff content: %w", err)
	}
	return FileMetadata{
		Size:      uint64(info.Size()),
		MimeType:  baseType(mt.String()),
		CreatedAt: now,
	}, nil
}

// baseType 去掉媒体类型参数，如 "text/plain; charset=utf-8" -> "text/plain"。
func baseType(s string) string {
	base, _, _ := strings.Cut(s, ";")
	base = strings.TrimSpace(base)
	if base == "" {
		return UnknownMIME
	}
	return base
}
