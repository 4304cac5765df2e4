package xfilejob

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/omeyang/xfilekit/pkg/observability/xlog"
	"github.com/omeyang/xfilekit/pkg/observability/xmetrics"
	"github.com/omeyang/xfilekit/pkg/util/xchunk"
)

// Config 是 Handler 的存储配置。
type Config struct {
	// Root 是权威根目录，可为空（此时每个请求必须携带根目录）。
	Root string
	// ChunkSize 为 0 时使用 xchunk.DefaultChunkSize。
	ChunkSize int
	// DirPerm、FilePerm 为 0 时使用 xfile 的默认权限。
	DirPerm  os.FileMode
	FilePerm os.FileMode
	// CompressionLevel 仅在未通过 WithCompressor 替换压缩实现时生效。
	// 为 0 时使用 gzip.DefaultCompression；gzip.NoCompression 不可选。
	CompressionLevel int
}

// DefaultConfig 返回只缺少 Root 的默认配置。
// 直接构造 Config 时零值字段同样取默认值。
func DefaultConfig() Config {
	return Config{
		ChunkSize:        xchunk.DefaultChunkSize,
		CompressionLevel: gzip.DefaultCompression,
	}
}

func (c Config) validate() error {
	if c.ChunkSize != 0 && c.ChunkSize < 4 {
		return fmt.Errorf("%w: chunk size %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.CompressionLevel < gzip.HuffmanOnly || c.CompressionLevel > gzip.BestCompression {
		return fmt.Errorf("%w: compression level %d", ErrInvalidConfig, c.CompressionLevel)
	}
	return nil
}

func (c Config) compressionLevel() int {
	if c.CompressionLevel == gzip.NoCompression {
		return gzip.DefaultCompression
	}
	return c.CompressionLevel
}

// Option 配置 Handler。
type Option func(*Handler)

// WithLogger 设置日志，nil 忽略。
func WithLogger(l xlog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver 设置观测实现，默认 xmetrics.NoopObserver。
func WithObserver(o xmetrics.Observer) Option {
	return func(h *Handler) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithCompressor 替换压缩阶段。
func WithCompressor(c Compressor) Option {
	return func(h *Handler) {
		if c != nil {
			h.compressor = c
		}
	}
}

// WithClock 替换时间来源，影响元数据时间戳与耗时统计。
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithNameGenerator 替换 generate_name 使用的名称生成器，默认随机 UUID。
func WithNameGenerator(fn func() string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.newName = fn
		}
	}
}

func defaultNameGenerator() string { return uuid.NewString() }
