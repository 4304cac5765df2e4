package xconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/omeyang/xfilekit/pkg/observability/xlog"
)

// Settings 是 xfilejob 的全部配置。
type Settings struct {
	Storage StorageSettings `koanf:"storage" json:"storage"`
	Log     LogSettings     `koanf:"log" json:"log"`
	Worker  WorkerSettings  `koanf:"worker" json:"worker"`
}

// StorageSettings 文件存储相关配置。
type StorageSettings struct {
	// Root 是所有请求路径的沙箱根目录。为空时必须由请求携带根目录。
	Root string `koanf:"root" json:"root"`
	// ChunkSize 是 base64 解码的块大小，向下取整到 4 的倍数。
	ChunkSize int `koanf:"chunk_size" json:"chunk_size"`
	// DirPerm、FilePerm 为八进制字符串，如 "0750"。YAML 中需加引号。
	DirPerm  string `koanf:"dir_perm" json:"dir_perm"`
	FilePerm string `koanf:"file_perm" json:"file_perm"`
	// CompressionLevel 取 gzip 级别 -2~9，0 按默认级别处理。
	CompressionLevel int `koanf:"compression_level" json:"compression_level"`
}

// LogSettings 日志配置。File 为空时输出到 stderr。
type LogSettings struct {
	Level      string `koanf:"level" json:"level"`
	Format     string `koanf:"format" json:"format"`
	File       string `koanf:"file" json:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups" json:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days" json:"max_age_days"`
	Compress   bool   `koanf:"compress" json:"compress"`
}

// WorkerSettings serve 模式的并发配置。
type WorkerSettings struct {
	Workers   int `koanf:"workers" json:"workers"`
	QueueSize int `koanf:"queue_size" json:"queue_size"`
	// JobTimeout 为 0 表示不限时。
	JobTimeout time.Duration `koanf:"job_timeout" json:"job_timeout"`
	// ShutdownTimeout 是收到退出信号后等待在途作业的最长时间。
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// 默认值。
const (
	DefaultChunkSize       = 8192
	DefaultDirPerm         = "0750"
	DefaultFilePerm        = "0640"
	DefaultWorkers         = 4
	DefaultQueueSize       = 64
	DefaultShutdownTimeout = 30 * time.Second

	maxChunkSize = 64 << 20
	maxWorkers   = 1024
)

// Default 返回默认配置。
func Default() Settings {
	return Settings{
		Storage: StorageSettings{
			ChunkSize:        DefaultChunkSize,
			DirPerm:          DefaultDirPerm,
			FilePerm:         DefaultFilePerm,
			CompressionLevel: gzip.DefaultCompression,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
		Worker: WorkerSettings{
			Workers:         DefaultWorkers,
			QueueSize:       DefaultQueueSize,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// Validate 校验所有字段，返回的错误合并了全部不合法项并匹配 [ErrInvalidSettings]。
func (s Settings) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: "+format, append([]any{field}, args...)...))
	}

	st := s.Storage
	if st.ChunkSize < 4 || st.ChunkSize > maxChunkSize {
		add("storage.chunk_size", "%d out of 4~%d", st.ChunkSize, maxChunkSize)
	}
	if m, err := ParsePerm(st.DirPerm); err != nil {
		add("storage.dir_perm", "%v", err)
	} else if m&0o100 == 0 {
		add("storage.dir_perm", "%s lacks owner execute bit", st.DirPerm)
	}
	if _, err := ParsePerm(st.FilePerm); err != nil {
		add("storage.file_perm", "%v", err)
	}
	if st.CompressionLevel < gzip.HuffmanOnly || st.CompressionLevel > gzip.BestCompression {
		add("storage.compression_level", "%d out of %d~%d", st.CompressionLevel, gzip.HuffmanOnly, gzip.BestCompression)
	}

	if _, err := xlog.ParseLevel(s.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	if s.Log.Format != "" && s.Log.Format != "text" && s.Log.Format != "json" {
		add("log.format", "%q is not text or json", s.Log.Format)
	}
	if s.Log.MaxSizeMB < 0 || s.Log.MaxBackups < 0 || s.Log.MaxAgeDays < 0 {
		add("log", "rotation limits must not be negative")
	}

	w := s.Worker
	if w.Workers < 1 || w.Workers > maxWorkers {
		add("worker.workers", "%d out of 1~%d", w.Workers, maxWorkers)
	}
	if w.QueueSize < 0 {
		add("worker.queue_size", "%d is negative", w.QueueSize)
	}
	if w.JobTimeout < 0 || w.ShutdownTimeout < 0 {
		add("worker", "timeouts must not be negative")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
}

// ParsePerm 解析八进制权限字符串，只允许 0000~0777。
func ParsePerm(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("permission %q is not octal", s)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("permission %q has bits outside 0777", s)
	}
	return os.FileMode(v), nil
}

// DirMode 返回目录权限，Validate 通过后不会失败。
func (s StorageSettings) DirMode() os.FileMode {
	m, err := ParsePerm(s.DirPerm)
	if err != nil {
		return 0o750
	}
	return m
}

// FileMode 返回文件权限。
func (s StorageSettings) FileMode() os.FileMode {
	m, err := ParsePerm(s.FilePerm)
	if err != nil {
		return 0o640
	}
	return m
}

// RotateConfig 转换为 xlog 的轮转配置。
func (l LogSettings) RotateConfig() xlog.RotateConfig {
	return xlog.RotateConfig{
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}
