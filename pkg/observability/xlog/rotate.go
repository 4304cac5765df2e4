package xlog

import (
	"fmt"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

// 轮转默认值。
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 7
	DefaultMaxAgeDays = 30

	maxSizeMBLimit  = 10240
	maxBackupsLimit = 1024
	maxAgeDaysLimit = 3650
)

// RotateConfig 按大小轮转的配置。零值字段使用默认值。
type RotateConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Compress 为 true 时轮转出的备份会被 gzip 压缩。
	Compress  bool
	LocalTime bool
}

func (c RotateConfig) withDefaults() RotateConfig {
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = DefaultMaxSizeMB
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = DefaultMaxBackups
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = DefaultMaxAgeDays
	}
	return c
}

func (c RotateConfig) validate() error {
	switch {
	case c.MaxSizeMB < 0 || c.MaxSizeMB > maxSizeMBLimit:
		return fmt.Errorf("%w: max size %dMB out of 1~%d", ErrInvalidRotate, c.MaxSizeMB, maxSizeMBLimit)
	case c.MaxBackups < 0 || c.MaxBackups > maxBackupsLimit:
		return fmt.Errorf("%w: max backups %d out of 0~%d", ErrInvalidRotate, c.MaxBackups, maxBackupsLimit)
	case c.MaxAgeDays < 0 || c.MaxAgeDays > maxAgeDaysLimit:
		return fmt.Errorf("%w: max age %d days out of 0~%d", ErrInvalidRotate, c.MaxAgeDays, maxAgeDaysLimit)
	}
	return nil
}

// newRotator 规范化文件路径、创建父目录并返回 lumberjack writer。
func newRotator(filename string, cfg RotateConfig) (io.WriteCloser, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	safe, err := xfile.SanitizePath(filename)
	if err != nil {
		return nil, fmt.Errorf("xlog: rotation filename: %w", err)
	}
	if err := xfile.EnsureDir(safe); err != nil {
		return nil, fmt.Errorf("xlog: rotation directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   safe,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}, nil
}
