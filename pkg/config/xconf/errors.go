package xconf

import "errors"

var (
	ErrEmptyPath         = errors.New("xconf: empty config path")
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")
	ErrLoadFailed        = errors.New("xconf: failed to load config")
	ErrParseFailed       = errors.New("xconf: failed to parse config")
	ErrUnmarshalFailed   = errors.New("xconf: failed to unmarshal config")

	// ErrInvalidSettings 表示配置值不合法，具体字段见错误信息。
	ErrInvalidSettings = errors.New("xconf: invalid settings")

	ErrWatchFailed = errors.New("xconf: watch failed")
)
