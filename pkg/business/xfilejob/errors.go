package xfilejob

import (
	"errors"
	"fmt"
)

// =============================================================================
// 请求错误
// =============================================================================

var (
	// ErrInvalidRequest 表示请求未通过结构校验，具体字段见 [ValidationError]。
	ErrInvalidRequest = errors.New("xfilejob: invalid request")

	// ErrNoRoot 表示既没有配置根目录，请求也未携带根目录。
	ErrNoRoot = errors.New("xfilejob: no root directory configured")

	// ErrRootOutside 表示请求根目录不在配置的根目录之内。
	ErrRootOutside = errors.New("xfilejob: requested root is outside the configured root")

	// ErrPermissionDenied 表示权限检查未通过。
	ErrPermissionDenied = errors.New("xfilejob: insufficient permissions")

	// ErrUnknownOperation 表示作业的 operation 不是 save 或 remove。
	ErrUnknownOperation = errors.New("xfilejob: unknown operation")

	// ErrInternal 表示处理过程中发生 panic。
	ErrInternal = errors.New("xfilejob: internal error")
)

// =============================================================================
// 配置错误
// =============================================================================

var (
	// ErrInvalidConfig 表示 [Config] 字段超出允许范围。
	ErrInvalidConfig = errors.New("xfilejob: invalid config")

	// ErrNilHandler 表示创建 Dispatcher 时未提供 Handler。
	ErrNilHandler = errors.New("xfilejob: nil handler")

	// ErrNilEmitter 表示创建 Dispatcher 时未提供结果回调。
	ErrNilEmitter = errors.New("xfilejob: nil result emitter")
)

// ValidationError 描述一个不合法的请求字段。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("xfilejob: invalid request: %s: %s", e.Field, e.Reason)
}

// Unwrap 返回 [ErrInvalidRequest]。
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
