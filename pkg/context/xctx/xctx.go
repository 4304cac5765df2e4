package xctx

import "errors"

// contextKey 是包私有的 context key 类型。
type contextKey string

const (
	keyJobID     = contextKey("xctx:job_id")
	keyOperation = contextKey("xctx:operation")
)

// 日志属性 key。
const (
	KeyJobID     = "job_id"
	KeyOperation = "operation"
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"

	// jobFieldCount 作业字段数量（用于 slog 属性预分配）
	jobFieldCount = 2
)

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrMissingJobID 表示 context 中没有作业 ID。
	ErrMissingJobID = errors.New("xctx: missing job_id")
)
