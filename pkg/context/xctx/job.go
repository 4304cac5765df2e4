package xctx

import (
	"context"

	"github.com/google/uuid"
)

// WithJobID 将作业 ID 注入 context。
func WithJobID(ctx context.Context, id string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyJobID, id), nil
}

// JobID 返回 context 中的作业 ID，不存在返回空字符串。
func JobID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyJobID).(string); ok {
		return v
	}
	return ""
}

// RequireJobID 返回作业 ID，缺失时返回 [ErrMissingJobID]。
func RequireJobID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	if v := JobID(ctx); v != "" {
		return v, nil
	}
	return "", ErrMissingJobID
}

// EnsureJobID 确保 context 中有作业 ID：已有则原样返回，否则生成随机 UUID 注入。
func EnsureJobID(ctx context.Context) (context.Context, string, error) {
	if ctx == nil {
		return nil, "", ErrNilContext
	}
	if v := JobID(ctx); v != "" {
		return ctx, v, nil
	}
	id := uuid.NewString()
	ctx, err := WithJobID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return ctx, id, nil
}

// WithOperation 将操作名注入 context。
func WithOperation(ctx context.Context, op string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyOperation, op), nil
}

// Operation 返回 context 中的操作名，不存在返回空字符串。
func Operation(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyOperation).(string); ok {
		return v
	}
	return ""
}

// WithJob 一次注入作业 ID 与操作名，空值跳过。
func WithJob(ctx context.Context, id, op string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if id != "" {
		ctx = context.WithValue(ctx, keyJobID, id)
	}
	if op != "" {
		ctx = context.WithValue(ctx, keyOperation, op)
	}
	return ctx, nil
}
