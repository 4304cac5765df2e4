package xfilejob

import (
	"context"
	"errors"

	"github.com/omeyang/xfilekit/pkg/util/xchunk"
	"github.com/omeyang/xfilekit/pkg/util/xcompress"
	"github.com/omeyang/xfilekit/pkg/util/xfile"
	"github.com/omeyang/xfilekit/pkg/util/xremove"
)

// Kind 错误分类，随结果一起返回，调用方据此决定是否重试。
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindPathInvalid    Kind = "path_invalid"
	KindPathTraversal  Kind = "path_traversal"
	KindPathEscape     Kind = "path_escape"
	KindPermission     Kind = "permission"
	KindDecode         Kind = "decode"
	KindIO             Kind = "io"
	KindIsDirectory    Kind = "is_directory"
	KindPartial        Kind = "partial"
	KindCanceled       Kind = "canceled"
	KindInternal       Kind = "internal"
)

// Classify 将错误映射为 [Kind]，nil 返回空串。
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	// Partial 与 Decode 可能同时包装底层 I/O 或取消错误，先判断
	switch {
	case errors.Is(err, xremove.ErrPartial):
		return KindPartial
	case errors.Is(err, xchunk.ErrDecode):
		return KindDecode
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnknownOperation):
		return KindInvalidRequest
	case errors.Is(err, ErrPermissionDenied):
		return KindPermission
	case errors.Is(err, xremove.ErrIsDirectory):
		return KindIsDirectory
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, xchunk.ErrIO), errors.Is(err, xcompress.ErrIO), errors.Is(err, xremove.ErrIO):
		return KindIO
	case errors.Is(err, ErrInternal):
		return KindInternal
	}
	switch xfile.KindOf(err) {
	case xfile.KindTraversal:
		return KindPathTraversal
	case xfile.KindEscape:
		return KindPathEscape
	case xfile.KindInvalid:
		return KindPathInvalid
	}
	if errors.Is(err, ErrNoRoot) || errors.Is(err, ErrRootOutside) ||
		errors.Is(err, xremove.ErrRemoveRoot) || errors.Is(err, xchunk.ErrInvalidDestination) {
		return KindPathInvalid
	}
	return KindInternal
}
