package xfile

import "errors"

var (
	// ErrEmptyPath 表示必需的路径参数（根目录或相对路径）为空。
	ErrEmptyPath = errors.New("xfile: path is required")

	// ErrInvalidPath 表示路径格式无效（如相对路径位置传入了绝对路径、目录路径等）。
	ErrInvalidPath = errors.New("xfile: invalid path")

	// ErrPathTraversal 表示原始输入中存在 ".." 路径段。
	ErrPathTraversal = errors.New("xfile: path traversal detected")

	// ErrPathEscaped 表示规范化后的路径不在根目录边界之内。
	ErrPathEscaped = errors.New("xfile: path escapes root directory")

	// ErrPathTooDeep 表示路径层级过深，无法完成符号链接解析。
	ErrPathTooDeep = errors.New("xfile: path too deep")

	// ErrSymlinkResolution 表示符号链接解析失败。
	ErrSymlinkResolution = errors.New("xfile: symlink resolution failed")

	// ErrNullByte 表示路径中包含空字节（\x00）。
	// Linux 内核会在空字节处截断路径，Go 代码与操作系统看到的路径将不一致。
	ErrNullByte = errors.New("xfile: path contains null byte")

	// ErrInvalidPerm 表示目录权限无效（如缺少所有者执行位，目录无法遍历）。
	ErrInvalidPerm = errors.New("xfile: invalid directory permission")
)

// PathErrorKind 是路径校验失败的分类。
type PathErrorKind uint8

const (
	// KindNone 表示不是路径校验错误。
	KindNone PathErrorKind = iota
	// KindInvalid 表示输入为空或格式错误。
	KindInvalid
	// KindTraversal 表示原始输入包含 ".." 段。
	KindTraversal
	// KindEscape 表示规范化后的路径越出根目录。
	KindEscape
)

// String 返回分类名称。
func (k PathErrorKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindTraversal:
		return "traversal"
	case KindEscape:
		return "escape"
	default:
		return "none"
	}
}

// KindOf 将 Resolve 系列函数返回的错误映射为分类。
// 非本包错误返回 KindNone。
func KindOf(err error) PathErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrPathTraversal):
		return KindTraversal
	case errors.Is(err, ErrPathEscaped):
		return KindEscape
	case errors.Is(err, ErrEmptyPath),
		errors.Is(err, ErrNullByte),
		errors.Is(err, ErrInvalidPath),
		errors.Is(err, ErrSymlinkResolution),
		errors.Is(err, ErrPathTooDeep):
		return KindInvalid
	default:
		return KindNone
	}
}
