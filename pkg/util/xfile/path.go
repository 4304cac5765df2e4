package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// containsNullByte 检测路径是否包含空字节。
func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// isWindowsAbsPath 检测 Windows 风格的绝对或驱动器相关路径。
// 非 Windows 平台上 filepath.IsAbs 不识别 "C:\..."、"C:foo"、"\\server\..." 与 "\foo"，
// 这里显式拒绝，保证同一份输入在各平台上的判定一致。
func isWindowsAbsPath(path string) bool {
	if len(path) >= 2 && isASCIILetter(path[0]) && path[1] == ':' {
		return true
	}
	return len(path) >= 1 && path[0] == '\\'
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// 逐字符扫描，'/' 与 '\' 都视为分隔符，不分配内存。
// "..config"、"a..b" 之类的合法文件名不会被误判。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// ResolvedPath 是经过根目录约束校验的绝对路径。
//
// 零值不可用；只能通过 [Resolve]、[ResolveJoin] 或 [ResolveWithOptions] 得到，
// 因此持有 ResolvedPath 即意味着它已通过穿越检测与边界检查。
type ResolvedPath struct {
	abs  string
	root string
}

// Abs 返回规范化后的绝对路径。
func (p ResolvedPath) Abs() string { return p.abs }

// Root 返回校验时使用的规范化根目录。
func (p ResolvedPath) Root() string { return p.root }

// String 实现 fmt.Stringer。
func (p ResolvedPath) String() string { return p.abs }

// IsZero 报告是否为未经 Resolve 构造的零值。
func (p ResolvedPath) IsZero() bool { return p.abs == "" }

// IsRoot 报告路径是否就是根目录本身。
func (p ResolvedPath) IsRoot() bool { return p.abs != "" && p.abs == p.root }

// Rel 返回相对根目录的路径，根目录本身返回 "."。
func (p ResolvedPath) Rel() string {
	rel, err := filepath.Rel(p.root, p.abs)
	if err != nil {
		return p.abs
	}
	return rel
}

// Dir 返回父目录的绝对路径。
func (p ResolvedPath) Dir() string { return filepath.Dir(p.abs) }

// Base 返回最后一个路径元素。
func (p ResolvedPath) Base() string { return filepath.Base(p.abs) }

// WithSuffix 在文件名末尾追加后缀，得到同目录下的兄弟路径（如 "a.txt" -> "a.txt.gz"）。
//
// 后缀不允许包含分隔符、空字节或 ".."，结果会重新做边界检查。
func (p ResolvedPath) WithSuffix(suffix string) (ResolvedPath, error) {
	if p.IsZero() {
		return ResolvedPath{}, fmt.Errorf("suffix on unresolved path: %w", ErrEmptyPath)
	}
	if suffix == "" {
		return p, nil
	}
	if containsNullByte(suffix) {
		return ResolvedPath{}, fmt.Errorf("suffix contains null byte: %w", ErrNullByte)
	}
	if strings.ContainsAny(suffix, `/\`) || hasDotDotSegment(suffix) {
		return ResolvedPath{}, fmt.Errorf("suffix %q must be a plain name fragment: %w", suffix, ErrInvalidPath)
	}
	if p.IsRoot() {
		return ResolvedPath{}, fmt.Errorf("cannot derive sibling of root: %w", ErrPathEscaped)
	}
	next := p.abs + suffix
	if !Within(p.root, next) {
		return ResolvedPath{}, ErrPathEscaped
	}
	return ResolvedPath{abs: next, root: p.root}, nil
}

// ResolveOptions 路径解析选项
type ResolveOptions struct {
	// ResolveSymlinks 为 true 时，根目录与目标父目录中已存在的部分会经
	// filepath.EvalSymlinks 解析，并对真实路径再次做边界检查。
	// 最后一段不跟随：指向它的操作作用于链接本身。
	// 根目录允许尚不存在（此时按最深可解析祖先处理）。
	ResolveSymlinks bool
}

// Resolve 将调用方提供的相对路径约束到 root 之下。
//
// 校验顺序：
//  1. 在任何规范化之前，按 '/' 与 '\' 切分原始输入，任何段恰为 ".." 即返回 [ErrPathTraversal]
//  2. 空输入、空字节、绝对路径（含 Windows 形式）返回 Invalid 类错误
//  3. 规范化后拼接到 root 的规范化绝对路径之下
//  4. 结果必须等于 root，或以 root 加分隔符为前缀，否则返回 [ErrPathEscaped]
//
// 本函数只做字符串层面的校验，不访问文件系统，因此不识别根目录内指向外部的符号链接。
// 处理不可信请求时应使用 [ResolveWithOptions] 并开启 ResolveSymlinks。
//
//	Resolve("/data", "a/b.txt")            // -> /data/a/b.txt
//	Resolve("/data", "a/../../etc/passwd") // -> ErrPathTraversal
//	Resolve("/data", "/etc/passwd")        // -> ErrInvalidPath
func Resolve(root, relative string) (ResolvedPath, error) {
	return ResolveWithOptions(root, relative, ResolveOptions{})
}

// ResolveJoin 依次校验每个原始元素后再拼接解析，用于组合 "目录 + 文件名"。
// 空元素会被忽略，但至少需要一个非空元素。
func ResolveJoin(root string, elems ...string) (ResolvedPath, error) {
	return resolve(root, elems, ResolveOptions{})
}

// ResolveJoinWithOptions 是带选项的 [ResolveJoin]。
func ResolveJoinWithOptions(root string, opts ResolveOptions, elems ...string) (ResolvedPath, error) {
	return resolve(root, elems, opts)
}

// ResolveWithOptions 是带选项的 [Resolve]。
//
// 检查与实际 open/write 之间存在 TOCTOU 窗口；需要更强保证时应配合
// 根目录的权限控制（禁止不可信方在根目录内创建符号链接）。
func ResolveWithOptions(root, relative string, opts ResolveOptions) (ResolvedPath, error) {
	return resolve(root, []string{relative}, opts)
}

func resolve(root string, elems []string, opts ResolveOptions) (ResolvedPath, error) {
	absRoot, err := normalizeRoot(root)
	if err != nil {
		return ResolvedPath{}, err
	}

	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		if e == "" {
			continue
		}
		if err := checkRelative(e); err != nil {
			return ResolvedPath{}, err
		}
		parts = append(parts, e)
	}
	if len(parts) == 0 {
		return ResolvedPath{}, fmt.Errorf("relative path is required: %w", ErrEmptyPath)
	}

	joined := filepath.Join(append([]string{absRoot}, parts...)...)
	if !Within(absRoot, joined) {
		return ResolvedPath{}, ErrPathEscaped
	}

	if opts.ResolveSymlinks {
		return resolveSymlinks(absRoot, joined)
	}
	return ResolvedPath{abs: joined, root: absRoot}, nil
}

// normalizeRoot 校验根目录并返回其规范化绝对路径。
func normalizeRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("root directory is required: %w", ErrEmptyPath)
	}
	if containsNullByte(root) {
		return "", fmt.Errorf("root contains null byte: %w", ErrNullByte)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("root %q: %w: %w", root, ErrInvalidPath, err)
	}
	return abs, nil
}

// checkRelative 校验单个原始相对路径元素，必须在规范化之前调用。
func checkRelative(rel string) error {
	if containsNullByte(rel) {
		return fmt.Errorf("path contains null byte: %w", ErrNullByte)
	}
	if hasDotDotSegment(rel) {
		return fmt.Errorf("%q: %w", rel, ErrPathTraversal)
	}
	if filepath.IsAbs(rel) || isWindowsAbsPath(rel) || strings.HasPrefix(rel, "/") {
		return fmt.Errorf("%q must be relative: %w", rel, ErrInvalidPath)
	}
	return nil
}

// Within 报告 path 是否等于 root 或位于 root 之内。
//
// 比较基于 filepath.Clean 后的路径，前缀必须在分隔符处对齐：
// root "/data" 不包含 "/data-evil/x"。
func Within(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	// 相对 root（如 ".."）下字符串前缀不足以判定，再用 Rel 复核
	rel, err := filepathRelFn(root, path)
	return err == nil && !hasDotDotSegment(rel)
}

// filepathRelFn 默认为 filepath.Rel，测试中可注入以覆盖错误分支。
var filepathRelFn = filepath.Rel

// resolveSymlinks 解析符号链接并验证真实路径仍在真实根目录内。
func resolveSymlinks(absRoot, joined string) (ResolvedPath, error) {
	realRoot, err := evalSymlinksPartial(absRoot)
	if err != nil {
		return ResolvedPath{}, fmt.Errorf("resolve root symlinks: %w: %w", ErrSymlinkResolution, err)
	}
	realJoined := realRoot
	if joined != absRoot {
		realDir, err := evalSymlinksPartial(filepath.Dir(joined))
		if err != nil {
			return ResolvedPath{}, fmt.Errorf("resolve path symlinks: %w: %w", ErrSymlinkResolution, err)
		}
		realJoined = filepath.Join(realDir, filepath.Base(joined))
	}
	if !Within(realRoot, realJoined) {
		return ResolvedPath{}, fmt.Errorf("resolved path leaves root: %w", ErrPathEscaped)
	}
	return ResolvedPath{abs: realJoined, root: realRoot}, nil
}

// RealPath 返回 path 的真实绝对路径。已存在的部分解析符号链接，
// 不存在的尾部段按原样拼回。
func RealPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%q: %w: %w", path, ErrInvalidPath, err)
	}
	resolved, err := evalSymlinksPartial(abs)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w: %w", ErrSymlinkResolution, err)
	}
	return resolved, nil
}

// maxSymlinkDepth 是 evalSymlinksPartial 向上查找可解析祖先时的最大层数。
const maxSymlinkDepth = 255

// evalSymlinksPartial 尽可能解析符号链接。
// 对于不存在的路径，解析其最深的已存在祖先，再把缺失的段按原顺序拼回。
func evalSymlinksPartial(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	var trail []string
	current := filepath.Clean(path)
	for i := 0; ; i++ {
		if i > maxSymlinkDepth {
			return "", ErrPathTooDeep
		}

		dir := filepath.Dir(current)
		if dir == current {
			return "", ErrPathTooDeep
		}
		trail = append(trail, filepath.Base(current))

		resolved, err = filepath.EvalSymlinks(dir)
		if err == nil {
			for j := len(trail) - 1; j >= 0; j-- {
				resolved = filepath.Join(resolved, trail[j])
			}
			return resolved, nil
		}
		current = dir
	}
}

// SanitizePath 对本地配置的文件路径（如日志文件）做格式净化。
//
// 仅拒绝空路径、空字节、".." 段与目录形式（尾随分隔符），允许绝对路径。
// 不做根目录约束；来自请求的不可信路径应使用 [Resolve]。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	// 必须在 Clean 之前检查，Clean 会去掉尾部分隔符
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}
	if hasDotDotSegment(filename) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}
	cleaned := filepath.Clean(filename)
	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}
	return cleaned, nil
}
