package xfile

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Resolve 单元测试
// =============================================================================

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		relative string
		want     string
		wantErr  error
		wantKind PathErrorKind
	}{
		{name: "简单文件", root: "/data", relative: "a.txt", want: "/data/a.txt"},
		{name: "多级目录", root: "/data", relative: "u1/docs/a.txt", want: "/data/u1/docs/a.txt"},
		{name: "单点段", root: "/data", relative: "./u1/./a.txt", want: "/data/u1/a.txt"},
		{name: "重复斜杠", root: "/data", relative: "u1//a.txt", want: "/data/u1/a.txt"},
		{name: "双点开头的文件名", root: "/data", relative: "..config", want: "/data/..config"},
		{name: "文件名内含双点", root: "/data", relative: "app..2024.log", want: "/data/app..2024.log"},
		{name: "根目录带尾部斜杠", root: "/data/", relative: "a.txt", want: "/data/a.txt"},
		{name: "根目录需规范化", root: "/data/./x/..", relative: "a.txt", want: "/data/a.txt"},
		{name: "解析为根目录本身", root: "/data", relative: ".", want: "/data"},

		{name: "正斜杠穿越", root: "/data", relative: "a/../../etc/passwd", wantErr: ErrPathTraversal, wantKind: KindTraversal},
		{name: "反斜杠穿越", root: "/data", relative: `a\..\..\etc`, wantErr: ErrPathTraversal, wantKind: KindTraversal},
		{name: "混合分隔符穿越", root: "/data", relative: `a/..\b`, wantErr: ErrPathTraversal, wantKind: KindTraversal},
		{name: "前缀相同的兄弟目录", root: "/data", relative: "../data-evil/x", wantErr: ErrPathTraversal, wantKind: KindTraversal},
		{name: "可被规范化消除的穿越", root: "/data", relative: "a/b/../c", wantErr: ErrPathTraversal, wantKind: KindTraversal},
		{name: "单独的双点", root: "/data", relative: "..", wantErr: ErrPathTraversal, wantKind: KindTraversal},

		{name: "空相对路径", root: "/data", relative: "", wantErr: ErrEmptyPath, wantKind: KindInvalid},
		{name: "空根目录", root: "", relative: "a.txt", wantErr: ErrEmptyPath, wantKind: KindInvalid},
		{name: "绝对路径", root: "/data", relative: "/etc/passwd", wantErr: ErrInvalidPath, wantKind: KindInvalid},
		{name: "Windows 驱动器路径", root: "/data", relative: `C:\Windows`, wantErr: ErrInvalidPath, wantKind: KindInvalid},
		{name: "UNC 路径", root: "/data", relative: `\\server\share`, wantErr: ErrInvalidPath, wantKind: KindInvalid},
		{name: "相对路径含空字节", root: "/data", relative: "a\x00.txt", wantErr: ErrNullByte, wantKind: KindInvalid},
		{name: "根目录含空字节", root: "/da\x00ta", relative: "a.txt", wantErr: ErrNullByte, wantKind: KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.root, tt.relative)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantKind, KindOf(err))
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got.Abs())
			assert.True(t, Within(got.Root(), got.Abs()))
		})
	}
}

func TestResolve_RelativeRoot(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := Resolve("storage", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "storage", "a.txt"), got.Abs())
	assert.Equal(t, filepath.Join(wd, "storage"), got.Root())
}

func TestResolveJoin(t *testing.T) {
	t.Run("目录加文件名", func(t *testing.T) {
		got, err := ResolveJoin("/data", "u1/docs", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/data/u1/docs/a.txt"), got.Abs())
		assert.Equal(t, filepath.FromSlash("u1/docs/a.txt"), got.Rel())
	})

	t.Run("空目录被忽略", func(t *testing.T) {
		got, err := ResolveJoin("/data", "", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/data/a.txt"), got.Abs())
	})

	t.Run("文件名中的穿越", func(t *testing.T) {
		_, err := ResolveJoin("/data", "u1", "../../etc/passwd")
		assert.ErrorIs(t, err, ErrPathTraversal)
	})

	t.Run("目录中的穿越", func(t *testing.T) {
		_, err := ResolveJoin("/data", "u1/..", "a.txt")
		assert.ErrorIs(t, err, ErrPathTraversal)
	})

	t.Run("文件名为绝对路径", func(t *testing.T) {
		_, err := ResolveJoin("/data", "u1", "/etc/passwd")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("全部为空", func(t *testing.T) {
		_, err := ResolveJoin("/data", "", "")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})
}

func TestWithin(t *testing.T) {
	tests := []struct {
		root, path string
		want       bool
	}{
		{"/data", "/data", true},
		{"/data", "/data/a", true},
		{"/data/", "/data/a/b", true},
		{"/data", "/data-evil/x", false},
		{"/data", "/dat", false},
		{"/data", "/", false},
		{"/", "/etc", true},
		{"/data", "/data/../etc", false},
		{"", "/data", false},
		{"/data", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Within(filepath.FromSlash(tt.root), filepath.FromSlash(tt.path)), "Within(%q, %q)", tt.root, tt.path)
	}
}

func TestResolvedPath_Accessors(t *testing.T) {
	p, err := Resolve("/data", "u1/a.txt")
	require.NoError(t, err)

	assert.Equal(t, filepath.FromSlash("/data/u1"), p.Dir())
	assert.Equal(t, "a.txt", p.Base())
	assert.Equal(t, p.Abs(), p.String())
	assert.False(t, p.IsRoot())

	root, err := Resolve("/data", ".")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	assert.Equal(t, ".", root.Rel())

	var zero ResolvedPath
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsRoot())
}

func TestResolvedPath_WithSuffix(t *testing.T) {
	p, err := Resolve("/data", "u1/a.txt")
	require.NoError(t, err)

	gz, err := p.WithSuffix(".gz")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/data/u1/a.txt.gz"), gz.Abs())
	assert.Equal(t, p.Root(), gz.Root())

	same, err := p.WithSuffix("")
	require.NoError(t, err)
	assert.Equal(t, p, same)

	for _, bad := range []string{"/x", `\x`, "\x00"} {
		_, err := p.WithSuffix(bad)
		assert.Error(t, err, "suffix %q", bad)
	}

	root, err := Resolve("/data", ".")
	require.NoError(t, err)
	_, err = root.WithSuffix(".gz")
	assert.ErrorIs(t, err, ErrPathEscaped)

	var zero ResolvedPath
	_, err = zero.WithSuffix(".gz")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindNone, KindOf(errors.New("other")))
	assert.Equal(t, KindInvalid, KindOf(ErrSymlinkResolution))
	assert.Equal(t, "traversal", KindTraversal.String())
	assert.Equal(t, "escape", KindEscape.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "none", KindNone.String())
}

// =============================================================================
// 符号链接
// =============================================================================

func TestResolveWithOptions_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("符号链接需要特权")
	}

	outside := t.TempDir()
	root := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "evil")))
	require.NoError(t, os.Mkdir(filepath.Join(root, "inner"), 0o750))
	require.NoError(t, os.Symlink(filepath.Join(root, "inner"), filepath.Join(root, "alias")))

	t.Run("不解析时指向外部的链接通过", func(t *testing.T) {
		_, err := Resolve(root, "evil/secret")
		assert.NoError(t, err)
	})

	t.Run("解析后越界被拒绝", func(t *testing.T) {
		_, err := ResolveWithOptions(root, "evil/secret", ResolveOptions{ResolveSymlinks: true})
		assert.ErrorIs(t, err, ErrPathEscaped)
		assert.Equal(t, KindEscape, KindOf(err))
	})

	t.Run("指向内部的链接允许", func(t *testing.T) {
		got, err := ResolveWithOptions(root, "alias/new/file.txt", ResolveOptions{ResolveSymlinks: true})
		require.NoError(t, err)
		realRoot, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(realRoot, "inner", "new", "file.txt"), got.Abs())
		assert.Equal(t, realRoot, got.Root())
	})

	t.Run("最后一段是链接时不跟随", func(t *testing.T) {
		got, err := ResolveWithOptions(root, "evil", ResolveOptions{ResolveSymlinks: true})
		require.NoError(t, err)
		realRoot, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(realRoot, "evil"), got.Abs())
	})

	t.Run("链接指向根目录本身", func(t *testing.T) {
		require.NoError(t, os.Symlink(root, filepath.Join(root, "self")))
		got, err := ResolveWithOptions(root, "self/x.txt", ResolveOptions{ResolveSymlinks: true})
		require.NoError(t, err)
		assert.Equal(t, "x.txt", got.Rel())
	})

	t.Run("根目录尚不存在", func(t *testing.T) {
		missing := filepath.Join(root, "not-yet", "root")
		got, err := ResolveJoinWithOptions(missing, ResolveOptions{ResolveSymlinks: true}, "a", "b.txt")
		require.NoError(t, err)
		assert.True(t, Within(got.Root(), got.Abs()))
	})
}

func TestRealPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("符号链接需要特权")
	}
	outside := t.TempDir()
	root := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "out")))

	realOutside, err := filepath.EvalSymlinks(outside)
	require.NoError(t, err)
	got, err := RealPath(filepath.Join(root, "out", "new"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realOutside, "new"), got)
}

func TestEvalSymlinksPartial_Missing(t *testing.T) {
	dir := t.TempDir()
	real, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	got, err := evalSymlinksPartial(filepath.Join(dir, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(real, "a", "b", "c.txt"), got)
}

// =============================================================================
// SanitizePath
// =============================================================================

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "绝对路径", input: "/var/log/app.log", want: "/var/log/app.log"},
		{name: "相对路径", input: "logs/app.log", want: "logs/app.log"},
		{name: "规范化", input: "/var/./log//app.log", want: "/var/log/app.log"},
		{name: "空路径", input: "", wantErr: ErrEmptyPath},
		{name: "目录路径", input: "/var/log/", wantErr: ErrInvalidPath},
		{name: "穿越", input: "../etc/passwd", wantErr: ErrPathTraversal},
		{name: "空字节", input: "a\x00b", wantErr: ErrNullByte},
		{name: "当前目录", input: ".", wantErr: ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestWithin_RelError(t *testing.T) {
	orig := filepathRelFn
	filepathRelFn = func(string, string) (string, error) { return "", errors.New("rel failed") }
	t.Cleanup(func() { filepathRelFn = orig })

	assert.False(t, Within("/data", "/data/a"))
	assert.True(t, Within("/data", "/data"), "相等时无需 Rel")
}

func TestWithin_RelativeRoot(t *testing.T) {
	assert.False(t, Within("..", "../../x"))
	assert.True(t, Within("..", "../x"))
}
