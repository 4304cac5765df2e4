package xfile

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c.log")

	require.NoError(t, EnsureDir(target))
	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// 幂等
	require.NoError(t, EnsureDir(target))

	// 当前目录下的文件无需创建
	assert.NoError(t, EnsureDir("plain.log"))
}

func TestEnsureDirWithPerm(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		perm    os.FileMode
		wantErr error
	}{
		{name: "空路径", file: "", perm: 0750, wantErr: ErrEmptyPath},
		{name: "空字节", file: "a\x00b/c", perm: 0750, wantErr: ErrNullByte},
		{name: "缺少执行位", file: "x/y", perm: 0640, wantErr: ErrInvalidPerm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, EnsureDirWithPerm(tt.file, tt.perm), tt.wantErr)
		})
	}

	t.Run("权限生效", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("Windows 不支持 Unix 权限位")
		}
		dir := t.TempDir()
		target := filepath.Join(dir, "p", "f")
		require.NoError(t, EnsureDirWithPerm(target, 0700))
		info, err := os.Stat(filepath.Dir(target))
		require.NoError(t, err)
		// umask 只会去掉位，不会增加
		assert.Zero(t, info.Mode().Perm()&0077)
	})
}

func TestEnsureParent(t *testing.T) {
	root := t.TempDir()

	p, err := ResolveJoin(root, "u1/docs", "a.txt")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = EnsureParent(p, DefaultDirPerm)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err, "并发创建同一目录应当容忍")
	}
	assert.DirExists(t, filepath.Join(root, "u1", "docs"))

	rootPath, err := Resolve(root, ".")
	require.NoError(t, err)
	assert.ErrorIs(t, EnsureParent(rootPath, DefaultDirPerm), ErrInvalidPath)
	assert.ErrorIs(t, EnsureParent(ResolvedPath{}, DefaultDirPerm), ErrEmptyPath)
}
