package xremove

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

func resolve(t *testing.T, root, rel string) xfile.ResolvedPath {
	t.Helper()
	p, err := xfile.Resolve(root, rel)
	require.NoError(t, err)
	return p
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o640))
}

// failRemoveAfter 替换 removeFn，在成功 n 次后对后续删除返回错误。
// 修改包级变量，调用它的用例不能 t.Parallel()。
func failRemoveAfter(t *testing.T, n int) {
	t.Helper()
	orig := removeFn
	removeFn = func(name string) error {
		if n <= 0 {
			return &os.PathError{Op: "remove", Path: name, Err: errors.New("simulated failure")}
		}
		n--
		return orig(name)
	}
	t.Cleanup(func() { removeFn = orig })
}

func TestRemove_File(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	p := resolve(t, root, "a.txt")

	md, err := Remove(context.Background(), p, false)
	require.NoError(t, err)
	assert.Equal(t, RemovalMetadata{RemovedPath: p.Abs(), Outcome: OutcomeRemoved}, md)
	assert.NoFileExists(t, p.Abs())
}

func TestRemove_AlreadyAbsent(t *testing.T) {
	root := t.TempDir()
	p := resolve(t, root, "never/existed.txt")

	md, err := Remove(context.Background(), p, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAbsent, md.Outcome)
	assert.False(t, md.WasDirectory)
	assert.Zero(t, md.EntryCount)
	assert.Equal(t, p.Abs(), md.RemovedPath)
}

func TestRemove_DirectoryWithThreeFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		touch(t, filepath.Join(root, "dir", name))
	}
	p := resolve(t, root, "dir")

	md, err := Remove(context.Background(), p, true)
	require.NoError(t, err)
	assert.True(t, md.WasDirectory)
	assert.Equal(t, uint32(3), md.EntryCount)
	assert.Equal(t, OutcomeRemoved, md.Outcome)
	assert.NoDirExists(t, p.Abs())
}

func TestRemove_Idempotent(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "sub/b", "sub/deeper/c"} {
		touch(t, filepath.Join(root, "tree", name))
	}
	p := resolve(t, root, "tree")

	first, err := Remove(context.Background(), p, true)
	require.NoError(t, err)
	// a、sub、sub/b、sub/deeper、sub/deeper/c
	assert.Equal(t, uint32(5), first.EntryCount)

	second, err := Remove(context.Background(), p, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAbsent, second.Outcome)
	assert.Zero(t, second.EntryCount)
	assert.False(t, second.WasDirectory)
}

func TestRemove_EmptyDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0o750))
	p := resolve(t, root, "empty")

	md, err := Remove(context.Background(), p, true)
	require.NoError(t, err)
	assert.True(t, md.WasDirectory)
	assert.Zero(t, md.EntryCount)
	assert.NoDirExists(t, p.Abs())
}

func TestRemove_DirectoryNotRecursive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "dir", "a"))
	p := resolve(t, root, "dir")

	_, err := Remove(context.Background(), p, false)
	require.ErrorIs(t, err, ErrIsDirectory)
	assert.FileExists(t, filepath.Join(root, "dir", "a"))
}

func TestRemove_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("符号链接需要特权")
	}
	root := t.TempDir()
	outside := t.TempDir()
	touch(t, filepath.Join(outside, "keep.txt"))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o750))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "dir", "link")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "toplink")))

	t.Run("目录中的链接不被跟随", func(t *testing.T) {
		md, err := Remove(context.Background(), resolve(t, root, "dir"), true)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), md.EntryCount)
		assert.FileExists(t, filepath.Join(outside, "keep.txt"))
	})

	t.Run("链接本身作为目标", func(t *testing.T) {
		md, err := Remove(context.Background(), resolve(t, root, "toplink"), false)
		require.NoError(t, err)
		assert.False(t, md.WasDirectory)
		assert.FileExists(t, filepath.Join(outside, "keep.txt"))
		_, err = os.Lstat(filepath.Join(root, "toplink"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRemove_Partial(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		touch(t, filepath.Join(root, "dir", name))
	}
	p := resolve(t, root, "dir")

	failRemoveAfter(t, 2)

	_, err := Remove(context.Background(), p, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartial)

	var pe *PartialError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, uint32(2), pe.Removed)
	assert.Contains(t, pe.Error(), "after 2 entries")
	assert.DirExists(t, p.Abs())

	entries, err := os.ReadDir(p.Abs())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRemove_FileFailure(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	failRemoveAfter(t, 0)

	_, err := Remove(context.Background(), resolve(t, root, "a.txt"), false)
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrPartial)
}

func TestRemove_CanceledMidway(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		touch(t, filepath.Join(root, "dir", name))
	}
	p := resolve(t, root, "dir")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orig := removeFn
	removeFn = func(name string) error {
		cancel()
		return orig(name)
	}
	t.Cleanup(func() { removeFn = orig })

	_, err := Remove(ctx, p, true)
	var pe *PartialError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint32(1), pe.Removed)
}

func TestRemove_Guards(t *testing.T) {
	root := t.TempDir()

	_, err := Remove(context.Background(), xfile.ResolvedPath{}, true)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = Remove(context.Background(), resolve(t, root, "."), true)
	assert.ErrorIs(t, err, ErrRemoveRoot)
	assert.DirExists(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Remove(ctx, resolve(t, root, "x"), true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemovalMetadata_JSON(t *testing.T) {
	data, err := json.Marshal(RemovalMetadata{RemovedPath: "/data/x", WasDirectory: true, EntryCount: 3, Outcome: OutcomeRemoved})
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed_path":"/data/x","was_directory":true,"entry_count":3,"outcome":"removed"}`, string(data))

	assert.Equal(t, "already_absent", OutcomeAlreadyAbsent.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}
