package xconf

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	calls []Settings
	errs  []error
}

func (r *recorder) callback(s Settings, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
	r.errs = append(r.errs, err)
}

func (r *recorder) last() (Settings, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Settings{}, 0, nil
	}
	return r.calls[len(r.calls)-1], len(r.calls), r.errs[len(r.errs)-1]
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	var rec recorder
	w, err := Watch(path, rec.callback, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	w.Start()
	w.Start()
	defer func() { require.NoError(t, w.Stop()) }()

	// 其他文件的变更被忽略
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	require.Eventually(t, func() bool {
		s, n, err := rec.last()
		return n > 0 && err == nil && s.Log.Level == "debug"
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	var rec recorder
	w, err := Watch(path, rec.callback, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	w.Start()
	defer func() { _ = w.Stop() }()

	tmp := filepath.Join(dir, ".job.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"worker":{"workers":2}}`), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		s, n, err := rec.last()
		return n > 0 && err == nil && s.Worker.Workers == 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_InvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	var rec recorder
	w, err := Watch(path, rec.callback, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	w.Start()
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("worker:\n  workers: 0\n"), 0o600))
	require.Eventually(t, func() bool {
		_, n, err := rec.last()
		return n > 0 && err != nil
	}, 3*time.Second, 10*time.Millisecond)

	_, _, err = rec.last()
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestWatch_Errors(t *testing.T) {
	_, err := Watch("", nil)
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = Watch("/tmp/job.ini", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Watch(filepath.Join(t.TempDir(), "missing-dir", "job.yaml"), nil)
	assert.ErrorIs(t, err, ErrWatchFailed)
}

func TestWatch_StopWithoutStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	w, err := Watch(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	w.Start()
}
