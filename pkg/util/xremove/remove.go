package xremove

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

// Outcome 区分实际删除与目标本就不存在。
type Outcome uint8

const (
	// OutcomeRemoved 表示目标存在并已删除。
	OutcomeRemoved Outcome = iota + 1
	// OutcomeAlreadyAbsent 表示目标不存在，未做任何修改。
	OutcomeAlreadyAbsent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRemoved:
		return "removed"
	case OutcomeAlreadyAbsent:
		return "already_absent"
	default:
		return "unknown"
	}
}

// MarshalText 让 Outcome 在 JSON 中以名称出现。
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// RemovalMetadata 描述一次删除。
type RemovalMetadata struct {
	RemovedPath  string  `json:"removed_path"`
	WasDirectory bool    `json:"was_directory"`
	EntryCount   uint32  `json:"entry_count"`
	Outcome      Outcome `json:"outcome"`
}

// Remove 删除 p。
//
// 目标不存在时返回 OutcomeAlreadyAbsent，WasDirectory=false、EntryCount=0。
// 目录且 recursive=false 时返回 [ErrIsDirectory]；recursive=true 时删除整棵子树，
// EntryCount 为子树中的条目数（文件与子目录，不含目录本身）。
// 递归过程中失败或 ctx 被取消时返回 [*PartialError]。
func Remove(ctx context.Context, p xfile.ResolvedPath, recursive bool) (RemovalMetadata, error) {
	if p.IsZero() {
		return RemovalMetadata{}, ErrInvalidPath
	}
	if p.IsRoot() {
		return RemovalMetadata{}, ErrRemoveRoot
	}
	if err := ctx.Err(); err != nil {
		return RemovalMetadata{}, fmt.Errorf("xremove: canceled: %w", err)
	}

	md := RemovalMetadata{RemovedPath: p.Abs()}

	info, err := os.Lstat(p.Abs())
	if errors.Is(err, fs.ErrNotExist) {
		md.Outcome = OutcomeAlreadyAbsent
		return md, nil
	}
	if err != nil {
		return RemovalMetadata{}, fmt.Errorf("%w: stat: %w", ErrIO, err)
	}

	if !info.IsDir() {
		if err := removeFn(p.Abs()); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				md.Outcome = OutcomeAlreadyAbsent
				return md, nil
			}
			return RemovalMetadata{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
		md.Outcome = OutcomeRemoved
		return md, nil
	}

	if !recursive {
		return RemovalMetadata{}, ErrIsDirectory
	}

	w := &walker{ctx: ctx}
	if err := w.removeTree(p.Abs()); err != nil {
		return RemovalMetadata{}, &PartialError{Removed: w.count, Path: w.failedAt, Err: err}
	}
	md.WasDirectory = true
	md.EntryCount = w.count
	md.Outcome = OutcomeRemoved
	return md, nil
}

// removeFn 删除单个条目，测试中可替换以模拟中途失败。
var removeFn = os.Remove

// walker 深度优先地删除目录树并计数。
type walker struct {
	ctx      context.Context
	count    uint32
	failedAt string
}

func (w *walker) removeTree(dir string) error {
	if err := w.removeContents(dir); err != nil {
		return err
	}
	if err := removeFn(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.failedAt = dir
		return err
	}
	return nil
}

// removeContents 删除 dir 下的全部条目，每删除一个计数一次。
func (w *walker) removeContents(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.failedAt = dir
		return err
	}
	for _, e := range entries {
		if err := w.ctx.Err(); err != nil {
			w.failedAt = dir
			return err
		}
		child := filepath.Join(dir, e.Name())
		// DirEntry.IsDir 不跟随符号链接，指向目录的链接按普通条目删除
		if e.IsDir() {
			if err := w.removeContents(child); err != nil {
				return err
			}
		}
		if err := removeFn(child); err != nil && !errors.Is(err, fs.ErrNotExist) {
			w.failedAt = child
			return err
		}
		w.inc()
	}
	return nil
}

func (w *walker) inc() {
	if w.count < math.MaxUint32 {
		w.count++
	}
}
