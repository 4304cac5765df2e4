package xfilejob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/omeyang/xfilekit/pkg/context/xctx"
	"github.com/omeyang/xfilekit/pkg/observability/xlog"
	"github.com/omeyang/xfilekit/pkg/observability/xmetrics"
	"github.com/omeyang/xfilekit/pkg/util/xchunk"
	"github.com/omeyang/xfilekit/pkg/util/xfile"
	"github.com/omeyang/xfilekit/pkg/util/xmeta"
	"github.com/omeyang/xfilekit/pkg/util/xremove"
)

// Handler 执行保存与删除请求。无内部可变状态，可并发使用。
type Handler struct {
	cfg        Config
	logger     xlog.Logger
	observer   xmetrics.Observer
	compressor Compressor
	now        func() time.Time
	newName    func() string
}

// New 创建 Handler。cfg.Root 非空时会被转换为绝对路径。
func New(cfg Config, opts ...Option) (*Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Root != "" {
		abs, err := filepath.Abs(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("%w: root %q: %w", ErrInvalidConfig, cfg.Root, err)
		}
		cfg.Root = abs
	}
	h := &Handler{
		cfg:        cfg,
		logger:     xlog.Default(),
		observer:   xmetrics.NoopObserver{},
		compressor: GzipCompressor{Level: cfg.compressionLevel()},
		now:        func() time.Time { return time.Now().UTC() },
		newName:    defaultNameGenerator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Root 返回配置的根目录（绝对路径），未配置时为空。
func (h *Handler) Root() string { return h.cfg.Root }

// Save 执行保存请求，永不返回错误或 panic。
func (h *Handler) Save(ctx context.Context, req SaveRequest) OperationResult {
	return h.run(ctx, OpSave, []xmetrics.Attr{xmetrics.Bool(MetricsAttrCompress, req.Compress)},
		func(ctx context.Context) (OperationResult, uint64, error) {
			return h.save(ctx, req)
		})
}

// Remove 执行删除请求，永不返回错误或 panic。
func (h *Handler) Remove(ctx context.Context, req RemovalRequest) OperationResult {
	return h.run(ctx, OpRemove, []xmetrics.Attr{xmetrics.Bool(MetricsAttrRecursive, req.Recursive)},
		func(ctx context.Context) (OperationResult, uint64, error) {
			return h.remove(ctx, req)
		})
}

// Handle 处理一个作业信封。作业 ID 为空时生成随机 ID。
// input 按严格模式解析，未知字段视为非法请求。
func (h *Handler) Handle(ctx context.Context, job Job) JobResult {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, _ = xctx.WithJob(ctx, job.ID, string(job.Operation))
	ctx, id, _ := xctx.EnsureJobID(ctx)
	out := JobResult{ID: id, Operation: job.Operation}

	switch job.Operation {
	case OpSave:
		var req SaveRequest
		if err := decodeInput(job.Input, &req); err != nil {
			out.Output = h.reject(ctx, err)
			return out
		}
		out.Output = h.Save(ctx, req)
	case OpRemove:
		var req RemovalRequest
		if err := decodeInput(job.Input, &req); err != nil {
			out.Output = h.reject(ctx, err)
			return out
		}
		out.Output = h.Remove(ctx, req)
	default:
		out.Output = h.reject(ctx, fmt.Errorf("%w: %q", ErrUnknownOperation, job.Operation))
	}
	return out
}

func (h *Handler) reject(ctx context.Context, err error) OperationResult {
	h.logger.Warn(ctx, "job rejected", xlog.Err(err))
	return Failure(err)
}

func decodeInput(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return invalid("input", "is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalid("input", err.Error())
	}
	if dec.More() {
		return invalid("input", "trailing data")
	}
	return nil
}

// run 统一处理观测、日志与 panic 恢复。
func (h *Handler) run(ctx context.Context, op Operation, attrs []xmetrics.Attr,
	fn func(ctx context.Context) (OperationResult, uint64, error)) (res OperationResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, _ = xctx.WithOperation(ctx, string(op))
	ctx, span := xmetrics.Start(ctx, h.observer, xmetrics.SpanOptions{
		Component: MetricsComponent,
		Operation: string(op),
		Kind:      xmetrics.KindInternal,
		Attrs:     attrs,
	})
	start := h.now()

	var (
		n   uint64
		err error
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
			h.logger.Error(ctx, "operation panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			res = Failure(err)
		}
		kind := Classify(err)
		span.End(xmetrics.Result{
			Err:   err,
			Bytes: n,
			Attrs: []xmetrics.Attr{xmetrics.String(MetricsAttrErrorKind, string(kind))},
		})
		h.logResult(ctx, res, err, h.now().Sub(start), n)
	}()

	res, n, err = fn(ctx)
	if err != nil {
		res = Failure(err)
	}
	return res
}

func (h *Handler) logResult(ctx context.Context, res OperationResult, err error, d time.Duration, n uint64) {
	attrs := []slog.Attr{xlog.Duration(d)}
	if err != nil {
		attrs = append(attrs, xlog.Outcome("failed"), slog.String(MetricsAttrErrorKind, string(res.ErrorKind)), xlog.Err(err))
		h.logger.Warn(ctx, "operation failed", attrs...)
		return
	}
	switch {
	case res.FilePath != "":
		attrs = append(attrs, xlog.Outcome("saved"), xlog.Path(res.FilePath), xlog.Bytes(n))
	case res.RemovedPath != "":
		outcome := "removed"
		if md := res.RemovalMetadata(); md != nil {
			outcome = md.Outcome.String()
			attrs = append(attrs, xlog.Count(int64(md.EntryCount)))
		}
		attrs = append(attrs, xlog.Outcome(outcome), xlog.Path(res.RemovedPath))
	}
	h.logger.Info(ctx, "operation completed", attrs...)
}

// rootFor 按优先级确定本次请求的根目录。
// 请求根目录须在配置根目录之内，字面路径与真实路径都要满足。
func (h *Handler) rootFor(requested string) (string, error) {
	switch {
	case requested == "" && h.cfg.Root == "":
		return "", ErrNoRoot
	case requested == "":
		return h.cfg.Root, nil
	}
	abs, err := filepath.Abs(requested)
	if err != nil {
		return "", fmt.Errorf("%w: %w", xfile.ErrInvalidPath, err)
	}
	if h.cfg.Root == "" {
		return abs, nil
	}
	if !xfile.Within(h.cfg.Root, abs) {
		return "", fmt.Errorf("%w: %s", ErrRootOutside, requested)
	}
	realRoot, err := xfile.RealPath(h.cfg.Root)
	if err != nil {
		return "", err
	}
	realAbs, err := xfile.RealPath(abs)
	if err != nil {
		return "", err
	}
	if !xfile.Within(realRoot, realAbs) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrRootOutside, requested, realAbs)
	}
	return abs, nil
}

// resolveOptions 始终解析符号链接，根目录内指向外部的链接不能用来越界。
func (h *Handler) resolveOptions() xfile.ResolveOptions {
	return xfile.ResolveOptions{ResolveSymlinks: true}
}

func (h *Handler) save(ctx context.Context, req SaveRequest) (OperationResult, uint64, error) {
	if err := req.Validate(); err != nil {
		return OperationResult{}, 0, err
	}
	root, err := h.rootFor(req.DestinationRoot)
	if err != nil {
		return OperationResult{}, 0, err
	}
	dst, err := xfile.ResolveJoinWithOptions(root, h.resolveOptions(), req.DestinationFolder, req.storedName(h.newName))
	if err != nil {
		return OperationResult{}, 0, err
	}
	if !xfile.CheckPermission(dst, xfile.PermWrite) {
		return OperationResult{}, 0, fmt.Errorf("%w: cannot write %s", ErrPermissionDenied, dst.Rel())
	}

	written, err := xchunk.Write(ctx, dst, req.FileData,
		xchunk.WithChunkSize(h.chunkSize()),
		xchunk.WithDirPerm(h.cfg.DirPerm),
		xchunk.WithFilePerm(h.cfg.FilePerm),
	)
	if err != nil {
		return OperationResult{}, 0, err
	}

	stored := dst
	if req.Compress {
		// 压缩失败时已写入的原文件保留
		if stored, err = h.compressor.Compress(ctx, dst); err != nil {
			return OperationResult{}, written.BytesWritten, fmt.Errorf("compress %s: %w", dst.Rel(), err)
		}
	}

	ext := xmeta.Extract(stored.Abs(), xmeta.WithClock(h.now))
	if ext.Degraded() {
		h.logger.Warn(ctx, "metadata extraction degraded", xlog.Path(stored.Abs()), xlog.Err(ext.Cause))
	}
	md := ext.Metadata
	md.Compressed = req.Compress
	md.Checksum = written.ChecksumHex()

	return OperationResult{Success: true, FilePath: stored.Abs(), Metadata: &md}, written.BytesWritten, nil
}

func (h *Handler) remove(ctx context.Context, req RemovalRequest) (OperationResult, uint64, error) {
	if err := req.Validate(); err != nil {
		return OperationResult{}, 0, err
	}
	root, err := h.rootFor(req.AllowedRoot)
	if err != nil {
		return OperationResult{}, 0, err
	}
	target, err := xfile.ResolveWithOptions(root, req.Path, h.resolveOptions())
	if err != nil {
		return OperationResult{}, 0, err
	}
	if !xfile.CheckPermission(target, xfile.PermDelete) {
		return OperationResult{}, 0, fmt.Errorf("%w: cannot delete %s", ErrPermissionDenied, target.Rel())
	}
	md, err := xremove.Remove(ctx, target, req.Recursive)
	if err != nil {
		return OperationResult{}, 0, err
	}
	return OperationResult{Success: true, RemovedPath: md.RemovedPath, Metadata: &md}, 0, nil
}

func (h *Handler) chunkSize() int {
	if h.cfg.ChunkSize == 0 {
		return xchunk.DefaultChunkSize
	}
	return h.cfg.ChunkSize
}
