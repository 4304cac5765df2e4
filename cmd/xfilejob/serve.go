package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xfilekit/pkg/business/xfilejob"
	"github.com/omeyang/xfilekit/pkg/config/xconf"
	"github.com/omeyang/xfilekit/pkg/lifecycle/xrun"
	"github.com/omeyang/xfilekit/pkg/observability/xlog"
	"github.com/omeyang/xfilekit/pkg/observability/xmetrics"
)

const defaultMaxLineBytes = 64 << 20

// errInputClosed 表示 stdin 已读完，serve 正常结束。
var errInputClosed = errors.New("input closed")

func createServeCommand(e env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "从 stdin 逐行读取作业 JSON，结果逐行写到 stdout",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "并发 worker 数"},
			&cli.IntFlag{Name: "queue-size", Usage: "作业队列长度"},
			&cli.DurationFlag{Name: "job-timeout", Usage: "单个作业超时，0 不限时"},
			&cli.DurationFlag{Name: "shutdown-timeout", Usage: "退出时等待在途作业的最长时间"},
			&cli.DurationFlag{Name: "stats-interval", Usage: "周期输出操作统计，0 关闭"},
			&cli.IntFlag{Name: "max-line-bytes", Value: defaultMaxLineBytes, Usage: "单行作业的最大字节数"},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := loadSettings(cmd, func(s *xconf.Settings) {
				if cmd.IsSet("workers") {
					s.Worker.Workers = cmd.Int("workers")
				}
				if cmd.IsSet("queue-size") {
					s.Worker.QueueSize = cmd.Int("queue-size")
				}
				if cmd.IsSet("job-timeout") {
					s.Worker.JobTimeout = cmd.Duration("job-timeout")
				}
				if cmd.IsSet("shutdown-timeout") {
					s.Worker.ShutdownTimeout = cmd.Duration("shutdown-timeout")
				}
			})
			if err != nil {
				return err
			}
			if cmd.Int("max-line-bytes") <= 0 {
				return usagef("--max-line-bytes must be positive")
			}
			return serve(ctx, e, s, serveOptions{
				configPath:    cmd.String("config"),
				statsInterval: cmd.Duration("stats-interval"),
				maxLineBytes:  cmd.Int("max-line-bytes"),
			})
		},
	}
}

type serveOptions struct {
	configPath    string
	statsInterval time.Duration
	maxLineBytes  int
}

func serve(ctx context.Context, e env, s xconf.Settings, opts serveOptions) error {
	logger, closeLog, err := buildLogger(s.Log, e.stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	rec := xmetrics.NewRecorder()
	defer func() { _ = rec.Shutdown(context.Background()) }()
	observer, err := xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(rec.MeterProvider()))
	if err != nil {
		return err
	}

	h, err := newHandler(s.Storage, logger, observer)
	if err != nil {
		return err
	}

	out := &resultWriter{enc: json.NewEncoder(e.stdout)}
	d, err := xfilejob.NewDispatcher(h, out.write,
		xfilejob.WithWorkers(s.Worker.Workers),
		xfilejob.WithQueueSize(s.Worker.QueueSize),
		xfilejob.WithJobTimeout(s.Worker.JobTimeout),
		xfilejob.WithDispatcherLogger(logger),
	)
	if err != nil {
		return err
	}

	if opts.configPath != "" {
		w, err := xconf.Watch(opts.configPath, reloadLogLevel(logger))
		if err != nil {
			logger.Warn(ctx, "config watch disabled", xlog.Err(err))
		} else {
			w.Start()
			defer func() { _ = w.Stop() }()
		}
	}

	logger.Info(ctx, "serve started",
		slog.String("root", h.Root()),
		slog.Int("workers", s.Worker.Workers),
		slog.Int("queue_size", s.Worker.QueueSize))

	services := []func(context.Context) error{
		readJobs(e.stdin, opts.maxLineBytes, d, out),
		xrun.GracefulStop(s.Worker.ShutdownTimeout, d.Shutdown),
	}
	totals := logTotals(logger, rec)
	if opts.statsInterval > 0 {
		services = append(services, xrun.Ticker(opts.statsInterval, false, totals))
	}

	runErr := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger), xrun.WithName("serve")}, services...)
	<-d.Done()
	_ = totals(context.Background())

	if runErr == nil || errors.Is(runErr, errInputClosed) || errors.Is(runErr, xrun.ErrSignal) {
		logger.Info(context.Background(), "serve stopped", slog.String("reason", stopReason(runErr)))
		return out.err()
	}
	return runErr
}

func stopReason(err error) string {
	if err == nil || errors.Is(err, errInputClosed) {
		return "input closed"
	}
	return err.Error()
}

// readJobs 返回读取 stdin 的服务。读到 EOF 时返回 errInputClosed，
// 由 xrun 取消其它服务并触发 Dispatcher 的优雅关闭。
// 超长的行被丢弃并输出一个失败结果，不影响后续作业。
func readJobs(in io.Reader, maxLine int, d *xfilejob.Dispatcher, out *resultWriter) func(context.Context) error {
	return func(ctx context.Context) error {
		lines := make(chan inputLine)
		readErr := make(chan error, 1)
		done := make(chan struct{})
		defer close(done)

		go func() {
			br := bufio.NewReaderSize(in, min(64*1024, maxLine))
			for {
				data, err := readLine(br, maxLine)
				if err != nil && !errors.Is(err, errLineTooLong) {
					if errors.Is(err, io.EOF) {
						err = nil
					}
					readErr <- err
					return
				}
				data = bytes.TrimSpace(data)
				if err == nil && len(data) == 0 {
					continue
				}
				select {
				case lines <- inputLine{data: data, err: err}:
				case <-done:
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-readErr:
				if err != nil {
					return fmt.Errorf("read jobs: %w", err)
				}
				return errInputClosed
			case line := <-lines:
				if line.err != nil {
					reason := fmt.Sprintf("line exceeds %d bytes", maxLine)
					out.write(xfilejob.JobResult{Output: xfilejob.Failure(&xfilejob.ValidationError{Field: "job", Reason: reason})})
					continue
				}
				job, err := decodeJob(line.data)
				if err != nil {
					out.write(xfilejob.JobResult{ID: job.ID, Operation: job.Operation, Output: xfilejob.Failure(err)})
					continue
				}
				if err := d.Submit(ctx, job); err != nil {
					out.write(xfilejob.JobResult{ID: job.ID, Operation: job.Operation, Output: xfilejob.Failure(err)})
				}
			}
		}
	}
}

type inputLine struct {
	data []byte
	err  error
}

var errLineTooLong = errors.New("line too long")

// readLine 读取一行（含换行符）。内容超过 maxLine 时读完并丢弃整行，
// 返回 errLineTooLong；最后一行可以没有换行符。
func readLine(r *bufio.Reader, maxLine int) ([]byte, error) {
	var line []byte
	tooLong := false
	for {
		frag, err := r.ReadSlice('\n')
		if !tooLong {
			line = append(line, frag...)
			if len(bytes.TrimRight(line, "\r\n")) > maxLine {
				tooLong, line = true, nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		switch {
		case tooLong && (err == nil || errors.Is(err, io.EOF)):
			return nil, errLineTooLong
		case errors.Is(err, io.EOF) && len(line) > 0:
			return line, nil
		case err != nil:
			return nil, err
		}
		return line, nil
	}
}

func decodeJob(line []byte) (xfilejob.Job, error) {
	var job xfilejob.Job
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&job); err != nil {
		return xfilejob.Job{}, &xfilejob.ValidationError{Field: "job", Reason: err.Error()}
	}
	if dec.More() {
		return job, &xfilejob.ValidationError{Field: "job", Reason: "trailing data after job object"}
	}
	return job, nil
}

// resultWriter 串行化结果输出，每个结果一行 JSON。
type resultWriter struct {
	mu       sync.Mutex
	enc      *json.Encoder
	firstErr error
}

func (w *resultWriter) write(r xfilejob.JobResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstErr != nil {
		return
	}
	if err := w.enc.Encode(r); err != nil {
		w.firstErr = fmt.Errorf("write result: %w", err)
	}
}

func (w *resultWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}

func logTotals(logger xlog.Logger, rec *xmetrics.Recorder) func(context.Context) error {
	return func(ctx context.Context) error {
		totals, err := rec.Totals(ctx)
		if err != nil {
			logger.Warn(ctx, "collect operation totals failed", xlog.Err(err))
			return nil
		}
		for _, t := range totals {
			logger.Info(ctx, "operation totals",
				xlog.Component(t.Component),
				xlog.Operation(t.Operation),
				slog.String("status", string(t.Status)),
				xlog.Count(t.Count),
				slog.Int64(xlog.KeyBytes, t.Bytes))
		}
		return nil
	}
}

// reloadLogLevel 在配置文件变更后应用新的日志级别，其余配置需重启生效。
func reloadLogLevel(logger xlog.LoggerWithLevel) xconf.WatchCallback {
	return func(s xconf.Settings, err error) {
		ctx := context.Background()
		if err != nil {
			logger.Warn(ctx, "config reload failed, keeping previous settings", xlog.Err(err))
			return
		}
		level, err := xlog.ParseLevel(s.Log.Level)
		if err != nil {
			logger.Warn(ctx, "config reload failed, keeping previous settings", xlog.Err(err))
			return
		}
		if level == logger.GetLevel() {
			return
		}
		logger.SetLevel(level)
		logger.Info(ctx, "log level reloaded", slog.String("level", level.String()))
	}
}
