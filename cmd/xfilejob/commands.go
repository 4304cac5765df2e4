package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xfilekit/pkg/business/xfilejob"
	"github.com/omeyang/xfilekit/pkg/context/xctx"
	"github.com/omeyang/xfilekit/pkg/observability/xmetrics"
)

func createSaveCommand(e env) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "保存一个 base64 编码的文件",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "SaveRequest JSON 文件，- 表示 stdin"},
			&cli.StringFlag{Name: "destination-root", Usage: "请求根目录，须位于 --root 之内"},
			&cli.StringFlag{Name: "folder", Aliases: []string{"d"}, Usage: "相对根目录的目标目录"},
			&cli.StringFlag{Name: "filename", Aliases: []string{"f"}, Usage: "文件名"},
			&cli.StringFlag{Name: "data", Usage: "base64 编码的内容"},
			&cli.StringFlag{Name: "data-file", Usage: "读取本地文件并编码为内容"},
			&cli.BoolFlag{Name: "compress", Aliases: []string{"z"}, Usage: "保存后 gzip 压缩"},
			&cli.BoolFlag{Name: "generate-name", Usage: "以随机 UUID 加原扩展名作为文件名"},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := saveRequestFrom(cmd, e)
			if err != nil {
				return err
			}
			return runOnce(ctx, cmd, e, xfilejob.OpSave, func(ctx context.Context, h *xfilejob.Handler) xfilejob.OperationResult {
				return h.Save(ctx, req)
			})
		},
	}
}

func createRemoveCommand(e env) *cli.Command {
	return &cli.Command{
		Name:    "remove",
		Aliases: []string{"rm"},
		Usage:   "删除一个文件或目录",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "RemovalRequest JSON 文件，- 表示 stdin"},
			&cli.StringFlag{Name: "allowed-root", Usage: "请求根目录，须位于 --root 之内"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "相对根目录的目标路径"},
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"R"}, Usage: "递归删除目录"},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := removalRequestFrom(cmd, e)
			if err != nil {
				return err
			}
			return runOnce(ctx, cmd, e, xfilejob.OpRemove, func(ctx context.Context, h *xfilejob.Handler) xfilejob.OperationResult {
				return h.Remove(ctx, req)
			})
		},
	}
}

func saveRequestFrom(cmd *cli.Command, e env) (xfilejob.SaveRequest, error) {
	var req xfilejob.SaveRequest
	if cmd.IsSet("input") {
		if anySet(cmd, "destination-root", "folder", "filename", "data", "data-file", "compress", "generate-name") {
			return req, usagef("--input cannot be combined with request flags")
		}
		return req, readRequest(cmd.String("input"), e.stdin, &req)
	}
	if cmd.IsSet("data") && cmd.IsSet("data-file") {
		return req, usagef("--data and --data-file are mutually exclusive")
	}
	req = xfilejob.SaveRequest{
		DestinationRoot:   cmd.String("destination-root"),
		DestinationFolder: cmd.String("folder"),
		Filename:          cmd.String("filename"),
		FileData:          cmd.String("data"),
		Compress:          cmd.Bool("compress"),
		GenerateName:      cmd.Bool("generate-name"),
	}
	if path := cmd.String("data-file"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return req, usagef("--data-file: %v", err)
		}
		req.FileData = base64.StdEncoding.EncodeToString(raw)
	}
	return req, nil
}

func removalRequestFrom(cmd *cli.Command, e env) (xfilejob.RemovalRequest, error) {
	var req xfilejob.RemovalRequest
	if cmd.IsSet("input") {
		if anySet(cmd, "allowed-root", "path", "recursive") {
			return req, usagef("--input cannot be combined with request flags")
		}
		return req, readRequest(cmd.String("input"), e.stdin, &req)
	}
	return xfilejob.RemovalRequest{
		AllowedRoot: cmd.String("allowed-root"),
		Path:        cmd.String("path"),
		Recursive:   cmd.Bool("recursive"),
	}, nil
}

func anySet(cmd *cli.Command, names ...string) bool {
	for _, n := range names {
		if cmd.IsSet(n) {
			return true
		}
	}
	return false
}

// readRequest 严格解析请求 JSON，未知字段视为参数错误。
func readRequest(path string, stdin io.Reader, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return usagef("--input: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return usagef("--input: %v", err)
	}
	return nil
}

// runOnce 处理单个请求：输出结果 JSON，失败时退出码为 1。
func runOnce(ctx context.Context, cmd *cli.Command, e env, op xfilejob.Operation,
	fn func(context.Context, *xfilejob.Handler) xfilejob.OperationResult) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := buildLogger(s.Log, e.stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	h, err := newHandler(s.Storage, logger, xmetrics.NoopObserver{})
	if err != nil {
		return err
	}
	ctx, err = xctx.WithOperation(ctx, string(op))
	if err != nil {
		return err
	}
	ctx, _, err = xctx.EnsureJobID(ctx)
	if err != nil {
		return err
	}

	res := fn(ctx, h)
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if !res.Success {
		return &exitError{code: 1}
	}
	return nil
}
