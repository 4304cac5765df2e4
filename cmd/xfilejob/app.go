package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xfilekit/pkg/business/xfilejob"
	"github.com/omeyang/xfilekit/pkg/config/xconf"
	"github.com/omeyang/xfilekit/pkg/observability/xlog"
	"github.com/omeyang/xfilekit/pkg/observability/xmetrics"
)

// run 执行命令并返回退出码。
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	return exitCode(createApp(e).Run(ctx, args), e)
}

func createApp(e env) *cli.Command {
	return &cli.Command{
		Name:      "xfilejob",
		Usage:     "在沙箱根目录下保存与删除文件",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件（.yaml/.yml/.json）",
				Sources: cli.EnvVars("XFILEJOB_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "沙箱根目录",
				Sources: cli.EnvVars("XFILEJOB_ROOT"),
			},
			&cli.StringFlag{Name: "log-level", Usage: "日志级别 debug/info/warn/error"},
			&cli.StringFlag{Name: "log-format", Usage: "日志格式 text/json"},
			&cli.StringFlag{Name: "log-file", Usage: "日志文件，为空时输出到 stderr"},
		},
		Commands: []*cli.Command{
			createSaveCommand(e),
			createRemoveCommand(e),
			createServeCommand(e),
		},
		OnUsageError: onUsageError,
		// 退出码由 run 统一映射，不允许 cli 直接退出进程
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return usagef("unknown command %q", cmd.Args().First())
			}
			return cli.ShowAppHelp(cmd)
		},
	}
}

// loadSettings 依次应用默认值、配置文件与命令行覆盖，最后统一校验。
func loadSettings(cmd *cli.Command, overrides ...func(*xconf.Settings)) (xconf.Settings, error) {
	s := xconf.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := xconf.Load(path)
		if err != nil {
			return xconf.Settings{}, err
		}
		s = loaded
	}
	if cmd.IsSet("root") {
		s.Storage.Root = cmd.String("root")
	}
	if cmd.IsSet("log-level") {
		if _, err := xlog.ParseLevel(cmd.String("log-level")); err != nil {
			return xconf.Settings{}, usagef("--log-level: %v", err)
		}
		s.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		s.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("log-file") {
		s.Log.File = cmd.String("log-file")
	}
	for _, o := range overrides {
		o(&s)
	}
	if err := s.Validate(); err != nil {
		return xconf.Settings{}, err
	}
	return s, nil
}

func buildLogger(ls xconf.LogSettings, stderr io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().SetLevelString(ls.Level).SetFormat(ls.Format)
	if ls.File != "" {
		b = b.SetRotation(ls.File, ls.RotateConfig())
	} else {
		b = b.SetOutput(stderr)
	}
	return b.Build()
}

func newHandler(s xconf.StorageSettings, logger xlog.Logger, observer xmetrics.Observer) (*xfilejob.Handler, error) {
	return xfilejob.New(xfilejob.Config{
		Root:             s.Root,
		ChunkSize:        s.ChunkSize,
		DirPerm:          s.DirMode(),
		FilePerm:         s.FileMode(),
		CompressionLevel: s.CompressionLevel,
	}, xfilejob.WithLogger(logger), xfilejob.WithObserver(observer))
}
