// xfilejob 在沙箱根目录下执行文件保存与删除作业。
//
// 用法:
//
//	xfilejob [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件（.yaml/.yml/.json）
//	-r, --root        沙箱根目录，覆盖配置文件（环境变量 XFILEJOB_ROOT）
//	    --log-level   日志级别 debug/info/warn/error
//	    --log-format  日志格式 text/json
//	    --log-file    日志文件，按大小轮转；为空时输出到 stderr
//
// 命令:
//
//	save      保存一个文件，输出 OperationResult JSON
//	remove    删除一个文件或目录，输出 OperationResult JSON
//	serve     从 stdin 逐行读取作业 JSON，并发处理，结果逐行写到 stdout
//
// 退出码:
//
//	0: 成功（serve: 输入结束或收到退出信号后正常关闭）
//	1: 操作失败或运行错误
//	2: 参数错误
//
// 示例:
//
//	xfilejob -r /srv/files save --folder u1/docs --filename hello.txt --data SGVsbG8gV29ybGQh
//	xfilejob -r /srv/files remove --path u1/old --recursive
//	xfilejob -c /etc/xfilekit/job.yaml serve < jobs.jsonl
package main

import (
	"context"
	"io"
	"os"
)

// 版本信息，通过 -ldflags 注入:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// env 是命令的输入输出，测试中替换为内存缓冲。
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}
