package xmetrics

import "errors"

var (
	// ErrCreateInstrument 表示创建 OTel 仪表失败。
	ErrCreateInstrument = errors.New("xmetrics: create instrument failed")
	// ErrCollect 表示从 Recorder 收集指标失败。
	ErrCollect = errors.New("xmetrics: collect failed")
)
