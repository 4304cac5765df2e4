// Package xconf 加载 xfilejob 的运行配置，基于 koanf。
//
// 支持 YAML（.yaml/.yml）与 JSON（.json），格式由扩展名决定。
// 文件中缺失的字段保留 [Default] 中的值，加载后统一经 [Settings.Validate] 校验。
//
//	s, err := xconf.Load("/etc/xfilekit/job.yaml")
//
// [Watch] 基于 fsnotify 监视配置文件所在目录，防抖后重新加载并回调。
// 重新加载失败时回调收到错误，调用方应继续使用旧配置。
package xconf
