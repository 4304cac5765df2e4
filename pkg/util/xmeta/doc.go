// Package xmeta 计算已存储文件的元数据：大小、内容类型与时间戳。
//
// 内容类型通过魔数嗅探（github.com/gabriel-vasile/mimetype）得到，不依赖扩展名。
// 提取是尽力而为的：[Extract] 没有错误返回值，失败时返回
// Outcome 为 [OutcomeFallback] 的默认元数据（size=0、mime_type="unknown"、当前时间），
// 失败原因放在 Extraction.Cause 中供日志使用。
package xmeta
