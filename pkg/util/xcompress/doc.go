// Package xcompress 把已写入的文件以 gzip 流压缩为同目录下的 "<name>.gz"。
//
// 顺序保证：压缩输出先写入临时文件，gzip 流 Close、文件 Sync 并 Close、
// 重命名为 "<name>.gz" 之后，才删除原文件。任何一步失败都会删除临时输出，
// 原文件保持不变；若最后删除原文件失败，已生成的 .gz 也会被删除，恢复调用前状态。
//
// 压缩实现使用 github.com/klauspost/compress/gzip，输出与标准 gzip 格式兼容。
package xcompress
