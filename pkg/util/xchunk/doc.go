// Package xchunk 把 base64 编码的内容分块解码并写入磁盘。
//
// 输入先去掉所有 ASCII 空白（容忍按行折断的编码），再按 4 的整数倍切片，
// 每片独立解码后追加写入。工作内存只与块大小相关，与文件大小无关。
//
// 写入流程：
//  1. 为目标路径幂等创建父目录
//  2. 在同目录创建临时文件，逐块解码写入，同时计算 xxhash64
//  3. Sync、Close 后重命名为目标文件
//
// 任何失败都会删除临时文件，目标位置不会留下截断的文件，已存在的同名文件保持原样。
//
// # 错误
//
//   - [*DecodeError]: 编码内容非法，Offset 为去空白后的字符偏移，匹配 [ErrDecode]
//   - [ErrIO]: 文件系统失败
//   - context 取消: 返回 ctx.Err() 的包装
package xchunk
