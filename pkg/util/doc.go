// Package util 提供文件作业使用的底层子包。
//
// 子包列表：
//   - xfile: 根目录约束的路径解析、权限检查与目录创建
//   - xchunk: 分块 base64 解码写入，计算 xxhash 校验和
//   - xcompress: gzip 压缩与解压，原子替换目标文件
//   - xmeta: 文件元数据提取，失败时退化为默认值
//   - xremove: 文件与目录删除，区分已删除与本就不存在
//   - xpool: 泛型 Worker Pool，有界队列与优雅关闭
//
// 设计原则：
//   - 所有路径先经 xfile 解析，拒绝遍历与越界
//   - 失败时不留下半写文件
package util
