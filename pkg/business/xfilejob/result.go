package xfilejob

import (
	"encoding/json"

	"github.com/omeyang/xfilekit/pkg/util/xmeta"
	"github.com/omeyang/xfilekit/pkg/util/xremove"
)

// OperationResult 是每个请求的唯一输出形态。
//
// Success 为 true 时 Metadata 为 *xmeta.FileMetadata（保存）或
// *xremove.RemovalMetadata（删除）；为 false 时 Error 是可读的错误信息。
type OperationResult struct {
	Success     bool   `json:"success"`
	FilePath    string `json:"file_path,omitempty"`
	RemovedPath string `json:"removed_path,omitempty"`
	Metadata    any    `json:"metadata,omitempty"`
	Error       string `json:"error,omitempty"`
	// ErrorKind 是错误分类，见 [Classify]。
	ErrorKind Kind `json:"error_kind,omitempty"`
}

// FileMetadata 返回保存结果的元数据，不是保存结果时返回 nil。
func (r OperationResult) FileMetadata() *xmeta.FileMetadata {
	m, _ := r.Metadata.(*xmeta.FileMetadata)
	return m
}

// RemovalMetadata 返回删除结果的元数据，不是删除结果时返回 nil。
func (r OperationResult) RemovalMetadata() *xremove.RemovalMetadata {
	m, _ := r.Metadata.(*xremove.RemovalMetadata)
	return m
}

// Failure 将错误转换为失败结果。
func Failure(err error) OperationResult {
	if err == nil {
		err = ErrInternal
	}
	return OperationResult{Success: false, Error: err.Error(), ErrorKind: Classify(err)}
}

// Operation 作业类型。
type Operation string

const (
	// OpSave 保存 base64 文件内容，输入为 [SaveRequest]。
	OpSave Operation = "save"
	// OpRemove 删除文件或目录，输入为 [RemovalRequest]。
	OpRemove Operation = "remove"
)

// Job 是一次作业的信封。
type Job struct {
	ID        string          `json:"id,omitempty"`
	Operation Operation       `json:"operation"`
	Input     json.RawMessage `json:"input"`
}

// JobResult 是作业信封的输出。
type JobResult struct {
	ID        string          `json:"id"`
	Operation Operation       `json:"operation"`
	Output    OperationResult `json:"output"`
}
