package xfilejob

import (
	"path/filepath"
	"strings"
)

// invalidFilenameChars 是文件名中禁止出现的字符。
const invalidFilenameChars = "<>:\"|?*\x00"

// SaveRequest 是保存作业的输入。
type SaveRequest struct {
	// DestinationRoot 可选，覆盖根目录，须位于配置的根目录之内。
	DestinationRoot string `json:"destination_root,omitempty"`
	// DestinationFolder 相对根目录的目标目录，可为空。
	DestinationFolder string `json:"destination_folder"`
	Filename          string `json:"filename"`
	// FileData 是 base64 编码的文件内容，允许包含空白。
	FileData string `json:"file_data"`
	Compress bool   `json:"compress"`
	// GenerateName 为 true 时以随机 UUID 加 Filename 的扩展名作为存储文件名。
	GenerateName bool `json:"generate_name,omitempty"`
}

// Validate 校验字段，失败返回 [*ValidationError]。
//
// 路径分隔符与 ".." 不在此处检查，由路径解析阶段统一处理。
func (r SaveRequest) Validate() error {
	switch {
	case r.Filename == "" && !r.GenerateName:
		return invalid("filename", "cannot be empty")
	case strings.ContainsAny(r.Filename, invalidFilenameChars):
		return invalid("filename", "contains invalid characters")
	case strings.ContainsRune(r.DestinationFolder, 0):
		return invalid("destination_folder", "contains null byte")
	}
	if r.GenerateName && strings.ContainsAny(filepath.Ext(r.Filename), `/\`) {
		return invalid("filename", "invalid extension")
	}
	return validateBase64(r.FileData)
}

// storedName 返回实际写入的文件名。
func (r SaveRequest) storedName(newID func() string) string {
	if !r.GenerateName {
		return r.Filename
	}
	return newID() + filepath.Ext(r.Filename)
}

// validateBase64 检查字母表与填充位置：忽略空白后须为 [A-Za-z0-9+/]+ 加至多两个 '='。
// 分组长度等结构性错误留给解码阶段，以便报告准确偏移。
func validateBase64(s string) error {
	data, pad := 0, 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
		case c == '=':
			pad++
			if pad > 2 {
				return invalid("file_data", "too much padding")
			}
		case isBase64Char(c):
			if pad > 0 {
				return invalid("file_data", "data after padding")
			}
			data++
		default:
			return invalid("file_data", "is not valid base64")
		}
	}
	if data == 0 {
		return invalid("file_data", "cannot be empty")
	}
	return nil
}

func isBase64Char(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '/'
}

// RemovalRequest 是删除作业的输入。
type RemovalRequest struct {
	// AllowedRoot 可选，覆盖根目录，须位于配置的根目录之内。
	AllowedRoot string `json:"allowed_root,omitempty"`
	// Path 相对根目录的目标路径。
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

// Validate 校验字段，失败返回 [*ValidationError]。
func (r RemovalRequest) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return invalid("path", "cannot be empty")
	}
	if strings.ContainsRune(r.Path, 0) {
		return invalid("path", "contains null byte")
	}
	return nil
}
