package xfilejob

const (
	// MetricsComponent 组件名称。
	MetricsComponent = "xfilejob"

	// 属性 Key
	MetricsAttrCompress   = "compress"
	MetricsAttrRecursive  = "recursive"
	MetricsAttrErrorKind  = "error_kind"
	MetricsAttrEntryCount = "entry_count"
)
