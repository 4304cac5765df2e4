package xlog

// SetNewDefaultForTest 替换全局默认 logger 的构造函数，返回恢复函数。
func SetNewDefaultForTest(fn func() LoggerWithLevel) func() {
	old := newDefault
	newDefault = fn
	return func() { newDefault = old }
}

// ErrorCount 返回 logger 的内部错误计数。
func ErrorCount(l Logger) uint64 {
	if xl, ok := l.(*xlogger); ok {
		return xl.errorCount.Load()
	}
	return 0
}
