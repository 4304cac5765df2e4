package xlog

import "errors"

var (
	ErrUnknownLevel  = errors.New("xlog: unknown level")
	ErrUnknownFormat = errors.New("xlog: unknown format")
	ErrNilHandler    = errors.New("xlog: base handler is nil")
	ErrNilOutput     = errors.New("xlog: nil output")

	ErrEmptyFilename  = errors.New("xlog: empty rotation filename")
	ErrInvalidRotate = errors.New("xlog: invalid rotation config")
)
