package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInputRejected       = errors.New("input rejected")
	ErrEmptyInput          = errors.New("input rejected: empty content")
	ErrInputTooSmall       = errors.New("input rejected: document below minimum size")
	ErrUnsupportedFileType = errors.New("input rejected: unsupported file type")
	ErrEmptyGrid           = errors.New("empty table grid: zero records")
	ErrExtractorDown       = errors.New("field extractor unavailable")
	ErrOCRDown             = errors.New("table extractor unavailable")
)
