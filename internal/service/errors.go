package service

import "errors"

var (
	ErrOwnerRequired     = errors.New("owner id is required")
	ErrIDRequired        = errors.New("id is required")
	ErrReaderNil         = errors.New("reader is nil")
	ErrUnsupportedFormat = errors.New("only PDF files are supported")
	ErrEmptyFile         = errors.New("file is empty")
	ErrInvalidName       = errors.New("invalid file name")
	ErrNotFound          = errors.New("file not found")

	// ErrStorageWrite and ErrMetadataWrite are the only faults an uploader sees;
	// the compensation that followed them is logged, not reported.
	ErrStorageWrite  = errors.New("storage write failed")
	ErrMetadataWrite = errors.New("metadata write failed")

	// ErrCorruptState means a record exists but its blob does not.
	ErrCorruptState = errors.New("file record has no stored content")
)
