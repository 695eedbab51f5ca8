package documents

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrFileTooLarge       = errors.New("file too large")
	ErrUnsupportedType    = errors.New("unsupported file type, use PDF or images")
	ErrEmptyExtraction    = errors.New("unable to extract text from the document")
	ErrNoExtractedText    = errors.New("no extracted text available for this document")
	ErrContentUnavailable = errors.New("content not available")
	ErrNotFound           = errors.New("document not found")
	ErrUpstream           = errors.New("upstream failure")

	// ErrNoOriginal matches ErrNotFound too.
	ErrNoOriginal = fmt.Errorf("%w: original file not archived", ErrNotFound)
)

const (
	ErrorCodeValidation = "validation_error"
	ErrorCodeTooLarge   = "file_too_large"
	ErrorCodeNotFound   = "not_found"
	ErrorCodeUpstream   = "upstream_error"
	ErrorCodeInternal   = "internal_error"
)
