package batch

import "fmt"

// ErrorCode classifies a per-image failure.
type ErrorCode string

const (
	ErrorDecodeFailed    ErrorCode = "DECODE_FAILED"
	ErrorOCRFailed       ErrorCode = "OCR_FAILED"
	ErrorDetectionFailed ErrorCode = "DETECTION_FAILED"
)

// ProcessingError is a failure to process one image.
type ProcessingError struct {
	Code    ErrorCode
	Path    string
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s", e.Code, e.Message, e.Path)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

func NewDecodeError(path string, cause error) *ProcessingError {
	return &ProcessingError{Code: ErrorDecodeFailed, Path: path, Message: "cannot decode", Cause: cause}
}

func NewOCRError(path string, cause error) *ProcessingError {
	return &ProcessingError{Code: ErrorOCRFailed, Path: path, Message: "text recognition failed for", Cause: cause}
}

func NewDetectionError(path string, cause error) *ProcessingError {
	return &ProcessingError{Code: ErrorDetectionFailed, Path: path, Message: "furniture detection failed for", Cause: cause}
}
