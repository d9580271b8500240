package analyses

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyResume       = errors.New("no text could be extracted from the resume")
	ErrMalformedAnalysis = errors.New("malformed analysis payload")
)

const (
	ErrorCodeValidation        = "validation_error"
	ErrorCodeUnsupportedFormat = "unsupported_format"
	ErrorCodeEmptyResume       = "empty_resume"
	ErrorCodeTooLarge          = "file_too_large"
	ErrorCodeLLMNotConfigured  = "llm_not_configured"
	ErrorCodeLLMUnavailable    = "llm_unavailable"
	ErrorCodeMalformedAnalysis = "malformed_analysis"
	ErrorCodeCancelled         = "request_cancelled"
	ErrorCodeInternal          = "internal"
)
