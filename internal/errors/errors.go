package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors into the pipeline's taxonomy.
// Loader and configuration errors are fatal to a run; everything the
// pipeline can recover from is reported as a notice instead of an error.
type ErrorType string

const (
	// ErrTypeUnsupportedFormat marks an upload whose extension is not
	// csv, xlsx or xls.
	ErrTypeUnsupportedFormat ErrorType = "UNSUPPORTED_FORMAT"
	// ErrTypeDecode marks content that no encoding in the fallback list
	// could decode, or a workbook that could not be opened.
	ErrTypeDecode ErrorType = "DECODE_ERROR"
	// ErrTypeEmptyFile marks an upload that parsed to zero data rows.
	ErrTypeEmptyFile ErrorType = "EMPTY_FILE"
	// ErrTypeInvalidStrategy marks an unknown missing-value strategy
	// token. This indicates a UI or caller bug, not bad data.
	ErrTypeInvalidStrategy ErrorType = "INVALID_STRATEGY"
	// ErrTypeInvalidColumn marks a reference to a column the table does
	// not have.
	ErrTypeInvalidColumn ErrorType = "INVALID_COLUMN"
	// ErrTypeProcessingFailed wraps any unexpected internal failure
	// caught at the pipeline boundary.
	ErrTypeProcessingFailed ErrorType = "PROCESSING_FAILED"
	// ErrTypeNotFound marks a missing dataset or resource.
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	// ErrTypeValidation marks a malformed request.
	ErrTypeValidation ErrorType = "VALIDATION"
)

// AppError is the application error carrying a taxonomy type, a message,
// an optional cause and free-form context for logging.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair for structured logging.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates an AppError without a cause.
func New(errType ErrorType, message string) *AppError {
	return &AppError{Type: errType, Message: message}
}

// Wrap creates an AppError wrapping a cause.
func Wrap(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// Newf creates an AppError with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *AppError {
	return &AppError{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// TypeOf extracts the taxonomy type from any error chain. Errors outside
// the taxonomy report ErrTypeProcessingFailed.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrTypeProcessingFailed
}

// IsType reports whether err carries the given taxonomy type.
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
