package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryGroupConfig   ErrorCategory = "group_config"
	CategoryExtraction    ErrorCategory = "extraction"
	CategoryRender        ErrorCategory = "render"
	CategorySend          ErrorCategory = "send"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"
	CodeReferenceData  ErrorCode = "reference_data"
	CodeInvalidDate    ErrorCode = "invalid_date"

	// Group configuration errors
	CodeMissingContact ErrorCode = "missing_contact"
	CodeMissingName    ErrorCode = "missing_name"

	// Extraction errors
	CodeQueryFailed ErrorCode = "query_failed"
	CodeScanFailed  ErrorCode = "scan_failed"
	CodeStoreAccess ErrorCode = "store_access"

	// Render errors
	CodeWriteFailed     ErrorCode = "write_failed"
	CodeDirectoryFailed ErrorCode = "directory_failed"

	// Send errors
	CodeConnectionFailed ErrorCode = "connection_failed"
	CodeDeliveryFailed   ErrorCode = "delivery_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// DistributorError is the base error type for all application errors
type DistributorError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *DistributorError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", msg, e.Suggestion)
	}
	return msg
}

// Unwrap returns the underlying cause error
func (e *DistributorError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error aborts the whole run rather than a single group.
func (e *DistributorError) IsFatal() bool {
	return e.Category == CategoryConfiguration || e.Category == CategoryInternal
}

// GetExitCode returns an appropriate exit code for the error.
// Group level failures share exit code 1 with a run that recorded failed groups.
func (e *DistributorError) GetExitCode() int {
	switch e.Category {
	case CategoryConfiguration:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *DistributorError) WithContext(key string, value interface{}) *DistributorError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *DistributorError) WithSuggestion(suggestion string) *DistributorError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DistributorError
func New(category ErrorCategory, code ErrorCode, message string) *DistributorError {
	return &DistributorError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with DistributorError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *DistributorError {
	if err == nil {
		return nil
	}

	return &DistributorError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func build(category ErrorCategory, code ErrorCode, message string, err error) *DistributorError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// ConfigError creates a configuration or reference data error. These are fatal.
func ConfigError(code ErrorCode, setting string, value interface{}, err error) *DistributorError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration file for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "add this setting to the configuration file"
	case CodeConfigConflict:
		message = fmt.Sprintf("conflicting options for '%s': %v", setting, value)
		suggestion = "use only one of the conflicting options"
	case CodeReferenceData:
		message = fmt.Sprintf("invalid account group data in %s", setting)
		suggestion = "verify the account groups file is valid JSON with groupName, groupType and groupRanges"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid %s: %v", setting, value)
		suggestion = "use YYYY-MM-DD for dates and YYYY-MM for months, with the start not after the end"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	return build(CategoryConfiguration, code, message, err).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InvalidGroupConfig creates an error for an account group that cannot be distributed to.
func InvalidGroupConfig(code ErrorCode, group string) *DistributorError {
	var message string
	switch code {
	case CodeMissingContact:
		message = fmt.Sprintf("account group %q has no contact email", group)
	case CodeMissingName:
		message = "account group has no name"
	default:
		message = fmt.Sprintf("invalid configuration for account group %q", group)
	}

	return New(CategoryGroupConfig, code, message).
		WithSuggestion("add groupName and groupEmail to the account group entry").
		WithContext("group", group)
}

// ExtractionError creates an error for a failed store query.
func ExtractionError(code ErrorCode, operation string, err error) *DistributorError {
	var message string
	switch code {
	case CodeQueryFailed:
		message = fmt.Sprintf("query failed during %s", operation)
	case CodeScanFailed:
		message = fmt.Sprintf("reading rows failed during %s", operation)
	case CodeStoreAccess:
		message = fmt.Sprintf("cannot access store: %s", operation)
	default:
		message = fmt.Sprintf("extraction error during %s", operation)
	}

	return build(CategoryExtraction, code, message, err).
		WithSuggestion("verify the database path and that the schema matches the selected source").
		WithContext("operation", operation)
}

// RenderError creates an error for a statement that could not be produced.
func RenderError(code ErrorCode, path string, err error) *DistributorError {
	var message string
	switch code {
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write statement %s", path)
	case CodeDirectoryFailed:
		message = fmt.Sprintf("failed to prepare output directory %s", path)
	default:
		message = fmt.Sprintf("render error for %s", path)
	}

	return build(CategoryRender, code, message, err).
		WithSuggestion("check output_dir exists and is writable").
		WithContext("path", path)
}

// SendError creates an error for a failed email delivery.
func SendError(code ErrorCode, recipient string, err error) *DistributorError {
	var message string
	switch code {
	case CodeConnectionFailed:
		message = fmt.Sprintf("cannot reach SMTP server while sending to %s", recipient)
	case CodeDeliveryFailed:
		message = fmt.Sprintf("failed to deliver email to %s", recipient)
	default:
		message = fmt.Sprintf("send error for %s", recipient)
	}

	return build(CategorySend, code, message, err).
		WithSuggestion("check the smtp settings and SMTP_PASSWORD").
		WithContext("recipient", recipient)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *DistributorError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	return build(CategoryInternal, code, message, err).
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// MultiError collects validation problems so they can be reported together.
type MultiError []error

func (m MultiError) Error() string {
	parts := make([]string, 0, len(m))
	for _, err := range m {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// ErrOrNil returns nil for an empty MultiError.
func (m MultiError) ErrOrNil() error {
	if len(m) == 0 {
		return nil
	}
	return m
}

// Utility functions

// IsDistributorError checks if an error is a DistributorError
func IsDistributorError(err error) bool {
	_, ok := AsDistributorError(err)
	return ok
}

// AsDistributorError extracts a DistributorError from an error chain
func AsDistributorError(err error) (*DistributorError, bool) {
	var distErr *DistributorError
	if errors.As(err, &distErr) {
		return distErr, true
	}
	return nil, false
}

// HasCategory reports whether err carries a DistributorError of the given category.
func HasCategory(err error, category ErrorCategory) bool {
	distErr, ok := AsDistributorError(err)
	return ok && distErr.Category == category
}

// WrapIfNeeded wraps an error if it's not already a DistributorError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *DistributorError {
	if err == nil {
		return nil
	}

	if distErr, ok := AsDistributorError(err); ok {
		return distErr
	}

	return Wrap(err, category, code, message)
}
