// Package errors provides categorized error types for the fee ledger service.
//
// Every error carries a category, a machine-readable code, a human-readable
// message, an optional remediation suggestion, and arbitrary context values.
// Categories map to CLI exit codes and HTTP status codes so that both the
// command-line tools and the API surface report failures consistently.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryNormalization ErrorCategory = "normalization"
	CategoryScope         ErrorCategory = "scope"
	CategoryRange         ErrorCategory = "range"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryStorage       ErrorCategory = "storage"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"
	CodeOutOfRange    ErrorCode = "out_of_range"

	// Normalization errors
	CodeMalformedRecord ErrorCode = "malformed_record"

	// Scope errors
	CodeInvalidScope ErrorCode = "invalid_scope"

	// Range errors
	CodeRangeTooLarge ErrorCode = "range_too_large"
	CodeInvalidRange  ErrorCode = "invalid_range"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Storage errors
	CodeRecordNotFound     ErrorCode = "record_not_found"
	CodeStorageUnavailable ErrorCode = "storage_unavailable"
	CodeWriteFailed        ErrorCode = "write_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// LedgerError is the base error type for all application errors
type LedgerError struct {
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
func (e *LedgerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *LedgerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation, CategoryNormalization:
		return 3
	case CategoryScope, CategoryRange, CategoryConfiguration:
		return 4
	case CategoryStorage, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// HTTPStatus returns the HTTP status code the API layer should respond with
func (e *LedgerError) HTTPStatus() int {
	switch e.Category {
	case CategoryScope, CategoryRange, CategoryValidation, CategoryParse:
		return 400
	case CategoryNormalization:
		return 422
	case CategoryStorage:
		if e.Code == CodeRecordNotFound {
			return 404
		}
		return 503
	default:
		return 500
	}
}

// WithContext adds context information to the error
func (e *LedgerError) WithContext(key string, value interface{}) *LedgerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *LedgerError) WithSuggestion(suggestion string) *LedgerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new LedgerError
func New(category ErrorCategory, code ErrorCode, message string) *LedgerError {
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with LedgerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}

	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// MalformedRecord creates a row-scoped normalization error. The row index is
// zero-based and refers to the caller's input slice, not a file line number.
func MalformedRecord(rowIndex int, field string, value interface{}, err error) *LedgerError {
	message := fmt.Sprintf("malformed record at row %d: field '%s' has invalid value %v", rowIndex, field, value)

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryNormalization, CodeMalformedRecord, message)
	} else {
		result = New(CategoryNormalization, CodeMalformedRecord, message)
	}

	return result.
		WithSuggestion("correct the row in the upload and resubmit; other rows are unaffected").
		WithContext("row_index", rowIndex).
		WithContext("field", field).
		WithContext("value", value)
}

// InvalidScope creates a scope error for reconciliation calls
func InvalidScope(field string, value interface{}) *LedgerError {
	return New(CategoryScope, CodeInvalidScope,
		fmt.Sprintf("invalid reconciliation scope: field '%s' has value %v", field, value)).
		WithSuggestion("provide a non-empty student id in the scope").
		WithContext("field", field).
		WithContext("value", value)
}

// RangeTooLarge creates a range-guard error for aggregation calls
func RangeTooLarge(days int, maxDays int) *LedgerError {
	return New(CategoryRange, CodeRangeTooLarge,
		fmt.Sprintf("requested date range spans %d days, exceeding the %d day ceiling", days, maxDays)).
		WithSuggestion("narrow the date range and retry").
		WithContext("range_days", days).
		WithContext("max_days", maxDays)
}

// InvalidRange creates an error for structurally invalid date ranges
func InvalidRange(reason string) *LedgerError {
	return New(CategoryRange, CodeInvalidRange,
		fmt.Sprintf("invalid date range: %s", reason)).
		WithSuggestion("provide a start date not after the end date")
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, file string, line int, column string, value string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in file %s", column, file)
		suggestion = "verify the file has all required columns with correct headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "correct the data format or remove the invalid entry"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '12500.00')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use date format YYYY-MM-DD or YYYY-MM-DD HH:MM:SS"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// StorageError creates a storage-related error
func StorageError(code ErrorCode, operation string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeRecordNotFound:
		message = fmt.Sprintf("record not found during %s", operation)
		suggestion = "verify the identifier and try again"
	case CodeStorageUnavailable:
		message = fmt.Sprintf("storage unavailable during %s", operation)
		suggestion = "check the database connection and try again"
	case CodeWriteFailed:
		message = fmt.Sprintf("write failed during %s", operation)
		suggestion = "retry the operation; the ledger is append-only so no partial state was left behind"
	default:
		message = fmt.Sprintf("storage error during %s", operation)
		suggestion = "check the database and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *LedgerError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	} else {
		result = New(CategoryInternal, CodeUnexpectedError, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors, used to report the
// rejected-rows outcome of a bulk normalization run.
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*LedgerError        `json:"errors"`
	SampleErrors []*LedgerError        `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*LedgerError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if len(errs) == 0 {
		summary.Errors = []*LedgerError{}
		return summary
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsLedgerError checks if an error is a LedgerError
func IsLedgerError(err error) bool {
	_, ok := err.(*LedgerError)
	return ok
}

// AsLedgerError extracts a LedgerError from an error chain
func AsLedgerError(err error) (*LedgerError, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a LedgerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}

	if ledgerErr, ok := AsLedgerError(err); ok {
		return ledgerErr
	}

	return Wrap(err, category, code, message)
}
