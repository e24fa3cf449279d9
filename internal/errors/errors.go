package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if an AppError is anywhere in the chain,
// otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode checks whether the error chain carries the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Pipeline error codes. The first four identify per-sheet structural
// failures; DATASET_NOT_FOUND is the consumer-facing miss.
const (
	CodeHeaderNotFound        = "HEADER_NOT_FOUND"
	CodeHeaderAmbiguous       = "HEADER_AMBIGUOUS"
	CodeColumnUnresolved      = "COLUMN_UNRESOLVED"
	CodeHierarchyInconsistent = "HIERARCHY_INCONSISTENT"
	CodeDatasetNotFound       = "DATASET_NOT_FOUND"
	CodeInputInvalid          = "INPUT_INVALID"
	CodeStoreError            = "STORE_ERROR"
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeInternalError         = "INTERNAL_ERROR"
)

// Common error constructors
func HeaderNotFound(sheet string) *AppError {
	return New(CodeHeaderNotFound, fmt.Sprintf("no header band detected in sheet %s", sheet))
}

func HeaderAmbiguous(sheet string, rows int) *AppError {
	return New(CodeHeaderAmbiguous, fmt.Sprintf("header band in sheet %s spans %d rows, refusing to guess", sheet, rows))
}

func ColumnUnresolved(label string, index int) *AppError {
	return New(CodeColumnUnresolved, fmt.Sprintf("column %d (%q) matched no classification heuristic", index, label))
}

func HierarchyInconsistent(row int, message string) *AppError {
	return New(CodeHierarchyInconsistent, fmt.Sprintf("row %d: %s", row, message))
}

func DatasetNotFound(country, view string) *AppError {
	return New(CodeDatasetNotFound, fmt.Sprintf("no committed %s view for country %s", view, country))
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func StoreError(message string) *AppError {
	return New(CodeStoreError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInputInvalid, message)
}
