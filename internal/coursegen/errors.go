package coursegen

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnknownKind          Code = "unknown_kind"
	CodeMissingRequiredField Code = "missing_required_field"
	CodeInvalidInput         Code = "invalid_input"
	CodeParse                Code = "parse_error"
	CodeValidation           Code = "validation_error"
	CodeTransport            Code = "transport_error"
	CodeQuota                Code = "quota_error"
	CodeService              Code = "service_error"
	CodeStorage              Code = "storage_error"
	CodeNotFound             Code = "not_found"
)

// Error is the typed failure returned by every stage of a generation run.
// Field is set for input and shape failures.
type Error struct {
	Code  Code
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Field)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, coursegen.ErrParse).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

var (
	ErrUnknownKind          = &Error{Code: CodeUnknownKind}
	ErrMissingRequiredField = &Error{Code: CodeMissingRequiredField}
	ErrInvalidInput         = &Error{Code: CodeInvalidInput}
	ErrParse                = &Error{Code: CodeParse}
	ErrValidation           = &Error{Code: CodeValidation}
	ErrTransport            = &Error{Code: CodeTransport}
	ErrQuota                = &Error{Code: CodeQuota}
	ErrService              = &Error{Code: CodeService}
	ErrStorage              = &Error{Code: CodeStorage}
	ErrNotFound             = &Error{Code: CodeNotFound}
)

func NewError(code Code, field string, err error) *Error {
	return &Error{Code: code, Field: field, Err: err}
}

func Errorf(code Code, field string, format string, args ...any) *Error {
	return &Error{Code: code, Field: field, Err: fmt.Errorf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) && ce != nil {
		return ce.Code
	}
	return ""
}
