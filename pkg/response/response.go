package response

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Success bool           `json:"success"`
	Error   *ResponseError `json:"error,omitempty"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error codes
type ErrCode string

var (
	FAILED_REQUEST    ErrCode = "REQUEST_FAILED"
	BAD_REQUEST       ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED ErrCode = "VALIDATION_FAILED"
	NOT_FOUND         ErrCode = "NOT_FOUND"
	LOCKED            ErrCode = "LOCKED"
	CONFLICT          ErrCode = "CONFLICT"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrLocked     = errors.New("resource is locked")
	ErrConflict   = errors.New("conflict")
)

// FieldError is a validation failure attached to one request field.
// It matches ErrValidation with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func NewFieldError(field, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

func OK() Response {
	return Response{Success: true}
}

func Error(code ErrCode, msg string) Response {
	return Response{
		Error: &ResponseError{
			Code:    string(code),
			Message: msg,
		},
	}
}

func FieldErrors(fields map[string]string) Response {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	resp := Error(VALIDATION_FAILED, "invalid fields: "+strings.Join(names, ", "))
	resp.Error.Fields = fields

	return resp
}

func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string]string, len(errs))

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			fields[err.Field()] = "field is required"
		case "min", "gte":
			fields[err.Field()] = fmt.Sprintf("must be at least %s", err.Param())
		case "max", "lte":
			fields[err.Field()] = fmt.Sprintf("must be at most %s", err.Param())
		case "gt", "gtfield":
			fields[err.Field()] = fmt.Sprintf("must be after %s", err.Param())
		case "oneof":
			fields[err.Field()] = fmt.Sprintf("must be one of [%s]", err.Param())
		case "datetime":
			fields[err.Field()] = fmt.Sprintf("must match layout %s", err.Param())
		default:
			fields[err.Field()] = "field is invalid"
		}
	}

	return FieldErrors(fields)
}
