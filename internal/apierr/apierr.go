package apierr

import "net/http"

// FieldError carries one per-field validation message, preserved
// verbatim in the error envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single structured error raised anywhere in the request
// path and translated into the error envelope at the outermost handler
// boundary.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func BadRequestFields(message string, fields []FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Fields: fields}
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}
