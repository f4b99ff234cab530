// Package apperror defines the domain errors shared by every layer.
//
// ERROR SHAPE:
// An AppError carries everything the HTTP layer needs to render a response
// without knowing which service produced it:
//   - Err     → a sentinel (ErrNotFound, ErrConflict, ...) that decides the status code
//   - Code    → machine-readable code, e.g. "todo_not_found"
//   - Key     → message catalogue key, e.g. "errors.todo.not_found"
//   - Params  → positional values substituted into the translated message ({0}, {1})
//   - Message → English text, used when no translation is available
//
// The per-resource codes follow one pattern: "<resource>_<kind>" with the key
// "errors.<resource>.<kind>". That gives every domain (user, todo, tag, ...)
// its own not_found / already_exists / validation_error / integrity_error
// family without a type per combination.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrIntegrity    = errors.New("integrity violation")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("unavailable")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // sentinel, decides the HTTP status
	Code    string       // machine-readable error code
	Key     string       // message catalogue key
	Params  []string     // positional message parameters
	Message string       // English fallback message
	Field   string       // optional: field causing the error
	Fields  []FieldError // optional: per-field validation errors
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing record of the given resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    resource + "_not_found",
		Key:     "errors." + resource + ".not_found",
		Params:  []string{id},
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// AlreadyExists reports a uniqueness violation. field may be empty when the
// violated constraint is not known.
func AlreadyExists(resource, field string) *AppError {
	msg := fmt.Sprintf("%s already exists", resource)
	if field != "" {
		msg = fmt.Sprintf("%s with this %s already exists", resource, field)
	}
	return &AppError{
		Err:     ErrConflict,
		Code:    resource + "_already_exists",
		Key:     "errors." + resource + ".already_exists",
		Params:  []string{field},
		Message: msg,
		Field:   field,
	}
}

// Integrity reports a violated relational constraint (unknown foreign key,
// missing required reference). HTTP handlers map this to 400.
func Integrity(resource string) *AppError {
	return &AppError{
		Err:     ErrIntegrity,
		Code:    resource + "_integrity_error",
		Key:     "errors." + resource + ".integrity_error",
		Message: fmt.Sprintf("%s violates a data integrity constraint", resource),
	}
}

// ValidationFailed reports a single invalid field detected by business rules.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    "validation_error",
		Key:     "errors.validation.field",
		Params:  []string{field, message},
		Message: message,
		Field:   field,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

// Invalid reports a request body that failed struct validation.
// The field messages are expected to be translated already.
func Invalid(fields []FieldError) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    "validation_error",
		Key:     "errors.validation.failed",
		Message: "Invalid input",
		Fields:  fields,
	}
}

// BadRequest reports a request that could not be parsed at all.
func BadRequest(key, message string) *AppError {
	return &AppError{
		Err:     ErrBadRequest,
		Code:    "bad_request",
		Key:     key,
		Message: message,
	}
}

// Unauthorized reports missing or unusable credentials.
func Unauthorized(code, key, message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Code:    code,
		Key:     key,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Code:    "forbidden",
		Key:     "errors.auth.forbidden",
		Message: message,
	}
}

// Unavailable reports that a backing resource (the database) cannot be reached.
func Unavailable(resource string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Code:    resource + "_connection_error",
		Key:     "errors." + resource + ".connection_error",
		Message: fmt.Sprintf("%s is unavailable", resource),
	}
}
