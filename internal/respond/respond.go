// Package respond writes JSON responses and maps domain errors to HTTP.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//
//	{"status_code": 404, "message": "Todo not found with id abc", "error_code": "todo_not_found"}
//
// Validation failures add the offending fields:
//
//	{"status_code": 422, "message": "Invalid input", "error_code": "validation_error",
//	 "errors": [{"field": "title", "message": "title is a required field"}]}
//
// The message is localized from the request's Accept-Language (see package
// i18n). The X-ErrorHandleTime header reports how long rendering the error
// took, in seconds.
//
// WHY A SEPARATE PACKAGE?
// Handlers AND middleware (auth, recovery) both produce errors. Keeping the
// writer here lets them share one mapping without importing each other.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/i18n"
)

// ErrorBody is the standard error format returned by all API endpoints.
type ErrorBody struct {
	StatusCode int                   `json:"status_code"`
	Message    string                `json:"message"`
	ErrorCode  string                `json:"error_code"`
	Errors     []apperror.FieldError `json:"errors,omitempty"`
}

// HeaderErrorHandleTime carries the seconds spent rendering an error.
const HeaderErrorHandleTime = "X-ErrorHandleTime"

// JSON sends data as a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written. Once
// Encode writes, the headers are on the wire and later changes are
// silently ignored.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// NoContent sends 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Status maps a domain error to its HTTP status code.
//
// The service layer never knows about HTTP; it returns apperror sentinels
// and this is the one place they become status codes.
func Status(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrBadRequest), errors.Is(err, apperror.ErrIntegrity):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// internalError replaces anything that is not an *apperror.AppError.
// The raw error may contain SQL or file paths and is only logged.
var internalError = &apperror.AppError{
	Code:    "internal_error",
	Key:     "errors.app.general",
	Message: "An unexpected error occurred",
}

// Error maps err to a status code and writes the localized error body.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	start := time.Now()
	ctx := r.Context()

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = internalError
	}

	status := Status(err)
	if status == http.StatusInternalServerError {
		appErr = internalError
		slog.ErrorContext(ctx, "unhandled error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(ctx)),
		)
	}

	body := ErrorBody{
		StatusCode: status,
		Message:    i18n.Localize(ctx, appErr),
		ErrorCode:  appErr.Code,
		Errors:     appErr.Fields,
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set(HeaderErrorHandleTime, fmt.Sprintf("%.6f", time.Since(start).Seconds()))
	JSON(w, status, body)
}
