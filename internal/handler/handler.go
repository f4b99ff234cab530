// Package handler contains the HTTP handlers of the API.
//
// A HANDLER'S JOB (and nothing more):
//  1. Decode the request: path params, query string, JSON body
//  2. Validate the body against its struct tags
//  3. Call ONE service method
//  4. Encode the result, or hand the error to respond.Error
//
// Business rules, permissions and transactions live in package service.
// Handlers never touch the database.
//
// REQUEST STRUCTS:
// Each endpoint decodes into its own unexported request struct with
// `validate` tags. Update requests use pointer fields: nil means "not sent"
// and leaves the stored value alone, which makes PUT and PATCH partial
// updates.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/i18n"
	"github.com/sakif/todo-api/internal/repository"
	"github.com/sakif/todo-api/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Binder decodes and validates request bodies. Validation messages are
// translated into the request's locale.
type Binder struct {
	bundle *i18n.Bundle
}

func NewBinder(bundle *i18n.Bundle) *Binder {
	return &Binder{bundle: bundle}
}

// JSON decodes the body into dst and validates it.
//
// An empty body decodes as {}: for updates that means "change nothing",
// for creates the required-field checks then report what is missing.
// Malformed JSON is a 400; failed validation is a 422 listing every field.
func (b *Binder) JSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.BadRequest("errors.request.malformed_body", "Request body is not valid JSON")
	}
	return b.Validate(r, dst)
}

// Validate runs struct validation on v.
func (b *Binder) Validate(r *http.Request, v any) error {
	err := b.bundle.Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.Invalid(b.bundle.ValidationFields(i18n.FromContext(r.Context()), verrs))
	}
	return fmt.Errorf("handler: validating request: %w", err)
}

// ===== QUERY HELPERS =====

func invalidQuery(name string) error {
	e := apperror.BadRequest("errors.request.invalid_query", "Invalid query parameter "+name)
	e.Params = []string{name}
	e.Field = name
	return e
}

// intQuery parses an optional integer query parameter; absent means 0.
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQuery(name)
	}
	return n, nil
}

// boolQuery parses an optional boolean query parameter; absent means nil.
func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidQuery(name)
	}
	return &b, nil
}

// page reads ?limit= and ?offset= and applies the service's bounds.
func page(r *http.Request) (repository.ListOptions, error) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		return repository.ListOptions{}, err
	}
	offset, err := intQuery(r, "offset")
	if err != nil {
		return repository.ListOptions{}, err
	}
	return service.Page(limit, offset), nil
}

// principal returns the caller, or nil on anonymous routes.
func principal(r *http.Request) *auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
