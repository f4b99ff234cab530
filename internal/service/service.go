// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → enforces rules, authorizes, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// WHY A SEPARATE SERVICE LAYER?
//  1. TESTING: business rules are tested with plain Go calls, no HTTP.
//  2. REUSE: the CLI (admin seeding) calls the same code as the handlers.
//  3. SEPARATION: handlers know HTTP, repositories know SQL, and services
//     know neither.
//
// TRANSACTIONS:
// Every service method runs inside exactly one unit of work, opened with
// repository.Within (or repository.Query when it returns a value). A
// method that writes several rows (a todo and its tags, a user and a role
// check) therefore commits all of them or none.
//
// ERRORS:
// Services return *apperror.AppError values (wrapped with context). The
// handler maps them to HTTP status codes; nothing here knows about HTTP.
package service

import (
	"context"
	"errors"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/repository"
)

// Pagination limits applied to every list operation.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Page normalizes client pagination: a missing or non-positive limit
// becomes DefaultListLimit, larger limits are capped at MaxListLimit and a
// negative offset becomes 0.
func Page(limit, offset int) repository.ListOptions {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return repository.ListOptions{Limit: limit, Offset: max(offset, 0)}
}

// isNotFound reports whether err is a not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

// requireOwner fails with Forbidden unless actor may modify a resource
// owned by ownerID.
func requireOwner(actor *auth.Principal, ownerID string) error {
	if !actor.CanActOn(ownerID) {
		return apperror.Forbidden("Not authorized")
	}
	return nil
}

// requireActor fails with an authentication error when there is no caller.
func requireActor(actor *auth.Principal) error {
	if actor == nil {
		return apperror.Unauthorized("not_authenticated", "errors.auth.not_authenticated", "Not authenticated")
	}
	return nil
}

// exists runs a lookup and turns "not found" into false.
func exists[T any](ctx context.Context, get func(context.Context, string) (*T, error), key string) (*T, bool, error) {
	v, err := get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}
