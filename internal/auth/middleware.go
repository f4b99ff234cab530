package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/respond"
)

// Errors reported to clients for token problems. Each is rendered as
// 401 with a "WWW-Authenticate: Bearer" header.
func errNotAuthenticated() error {
	return apperror.Unauthorized("not_authenticated", "errors.auth.not_authenticated", "Not authenticated")
}

func errTokenExpired() error {
	return apperror.Unauthorized("token_expired", "errors.auth.token_expired", "Token has expired")
}

func errInvalidToken() error {
	return apperror.Unauthorized("invalid_token", "errors.auth.invalid_token", "Invalid token")
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the bearer token, validates it, and stores the Principal in the
// request context. If the token is missing or invalid, it answers 401 and
// stops the request chain.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. Chi applies middlewares in a chain:
// req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := extractToken(r)
			if !ok {
				respond.Error(w, r, errNotAuthenticated())
				return
			}

			p, err := tokens.Validate(raw)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					respond.Error(w, r, errTokenExpired())
					return
				}
				respond.Error(w, r, errInvalidToken())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth extracts the caller if a valid token is present, but does
// NOT block the request if it's missing or invalid.
//
// Used on public read routes where an authenticated caller gets extra
// options (e.g. GET /todos?mine=true).
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := extractToken(r); ok {
				if p, err := tokens.Validate(raw); err == nil {
					r = r.WithContext(WithPrincipal(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 403 unless the caller has one of the roles.
// It must run after RequireAuth.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				respond.Error(w, r, errNotAuthenticated())
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respond.Error(w, r, apperror.Forbidden("Not authorized"))
		})
	}
}

// extractToken reads "Authorization: Bearer <token>". The "token" cookie is
// accepted as a fallback for browser clients.
func extractToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}

	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
