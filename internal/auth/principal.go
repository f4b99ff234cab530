package auth

import (
	"context"

	"github.com/sakif/todo-api/internal/model"
)

// Principal is the authenticated caller, as read from a validated token.
type Principal struct {
	UserID   string
	Username string
	Role     model.Role
}

// IsAdmin reports whether the caller has the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// CanActOn reports whether the caller may modify a resource owned by
// ownerID: admins may modify anything, users only their own resources.
func (p *Principal) CanActOn(ownerID string) bool {
	return p != nil && (p.Role == model.RoleAdmin || p.UserID == ownerID)
}

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. Using a package-private type
// prevents collisions: only THIS package can create a key of type
// contextKey, so only this package can read or write the principal.
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated caller.
//
// Returns (nil, false) if the request is anonymous (no valid token was present).
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
