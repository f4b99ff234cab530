package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/respond"
)

// whoami echoes the caller's id, or "anonymous".
func whoami(w http.ResponseWriter, r *http.Request) {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		_, _ = w.Write([]byte(p.UserID))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func newTestRouter(ts *TokenService) http.Handler {
	r := chi.NewRouter()
	r.With(RequireAuth(ts)).Get("/private", whoami)
	r.With(OptionalAuth(ts)).Get("/public", whoami)
	r.With(RequireAuth(ts), RequireRole(model.RoleAdmin)).Get("/admin", whoami)
	return r
}

func do(t *testing.T, h http.Handler, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body respond.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.ErrorCode
}

// =========================================================================
// RequireAuth
// =========================================================================

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	h := newTestRouter(ts)

	valid, _ := ts.Generate(testUser("u1", model.RoleUser))
	expired, _ := ts.GenerateWithDuration(testUser("u1", model.RoleUser), -time.Minute)

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"no header", "", http.StatusUnauthorized, "not_authenticated"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "not_authenticated"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "not_authenticated"},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized, "invalid_token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "token_expired"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, "/private", tc.header)
			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCode != "" {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.Equal(t, tc.wantCode, errorCode(t, rec))
			} else {
				assert.Equal(t, "u1", rec.Body.String())
			}
		})
	}
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate(testUser("u1", model.RoleUser))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	newTestRouter(ts).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

// =========================================================================
// OptionalAuth
// =========================================================================

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	h := newTestRouter(ts)
	valid, _ := ts.Generate(testUser("u1", model.RoleUser))

	assert.Equal(t, "anonymous", do(t, h, "/public", "").Body.String())
	assert.Equal(t, "anonymous", do(t, h, "/public", "Bearer broken").Body.String())
	assert.Equal(t, "u1", do(t, h, "/public", "Bearer "+valid).Body.String())
}

// =========================================================================
// RequireRole
// =========================================================================

func TestRequireRole(t *testing.T) {
	ts := newTestTokenService(t)
	h := newTestRouter(ts)

	user, _ := ts.Generate(testUser("u1", model.RoleUser))
	admin, _ := ts.Generate(testUser("a1", model.RoleAdmin))

	rec := do(t, h, "/admin", "Bearer "+user)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	rec = do(t, h, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", rec.Body.String())
}

func TestPrincipal_CanActOn(t *testing.T) {
	user := &Principal{UserID: "u1", Role: model.RoleUser}
	admin := &Principal{UserID: "a1", Role: model.RoleAdmin}
	var nobody *Principal

	assert.True(t, user.CanActOn("u1"))
	assert.False(t, user.CanActOn("u2"))
	assert.True(t, admin.CanActOn("u2"))
	assert.False(t, nobody.CanActOn("u1"))
	assert.False(t, nobody.IsAdmin())
}
