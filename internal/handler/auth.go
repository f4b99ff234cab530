package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/respond"
	"github.com/sakif/todo-api/internal/service"
)

// AuthHandler handles registration, login and the current-user endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	bind   *Binder
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, bind *Binder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, bind: bind, logger: logger}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,excludes=@"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// HandleRegister creates a USER account.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"username": "alice", "email": "alice@example.com", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

type tokenRequest struct {
	GrantType string `json:"grant_type" validate:"omitempty,eq=password"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// HandleToken exchanges credentials for an access token.
//
// HTTP: POST /auth/token (alias POST /auth/login)
//
// OAUTH2 PASSWORD GRANT:
// The endpoint speaks the "Resource Owner Password Credentials" flow of
// RFC 6749 §4.3, so any OAuth2 client library can log in:
//
//	Content-Type: application/x-www-form-urlencoded
//	grant_type=password&username=alice&password=...
//
// A JSON body with the same fields is accepted too. The response is the
// standard token shape, encoded from oauth2.Token:
//
//	{"access_token": "<jwt>", "token_type": "bearer", "expires_in": 86400, ...}
//
// The token is also set as an HttpOnly "token" cookie so browser clients
// don't have to store it themselves.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			respond.Error(w, r, apperror.BadRequest("errors.request.malformed_body", "Request body is not a valid form"))
			return
		}
		req = tokenRequest{
			GrantType: r.PostForm.Get("grant_type"),
			Username:  r.PostForm.Get("username"),
			Password:  r.PostForm.Get("password"),
		}
		if err := h.bind.Validate(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	} else if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respond.JSON(w, http.StatusOK, &oauth2.Token{
		AccessToken: res.Token,
		TokenType:   "bearer",
		Expiry:      res.ExpiresAt.UTC(),
		ExpiresIn:   int64(time.Until(res.ExpiresAt).Seconds()),
	})
}

// HandleLogout clears the token cookie.
//
// HTTP: POST /auth/logout
//
// Since tokens are stateless JWTs, "logout" only deletes the client-side
// cookie. A bearer token held elsewhere stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respond.NoContent(w)
}

// HandleMe returns the authenticated user.
//
// HTTP: GET /auth/me
// Auth: Required (RequireAuth puts the Principal in the context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), principal(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
