package service

// AuthService is the business logic layer for authentication:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UnitOfWork.Users (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// WHAT THIS SERVICE DOES NOT DO:
//   - It does NOT read HTTP requests or write tokens to responses
//   - It does NOT validate tokens on each request (auth.RequireAuth does)

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/config"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// AuthService registers users, checks credentials and issues tokens.
type AuthService struct {
	tx        repository.Transactor
	users     *UserService
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	tx repository.Transactor,
	users *UserService,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		tx:        tx,
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user and the issued token so the
// handler can respond in one step.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

func errInvalidCredentials() error {
	return apperror.Unauthorized("invalid_credentials", "errors.auth.invalid_credentials", "Incorrect username or password")
}

// Register creates a USER account. Self-registration can never grant ADMIN.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	return s.users.Create(ctx, CreateUserInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     model.RoleUser,
	})
}

// Login checks the credentials and issues an access token. login is a
// username, or an email when it contains "@".
//
// Unknown users and wrong passwords produce the same error, and an
// unknown user still costs one bcrypt comparison, so neither the
// response nor its timing tells which usernames exist.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)

	user, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.User, error) {
		if strings.Contains(login, "@") {
			return uow.Users().GetByEmail(ctx, strings.ToLower(login))
		}
		return uow.Users().GetByUsername(ctx, login)
	})
	if err != nil {
		if isNotFound(err) {
			s.passwords.VerifyNothing(password)
			return nil, errInvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", login, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("login failed", slog.String("username", user.Username))
			return nil, errInvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: verifying password of %s: %w", user.ID, err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID), slog.String("username", user.Username))
	return &AuthResult{User: user, Token: token, ExpiresAt: time.Now().Add(s.tokens.TTL())}, nil
}

// Me returns the account behind an authenticated principal. A token for a
// deleted account is treated as invalid.
func (s *AuthService) Me(ctx context.Context, p *auth.Principal) (*model.User, error) {
	if err := requireActor(p); err != nil {
		return nil, err
	}
	user, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.User, error) {
		return uow.Users().GetByID(ctx, p.UserID)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorized("invalid_token", "errors.auth.invalid_token", "Could not validate credentials")
		}
		return nil, fmt.Errorf("service/auth: loading %s: %w", p.UserID, err)
	}
	return user, nil
}

// EnsureAdmin creates the configured admin account, or promotes the
// existing account with that username to ADMIN. It does nothing when no
// admin is configured. It reports whether anything changed.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}

	changed, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (bool, error) {
		existing, found, err := exists(ctx, uow.Users().GetByUsername, cfg.Username)
		if err != nil {
			return false, err
		}
		if found {
			if existing.Role == model.RoleAdmin {
				return false, nil
			}
			return true, uow.Users().Update(ctx, existing.ID, repository.Fields{"role": string(model.RoleAdmin)})
		}

		_, err = s.users.create(ctx, uow, CreateUserInput{
			Username: cfg.Username,
			Email:    cfg.Email,
			Password: cfg.Password,
			Role:     model.RoleAdmin,
		})
		return err == nil, err
	})
	if err != nil {
		return false, fmt.Errorf("service/auth: ensuring admin %q: %w", cfg.Username, err)
	}

	if changed {
		s.logger.Info("admin account ensured", slog.String("username", cfg.Username))
	}
	return changed, nil
}
