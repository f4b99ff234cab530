package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// CreateProfileInput describes a new profile. An empty UserID means the
// caller's own account.
type CreateProfileInput struct {
	UserID    string
	Bio       *string
	AvatarURL *string
}

// UpdateProfileInput is a partial update: nil fields are left untouched.
type UpdateProfileInput struct {
	Bio       *string
	AvatarURL *string
}

// ProfileService manages the one-to-one user profiles.
type ProfileService struct {
	tx     repository.Transactor
	logger *slog.Logger
}

func NewProfileService(tx repository.Transactor, logger *slog.Logger) *ProfileService {
	return &ProfileService{tx: tx, logger: logger}
}

// Create attaches a profile to a user. A user has at most one profile, and
// only the user or an admin may create it.
func (s *ProfileService) Create(ctx context.Context, actor *auth.Principal, in CreateProfileInput) (*model.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	userID := in.UserID
	if userID == "" {
		userID = actor.UserID
	}
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}

	profile, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Profile, error) {
		_, found, err := exists(ctx, uow.Profiles().GetByUserID, userID)
		if err != nil {
			return nil, err
		}
		if found {
			return nil, apperror.AlreadyExists("userprofile", "user_id")
		}

		p := &model.Profile{UserID: userID, Bio: in.Bio, AvatarURL: in.AvatarURL}
		if err := uow.Profiles().Add(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("service/profiles: creating for user %s: %w", userID, err)
	}

	s.logger.Info("profile created", slog.String("id", profile.ID), slog.String("user_id", userID))
	return profile, nil
}

func (s *ProfileService) List(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) ([]model.Profile, error) {
		return uow.Profiles().GetAll(ctx, opts)
	})
}

func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Profile, error) {
		return uow.Profiles().GetByID(ctx, id)
	})
}

// Update applies a partial update on behalf of the profile's owner or an admin.
func (s *ProfileService) Update(ctx context.Context, actor *auth.Principal, id string, in UpdateProfileInput) (*model.Profile, error) {
	profile, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Profile, error) {
		p, err := uow.Profiles().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := requireOwner(actor, p.UserID); err != nil {
			return nil, err
		}

		fields := repository.Fields{}
		if in.Bio != nil {
			fields["bio"] = *in.Bio
		}
		if in.AvatarURL != nil {
			fields["avatar_url"] = *in.AvatarURL
		}
		if len(fields) == 0 {
			return p, nil
		}

		if err := uow.Profiles().Update(ctx, id, fields); err != nil {
			return nil, err
		}
		return uow.Profiles().GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("service/profiles: updating %s: %w", id, err)
	}
	return profile, nil
}

func (s *ProfileService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	err := repository.Within(ctx, s.tx, func(uow repository.UnitOfWork) error {
		p, err := uow.Profiles().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, p.UserID); err != nil {
			return err
		}
		_, err = uow.Profiles().Delete(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("service/profiles: deleting %s: %w", id, err)
	}

	s.logger.Info("profile deleted", slog.String("id", id))
	return nil
}
