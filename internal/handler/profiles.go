package handler

import (
	"net/http"

	"github.com/sakif/todo-api/internal/respond"
	"github.com/sakif/todo-api/internal/service"
)

// ProfileHandler serves /userprofiles.
type ProfileHandler struct {
	profiles *service.ProfileService
	bind     *Binder
}

func NewProfileHandler(profiles *service.ProfileService, bind *Binder) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, bind: bind}
}

type createProfileRequest struct {
	UserID    string  `json:"user_id"`
	Bio       *string `json:"bio" validate:"omitempty,max=250"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=250,url"`
}

type updateProfileRequest struct {
	Bio       *string `json:"bio" validate:"omitempty,max=250"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=250,url"`
}

func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	profiles, err := h.profiles.List(r.Context(), opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profiles)
}

func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), pathID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}

// HandleCreate: POST /userprofiles. user_id defaults to the caller.
func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	profile, err := h.profiles.Create(r.Context(), principal(r), service.CreateProfileInput{
		UserID:    req.UserID,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	profile, err := h.profiles.Update(r.Context(), principal(r), pathID(r), service.UpdateProfileInput{
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), principal(r), pathID(r)); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
