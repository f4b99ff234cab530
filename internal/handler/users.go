package handler

import (
	"net/http"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/respond"
	"github.com/sakif/todo-api/internal/service"
)

// UserHandler serves /users.
type UserHandler struct {
	users *service.UserService
	bind  *Binder
}

func NewUserHandler(users *service.UserService, bind *Binder) *UserHandler {
	return &UserHandler{users: users, bind: bind}
}

type createUserRequest struct {
	Username string     `json:"username" validate:"required,min=3,max=50,excludes=@"`
	Email    string     `json:"email" validate:"required,email,max=100"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

type updateUserRequest struct {
	Username *string     `json:"username" validate:"omitempty,min=3,max=50,excludes=@"`
	Email    *string     `json:"email" validate:"omitempty,email,max=100"`
	Password *string     `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *model.Role `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

// HandleList: GET /users?limit=&offset=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	users, err := h.users.List(r.Context(), opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

// HandleGet returns one user with its todos and profile.
//
// HTTP: GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), pathID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// HandleCreate: POST /users (admin only)
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

// HandleUpdate: PUT|PATCH /users/{id} (self or admin). Responds with the
// same todos-and-profile shape as HandleGet.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), principal(r), pathID(r), service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// HandleDelete: DELETE /users/{id} (admin only)
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), pathID(r)); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

// HandleTodos: GET /users/{id}/todos
func (h *UserHandler) HandleTodos(w http.ResponseWriter, r *http.Request) {
	opts, err := page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	todos, err := h.users.Todos(r.Context(), pathID(r), opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, todos)
}

// HandleProfile: GET /users/{id}/profile
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Profile(r.Context(), pathID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}
