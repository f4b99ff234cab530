package handler

import (
	"net/http"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/repository"
	"github.com/sakif/todo-api/internal/respond"
	"github.com/sakif/todo-api/internal/service"
)

// TodoHandler serves /todos. Every todo in a response carries its owner
// ("user") and its tags.
type TodoHandler struct {
	todos *service.TodoService
	bind  *Binder
}

func NewTodoHandler(todos *service.TodoService, bind *Binder) *TodoHandler {
	return &TodoHandler{todos: todos, bind: bind}
}

type createTodoRequest struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=250"`
	Completed   bool     `json:"completed"`
	UserID      string   `json:"user_id"`
	TagIDs      []string `json:"tag_ids" validate:"omitempty,dive,required"`
}

type updateTodoRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=250"`
	Completed   *bool     `json:"completed"`
	UserID      *string   `json:"user_id" validate:"omitempty,min=1"`
	TagIDs      *[]string `json:"tag_ids"`
}

// HandleList lists todos.
//
// HTTP: GET /todos?completed=true&user_id=...&mine=true&limit=&offset=
//
// mine=true restricts the list to the caller's todos and requires a token;
// it takes precedence over user_id.
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	completed, err := boolQuery(r, "completed")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	mine, err := boolQuery(r, "mine")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter := repository.TodoFilter{UserID: r.URL.Query().Get("user_id"), Completed: completed}
	if mine != nil && *mine {
		p := principal(r)
		if p == nil {
			respond.Error(w, r, apperror.Unauthorized("not_authenticated", "errors.auth.not_authenticated", "Not authenticated"))
			return
		}
		filter.UserID = p.UserID
	}

	todos, err := h.todos.List(r.Context(), filter, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	todo, err := h.todos.Get(r.Context(), pathID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, todo)
}

// HandleCreate: POST /todos
// REQUEST BODY: {"title": "...", "description": "...", "tag_ids": ["..."]}
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	todo, err := h.todos.Create(r.Context(), principal(r), service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		UserID:      req.UserID,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTodoRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	todo, err := h.todos.Update(r.Context(), principal(r), pathID(r), service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		UserID:      req.UserID,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.todos.Delete(r.Context(), principal(r), pathID(r)); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
