package handler

import (
	"net/http"

	"github.com/sakif/todo-api/internal/respond"
	"github.com/sakif/todo-api/internal/service"
)

// TagHandler serves /tags.
type TagHandler struct {
	tags *service.TagService
	bind *Binder
}

func NewTagHandler(tags *service.TagService, bind *Binder) *TagHandler {
	return &TagHandler{tags: tags, bind: bind}
}

type createTagRequest struct {
	Name string `json:"name" validate:"required,max=30"`
}

type updateTagRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=30"`
}

func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	tags, err := h.tags.List(r.Context(), opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tags)
}

func (h *TagHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tags.Get(r.Context(), pathID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tag)
}

func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	tag, err := h.tags.Create(r.Context(), req.Name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTagRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	tag, err := h.tags.Update(r.Context(), pathID(r), req.Name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tag)
}

func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), pathID(r)); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
