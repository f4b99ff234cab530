package handler

import (
	"net/http"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
	"github.com/sakif/todo-api/internal/respond"
	"github.com/sakif/todo-api/internal/service"
)

// ProductHandler serves /products. Reads are public, writes admin-only.
type ProductHandler struct {
	products *service.ProductService
	bind     *Binder
}

func NewProductHandler(products *service.ProductService, bind *Binder) *ProductHandler {
	return &ProductHandler{products: products, bind: bind}
}

type createProductRequest struct {
	Title       string              `json:"title" validate:"required,max=50"`
	Price       int                 `json:"price" validate:"min=0"`
	Count       int                 `json:"count" validate:"min=0"`
	Description string              `json:"description"`
	Status      model.ProductStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	IsFeatured  bool                `json:"is_featured"`
}

type updateProductRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=50"`
	Price       *int                 `json:"price" validate:"omitempty,min=0"`
	Count       *int                 `json:"count" validate:"omitempty,min=0"`
	Description *string              `json:"description"`
	Status      *model.ProductStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	IsFeatured  *bool                `json:"is_featured"`
}

// HandleList: GET /products?status=PUBLISHED&featured=true&limit=&offset=
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	featured, err := boolQuery(r, "featured")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter := repository.ProductFilter{
		Status:   model.ProductStatus(r.URL.Query().Get("status")),
		Featured: featured,
	}
	products, err := h.products.List(r.Context(), filter, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), pathID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	product, err := h.products.Create(r.Context(), service.CreateProductInput{
		Title:       req.Title,
		Price:       req.Price,
		Count:       req.Count,
		Description: req.Description,
		Status:      req.Status,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := h.bind.JSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	product, err := h.products.Update(r.Context(), pathID(r), service.UpdateProductInput{
		Title:       req.Title,
		Price:       req.Price,
		Count:       req.Count,
		Description: req.Description,
		Status:      req.Status,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), pathID(r)); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
