package handler

import (
	"net/http"
	"strings"

	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/service"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns the catalog
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	filter := domain.ProductFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   q.Get("search"),
	}
	if filter.IncludeInactive, err = queryBool(q, "includeInactive"); err != nil {
		return err
	}
	if filter.Page, err = queryPage(q); err != nil {
		return err
	}
	if filter.SortBy, filter.SortOrder, err = querySort(q, domain.ProductSortColumns); err != nil {
		return err
	}

	page, err := h.productService.List(r.Context(), actor, filter)
	if err != nil {
		return err
	}

	response.OK(w, page)
	return nil
}

// Categories lists the distinct categories in use
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	categories, err := h.productService.Categories(r.Context(), actor)
	if err != nil {
		return err
	}

	response.OK(w, categories)
	return nil
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.Get(r.Context(), actor, id)
	if err != nil {
		return err
	}

	response.OK(w, product)
	return nil
}

// Create adds a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request, input domain.ProductCreate) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}

	product, err := h.productService.Create(r.Context(), actor, input)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusCreated, product, "Product created")
	return nil
}

// Update applies a partial update to a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, update domain.ProductUpdate) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.Update(r.Context(), actor, id, update)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, product, "Product updated")
	return nil
}

// Delete deactivates a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	actor, err := actorFrom(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.Delete(r.Context(), actor, id)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, product, "Product deleted")
	return nil
}
