package service

import (
	"context"
	"strings"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
)

const resourceProduct = "product"

// ProductService handles product catalog operations
type ProductService struct {
	products domain.ProductRepository
	audit    Auditor
	now      func() time.Time
}

// NewProductService creates a new product service
func NewProductService(products domain.ProductRepository, auditor Auditor) *ProductService {
	return &ProductService{
		products: products,
		audit:    auditor,
		now:      time.Now,
	}
}

// List returns the catalog. Inactive products are only listed for managers
// that ask for them.
func (s *ProductService) List(ctx context.Context, actor domain.Actor, filter domain.ProductFilter) (page *domain.Page[domain.Product], err error) {
	op := newOperation(actor, resourceProduct, domain.ActionProductsListed, domain.ActionProductFailed)
	op.set("operation", "list")
	defer func() { op.finish(ctx, s.audit, err) }()

	if !actor.Role.IsManager() {
		filter.IncludeInactive = false
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page = filter.Page.Normalize()
	filter.SortOrder = domain.ParseSortOrder(string(filter.SortOrder), domain.SortAsc)

	products, total, err := s.products.List(ctx, actor.WorkspaceID, filter)
	if err != nil {
		return nil, domain.Internal("failed to list products", err)
	}
	op.set("count", len(products))

	return &domain.Page[domain.Product]{Items: products, Pagination: domain.NewPagination(filter.Page, total)}, nil
}

// Get retrieves a product by id, including soft-deleted ones
func (s *ProductService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (product *domain.Product, err error) {
	op := newOperation(actor, resourceProduct, domain.ActionProductViewed, domain.ActionProductFailed)
	op.set("operation", "get")
	op.set("productId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	product, err = s.products.GetByID(ctx, actor.WorkspaceID, id)
	if err != nil {
		return nil, domain.Internal("failed to get product", err)
	}
	if product == nil {
		return nil, domain.NotFound("product")
	}

	return product, nil
}

// Create adds a product to the caller's workspace
func (s *ProductService) Create(ctx context.Context, actor domain.Actor, input domain.ProductCreate) (product *domain.Product, err error) {
	op := newOperation(actor, resourceProduct, domain.ActionProductCreated, domain.ActionProductFailed)
	op.set("operation", "create")
	defer func() { op.finish(ctx, s.audit, err) }()

	now := s.now().UTC()
	createdBy := actor.UserID
	product = &domain.Product{
		ID:          uuid.New(),
		WorkspaceID: actor.WorkspaceID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
		SKU:         strings.TrimSpace(input.SKU),
		IsActive:    true,
		CreatedBy:   &createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err = s.products.Create(ctx, product); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return nil, err
		}
		return nil, domain.Internal("failed to create product", err)
	}
	op.set("productId", product.ID.String())

	return product, nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, update domain.ProductUpdate) (product *domain.Product, err error) {
	op := newOperation(actor, resourceProduct, domain.ActionProductUpdated, domain.ActionProductFailed)
	op.set("operation", "update")
	op.set("productId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	if update.Empty() {
		return nil, domain.Invalid("no fields to update")
	}

	product, err = s.products.Update(ctx, actor.WorkspaceID, id, &update)
	if err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return nil, err
		}
		return nil, domain.Internal("failed to update product", err)
	}
	if product == nil {
		return nil, domain.NotFound("product")
	}

	return product, nil
}

// Delete soft-deletes a product. The row stays reachable by id.
func (s *ProductService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (product *domain.Product, err error) {
	op := newOperation(actor, resourceProduct, domain.ActionProductDeleted, domain.ActionProductFailed)
	op.set("operation", "delete")
	op.set("productId", id.String())
	defer func() { op.finish(ctx, s.audit, err) }()

	inactive := false
	product, err = s.products.Update(ctx, actor.WorkspaceID, id, &domain.ProductUpdate{IsActive: &inactive})
	if err != nil {
		return nil, domain.Internal("failed to delete product", err)
	}
	if product == nil {
		return nil, domain.NotFound("product")
	}

	return product, nil
}

// Categories lists the distinct categories of active products
func (s *ProductService) Categories(ctx context.Context, actor domain.Actor) (categories []string, err error) {
	op := newOperation(actor, resourceProduct, domain.ActionProductsListed, domain.ActionProductFailed)
	op.set("operation", "categories")
	defer func() { op.finish(ctx, s.audit, err) }()

	categories, err = s.products.Categories(ctx, actor.WorkspaceID)
	if err != nil {
		return nil, domain.Internal("failed to list categories", err)
	}

	return categories, nil
}
