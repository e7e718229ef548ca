package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a workspace-scoped catalog item. Products are soft-deleted by
// clearing IsActive.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspaceId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	SKU         string     `json:"sku,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProductCreate represents product creation data
type ProductCreate struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gte=0,lte=100000000"`
	Category    string  `json:"category" validate:"required,max=100"`
	SKU         string  `json:"sku" validate:"omitempty,max=64"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// ProductUpdate represents product update data; nil fields are left untouched
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0,lte=100000000"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	SKU         *string  `json:"sku,omitempty" validate:"omitempty,max=64"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// Empty reports whether the update carries no changes
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.SKU == nil && u.IsActive == nil
}

// ProductSortColumns maps accepted sortBy values to columns
var ProductSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"category":   "category",
	"created_at": "created_at",
	"createdAt":  "created_at",
}

// ProductFilter narrows the product listing
type ProductFilter struct {
	IncludeInactive bool
	Category        string
	Search          string
	SortBy          string
	SortOrder       SortOrder
	Page            PageRequest
}

// ProductRepository defines the interface for product storage
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Product, error)
	List(ctx context.Context, workspaceID uuid.UUID, filter ProductFilter) ([]Product, int, error)
	Update(ctx context.Context, workspaceID, id uuid.UUID, update *ProductUpdate) (*Product, error)
	Categories(ctx context.Context, workspaceID uuid.UUID) ([]string, error)
}
