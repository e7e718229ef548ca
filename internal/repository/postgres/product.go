package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, workspace_id, name, description, price, category, sku, is_active, created_by, created_at, updated_at`

// ProductRepository handles product catalog data access
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var p domain.Product
	dest := append([]any{
		&p.ID,
		&p.WorkspaceID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.SKU,
		&p.IsActive,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		p.ID,
		p.WorkspaceID,
		p.Name,
		p.Description,
		p.Price,
		p.Category,
		p.SKU,
		p.IsActive,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("a product with this SKU already exists")
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product of the workspace, active or not
func (r *ProductRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE workspace_id = $1 AND id = $2`

	p, err := scanProduct(r.db.Pool.QueryRow(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// List returns a page of products and the total match count
func (r *ProductRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.ProductFilter) ([]domain.Product, int, error) {
	var where whereBuilder
	where.add("workspace_id = ?", workspaceID)
	if !filter.IncludeInactive {
		where.raw("is_active")
	}
	if filter.Category != "" {
		where.add("category = ?", filter.Category)
	}
	if filter.Search != "" {
		where.add("name ILIKE ?", "%"+filter.Search+"%")
	}

	query := `
		SELECT ` + productColumns + `, COUNT(*) OVER()
		FROM products
		` + where.sql() + `
		` + orderBy(domain.ProductSortColumns, filter.SortBy, "name", filter.SortOrder) + `
		` + where.page(filter.Page)

	rows, err := r.db.Pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	total := 0
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	if len(products) == 0 {
		if total, err = r.db.countPastPage(ctx, "products", &where, filter.Page); err != nil {
			return nil, 0, err
		}
	}

	return products, total, nil
}

// Update applies the provided fields; soft delete is an update of is_active
func (r *ProductRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, update *domain.ProductUpdate) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    price = COALESCE($5, price),
		    category = COALESCE($6, category),
		    sku = COALESCE($7, sku),
		    is_active = COALESCE($8, is_active),
		    updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.Pool.QueryRow(ctx, query,
		workspaceID,
		id,
		update.Name,
		update.Description,
		update.Price,
		update.Category,
		update.SKU,
		update.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, domain.Conflict("a product with this SKU already exists")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// Categories lists the distinct categories of active products
func (r *ProductRepository) Categories(ctx context.Context, workspaceID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT category FROM products
		WHERE workspace_id = $1 AND is_active AND category <> ''
		ORDER BY category
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
