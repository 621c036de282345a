package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chai-nz/cafe-service/internal/models"
)

// CatalogRepository resolves product/size/topping records and prices.
// Read-only from the ordering core's perspective.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetProductSize retrieves a product size with its product name and
// availability flag
func (r *CatalogRepository) GetProductSize(ctx context.Context, id uuid.UUID) (*models.ProductSize, error) {
	query := `
		SELECT ps.id, ps.product_id, ps.size, ps.price,
		       p.name AS product_name, p.is_available AS product_available
		FROM product_sizes ps
		JOIN products p ON ps.product_id = p.id
		WHERE ps.id = $1
	`

	var size models.ProductSize
	err := r.db.GetContext(ctx, &size, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product size: %w", err)
	}

	return &size, nil
}

// GetTopping retrieves a topping by ID
func (r *CatalogRepository) GetTopping(ctx context.Context, id uuid.UUID) (*models.Topping, error) {
	query := `SELECT id, name, is_available FROM toppings WHERE id = $1`

	var topping models.Topping
	err := r.db.GetContext(ctx, &topping, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topping: %w", err)
	}

	return &topping, nil
}

// GetProductTopping retrieves the junction row carrying the price of a
// topping for a specific product. Returns nil when the product does not
// offer the topping.
func (r *CatalogRepository) GetProductTopping(ctx context.Context, productID, toppingID uuid.UUID) (*models.ProductTopping, error) {
	query := `
		SELECT id, product_id, topping_id, price
		FROM product_toppings
		WHERE product_id = $1 AND topping_id = $2
	`

	var pt models.ProductTopping
	err := r.db.GetContext(ctx, &pt, query, productID, toppingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product topping: %w", err)
	}

	return &pt, nil
}
