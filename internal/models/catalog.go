package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSizeOption represents the size variant of a product
type ProductSizeOption string

const (
	SizeNone   ProductSizeOption = "none"
	SizeSmall  ProductSizeOption = "small"
	SizeMedium ProductSizeOption = "medium"
	SizeLarge  ProductSizeOption = "large"
)

// Product represents a sellable drink or dish
type Product struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProductSize is a priced size variant of a product
type ProductSize struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	ProductID uuid.UUID         `db:"product_id" json:"product_id"`
	Size      ProductSizeOption `db:"size" json:"size"`
	Price     decimal.Decimal   `db:"price" json:"price"`

	// Joined from products
	ProductName      string `db:"product_name" json:"product_name,omitempty"`
	ProductAvailable bool   `db:"product_available" json:"-"`
}

// Topping is an add-on; its sale price lives on the product_toppings junction
type Topping struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
}

// ProductTopping carries the price of a topping for one specific product,
// distinct from anything on the topping row itself.
type ProductTopping struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	ProductID uuid.UUID       `db:"product_id" json:"product_id"`
	ToppingID uuid.UUID       `db:"topping_id" json:"topping_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
}
