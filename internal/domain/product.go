package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinStock is the low-stock threshold applied when none is given.
const DefaultMinStock = 5

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Code        string          `json:"code" db:"code"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	Brand       string          `json:"brand" db:"brand"`
	Model       string          `json:"model" db:"model"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	MinStock    int             `json:"min_stock" db:"min_stock"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the product is at or below its threshold.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// NormalizeProductCode trims and upper-cases a product code.
func NormalizeProductCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
