package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductView joins a product with its category name.
type ProductView struct {
	Product
	CategoryName string `json:"category_name"`
}

// SaleSummary is a sale row with display names resolved.
type SaleSummary struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	CustomerName  string          `json:"customer_name"`
	SellerName    string          `json:"seller_name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Status        SaleStatus      `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleDetail adds customer contact data and line items to a summary.
type SaleDetail struct {
	SaleSummary
	CustomerID       *uuid.UUID     `json:"customer_id,omitempty"`
	CustomerDocument string         `json:"customer_document,omitempty"`
	CustomerEmail    string         `json:"customer_email,omitempty"`
	CustomerPhone    string         `json:"customer_phone,omitempty"`
	Notes            string         `json:"notes"`
	Items            []SaleItemView `json:"items"`
}

// SaleItemView is a sale line with product code and name.
type SaleItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// StockHistoryView is a history entry with the actor's name.
type StockHistoryView struct {
	StockHistoryEntry
	AccountName string `json:"account_name"`
}

// Dashboard aggregates the figures shown on the home screen.
type Dashboard struct {
	ActiveProducts int             `json:"active_products"`
	LowStockCount  int             `json:"low_stock_count"`
	SalesToday     int             `json:"sales_today"`
	RevenueToday   decimal.Decimal `json:"revenue_today"`
	LowStock       []ProductView   `json:"low_stock"`
	RecentSales    []SaleSummary   `json:"recent_sales"`
}

// ProductSales is one row of the best-sellers report.
type ProductSales struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// MonthlySales is one row of the monthly sales report.
type MonthlySales struct {
	Month   string          `json:"month"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}
