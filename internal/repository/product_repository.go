package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techstore/internal/domain"

	"github.com/google/uuid"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID      *uuid.UUID
	Query           string
	IncludeInactive bool
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       SortOrder
}

// ProductRepository defines the interface for product data access. Methods with
// a Tx suffix run on the caller's transaction.
type ProductRepository interface {
	CreateTx(ctx context.Context, tx DBTX, product *domain.Product) error
	UpdateDetailsTx(ctx context.Context, tx DBTX, product *domain.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindViewByID(ctx context.Context, id uuid.UUID) (*domain.ProductView, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.ProductView, int, error)
	LowStock(ctx context.Context, limit int) ([]*domain.ProductView, error)
	LockForUpdateTx(ctx context.Context, tx DBTX, id uuid.UUID) (*domain.Product, error)
	SetStockTx(ctx context.Context, tx DBTX, id uuid.UUID, stock int) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.code, p.name, p.description, p.category_id, p.brand, p.model,
	p.price, p.stock, p.min_stock, p.image_url, p.active, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (*domain.Product, error) {
	product := &domain.Product{}
	dest := []any{
		&product.ID,
		&product.Code,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.Brand,
		&product.Model,
		&product.Price,
		&product.Stock,
		&product.MinStock,
		&product.ImageURL,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return product, nil
}

func scanProductView(row rowScanner) (*domain.ProductView, error) {
	var categoryName sql.NullString
	product, err := scanProduct(row, &categoryName)
	if err != nil {
		return nil, err
	}
	return &domain.ProductView{Product: *product, CategoryName: categoryName.String}, nil
}

// CreateTx inserts a new product using parameterized queries
func (r *productRepository) CreateTx(ctx context.Context, tx DBTX, product *domain.Product) error {
	query := `
		INSERT INTO products (id, code, name, description, category_id, brand, model, price,
		                      stock, min_stock, image_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Code,
		product.Name,
		product.Description,
		product.CategoryID,
		product.Brand,
		product.Model,
		product.Price,
		product.Stock,
		product.MinStock,
		product.ImageURL,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	)

	return mapError(err, "create product", domain.EntityProduct)
}

// UpdateDetailsTx updates everything except stock, which only the ledger writes.
func (r *productRepository) UpdateDetailsTx(ctx context.Context, tx DBTX, product *domain.Product) error {
	query := `
		UPDATE products
		SET code = $2, name = $3, description = $4, category_id = $5, brand = $6,
		    model = $7, price = $8, min_stock = $9, image_url = $10, active = $11
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Code,
		product.Name,
		product.Description,
		product.CategoryID,
		product.Brand,
		product.Model,
		product.Price,
		product.MinStock,
		product.ImageURL,
		product.Active,
	)
	if err != nil {
		return mapError(err, "update product", domain.EntityProduct)
	}

	return expectOneRow(result, domain.NewNotFoundError(domain.EntityProduct, product.ID))
}

// Deactivate soft-deletes a product.
func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE products SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "deactivate product", domain.EntityProduct)
	}

	return expectOneRow(result, domain.NewNotFoundError(domain.EntityProduct, id))
}

// FindByID retrieves a product by ID regardless of its active flag
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntityProduct, id)
		}
		return nil, mapError(err, "find product", domain.EntityProduct)
	}

	return product, nil
}

func (r *productRepository) FindViewByID(ctx context.Context, id uuid.UUID) (*domain.ProductView, error) {
	query := `
		SELECT ` + productColumns + `, c.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	view, err := scanProductView(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntityProduct, id)
		}
		return nil, mapError(err, "find product view", domain.EntityProduct)
	}

	return view, nil
}

// List retrieves products with optional category and text filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.ProductView, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]string{
		"name":       "p.name",
		"code":       "p.code",
		"price":      "p.price",
		"stock":      "p.stock",
		"created_at": "p.created_at",
	}

	sortColumn, ok := validSortFields[filter.SortBy]
	if !ok {
		sortColumn = "p.name"
	}

	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderAsc
	}

	conditions := []string{}
	args := []interface{}{}

	if !filter.IncludeInactive {
		conditions = append(conditions, "p.active = TRUE")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE $%[1]d OR p.code ILIKE $%[1]d OR p.brand ILIKE $%[1]d OR p.model ILIKE $%[1]d)", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products p " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "count products", domain.EntityProduct)
	}

	limit, offset := pageOffset(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`
		SELECT %s, c.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY %s %s, p.id
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortColumn, sortOrder, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	products, err := r.queryViews(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// LowStock lists active products at or below their minimum, lowest stock first.
func (r *productRepository) LowStock(ctx context.Context, limit int) ([]*domain.ProductView, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT ` + productColumns + `, c.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.active = TRUE AND p.stock <= p.min_stock
		ORDER BY p.stock ASC, p.code ASC
		LIMIT $1
	`

	return r.queryViews(ctx, query, limit)
}

func (r *productRepository) queryViews(ctx context.Context, query string, args ...any) ([]*domain.ProductView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list products", domain.EntityProduct)
	}
	defer rows.Close()

	products := []*domain.ProductView{}
	for rows.Next() {
		view, err := scanProductView(rows)
		if err != nil {
			return nil, mapError(err, "scan product", domain.EntityProduct)
		}
		products = append(products, view)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate products", domain.EntityProduct)
	}

	return products, nil
}

// LockForUpdateTx reads a product and holds its row lock until tx ends.
func (r *productRepository) LockForUpdateTx(ctx context.Context, tx DBTX, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1 FOR UPDATE`

	product, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntityProduct, id)
		}
		return nil, mapError(err, "lock product", domain.EntityProduct)
	}

	return product, nil
}

func (r *productRepository) SetStockTx(ctx context.Context, tx DBTX, id uuid.UUID, stock int) error {
	result, err := tx.ExecContext(ctx, `UPDATE products SET stock = $2 WHERE id = $1`, id, stock)
	if err != nil {
		return mapError(err, "set product stock", domain.EntityProduct)
	}

	return expectOneRow(result, domain.NewNotFoundError(domain.EntityProduct, id))
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
