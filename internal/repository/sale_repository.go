package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"techstore/internal/domain"

	"github.com/google/uuid"
)

// SaleFilter narrows sale listings.
type SaleFilter struct {
	From      *time.Time
	To        *time.Time
	AccountID *uuid.UUID
	Page      int
	PageSize  int
}

// SaleRepository defines the interface for sale data access
type SaleRepository interface {
	NextNumberTx(ctx context.Context, tx DBTX) (int64, error)
	CreateTx(ctx context.Context, tx DBTX, sale *domain.Sale) error
	CreateItemTx(ctx context.Context, tx DBTX, item *domain.SaleItem) error
	FindDetail(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error)
	List(ctx context.Context, filter SaleFilter) ([]*domain.SaleSummary, int, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// NextNumberTx draws the next value of sale_number_seq. Sequence values are
// never reused, even if tx rolls back.
func (r *saleRepository) NextNumberTx(ctx context.Context, tx DBTX) (int64, error) {
	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT nextval('sale_number_seq')`).Scan(&next); err != nil {
		return 0, mapError(err, "allocate sale number", domain.EntitySale)
	}
	return next, nil
}

func (r *saleRepository) CreateTx(ctx context.Context, tx DBTX, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (id, number, customer_id, account_id, subtotal, tax, total,
		                   status, payment_method, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		sale.ID,
		sale.Number,
		sale.CustomerID,
		sale.AccountID,
		sale.Subtotal,
		sale.Tax,
		sale.Total,
		sale.Status,
		sale.PaymentMethod,
		sale.Notes,
		sale.CreatedAt,
	)

	return mapError(err, "create sale", domain.EntitySale)
}

func (r *saleRepository) CreateItemTx(ctx context.Context, tx DBTX, item *domain.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		item.ID,
		item.SaleID,
		item.ProductID,
		item.Quantity,
		item.UnitPrice,
		item.Subtotal,
	)

	return mapError(err, "create sale item", domain.EntitySale)
}

const saleSummaryColumns = `
	s.id, s.number,
	COALESCE(NULLIF(TRIM(c.first_name || ' ' || c.last_name), ''), '` + domain.AnonymousCustomerName + `'),
	COALESCE(a.full_name, ''),
	s.subtotal, s.tax, s.total, s.status, s.payment_method, s.created_at`

const saleJoins = `
	FROM sales s
	LEFT JOIN customers c ON c.id = s.customer_id
	LEFT JOIN accounts a ON a.id = s.account_id`

func scanSaleSummary(row rowScanner, extra ...any) (*domain.SaleSummary, error) {
	summary := &domain.SaleSummary{}
	dest := []any{
		&summary.ID,
		&summary.Number,
		&summary.CustomerName,
		&summary.SellerName,
		&summary.Subtotal,
		&summary.Tax,
		&summary.Total,
		&summary.Status,
		&summary.PaymentMethod,
		&summary.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return summary, nil
}

// FindDetail loads a sale with customer contact data and its line items.
func (r *saleRepository) FindDetail(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error) {
	query := `SELECT ` + saleSummaryColumns + `,
		s.customer_id, COALESCE(c.document, ''), COALESCE(c.email, ''), COALESCE(c.phone, ''), s.notes
	` + saleJoins + ` WHERE s.id = $1`

	detail := &domain.SaleDetail{}
	summary, err := scanSaleSummary(r.db.QueryRowContext(ctx, query, id),
		&detail.CustomerID,
		&detail.CustomerDocument,
		&detail.CustomerEmail,
		&detail.CustomerPhone,
		&detail.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntitySale, id)
		}
		return nil, mapError(err, "find sale", domain.EntitySale)
	}
	detail.SaleSummary = *summary

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Items = items

	return detail, nil
}

func (r *saleRepository) items(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItemView, error) {
	query := `
		SELECT i.product_id, p.code, p.name, i.quantity, i.unit_price, i.subtotal
		FROM sale_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = $1
		ORDER BY p.code
	`

	rows, err := r.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, mapError(err, "list sale items", domain.EntitySale)
	}
	defer rows.Close()

	items := []domain.SaleItemView{}
	for rows.Next() {
		var item domain.SaleItemView
		err := rows.Scan(
			&item.ProductID,
			&item.ProductCode,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		)
		if err != nil {
			return nil, mapError(err, "scan sale item", domain.EntitySale)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate sale items", domain.EntitySale)
	}

	return items, nil
}

// List returns sale summaries newest first.
func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]*domain.SaleSummary, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("s.created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("s.created_at < $%d", len(args)))
	}
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		conditions = append(conditions, fmt.Sprintf("s.account_id = $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales s "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "count sales", domain.EntitySale)
	}

	limit, offset := pageOffset(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY s.created_at DESC, s.number DESC LIMIT $%d OFFSET $%d`,
		saleSummaryColumns, saleJoins, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	sales, err := querySummaries(ctx, r.db, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func querySummaries(ctx context.Context, db DBTX, query string, args ...any) ([]*domain.SaleSummary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list sales", domain.EntitySale)
	}
	defer rows.Close()

	sales := []*domain.SaleSummary{}
	for rows.Next() {
		summary, err := scanSaleSummary(rows)
		if err != nil {
			return nil, mapError(err, "scan sale", domain.EntitySale)
		}
		sales = append(sales, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate sales", domain.EntitySale)
	}

	return sales, nil
}
