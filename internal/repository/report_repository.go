package repository

import (
	"context"
	"database/sql"
	"time"

	"techstore/internal/domain"

	"github.com/shopspring/decimal"
)

// ReportRepository runs the read-only aggregate queries behind the dashboard
// and reports.
type ReportRepository interface {
	CountActiveProducts(ctx context.Context) (int, error)
	CountLowStock(ctx context.Context) (int, error)
	SalesBetween(ctx context.Context, from, to time.Time) (count int, revenue decimal.Decimal, err error)
	RecentSales(ctx context.Context, limit int) ([]*domain.SaleSummary, error)
	TopProducts(ctx context.Context, limit int) ([]*domain.ProductSales, error)
	MonthlySales(ctx context.Context, since time.Time) ([]*domain.MonthlySales, error)
}

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) count(ctx context.Context, op, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, mapError(err, op, "")
	}
	return n, nil
}

func (r *reportRepository) CountActiveProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "count active products", `SELECT COUNT(*) FROM products WHERE active = TRUE`)
}

func (r *reportRepository) CountLowStock(ctx context.Context) (int, error) {
	return r.count(ctx, "count low stock",
		`SELECT COUNT(*) FROM products WHERE active = TRUE AND stock <= min_stock`)
}

// SalesBetween counts sales in [from, to) and sums their totals.
func (r *reportRepository) SalesBetween(ctx context.Context, from, to time.Time) (int, decimal.Decimal, error) {
	var (
		count   int
		revenue decimal.Decimal
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total), 0) FROM sales WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&count, &revenue)
	if err != nil {
		return 0, decimal.Zero, mapError(err, "sum sales", domain.EntitySale)
	}
	return count, revenue, nil
}

func (r *reportRepository) RecentSales(ctx context.Context, limit int) ([]*domain.SaleSummary, error) {
	query := `SELECT ` + saleSummaryColumns + saleJoins + ` ORDER BY s.created_at DESC, s.number DESC LIMIT $1`
	return querySummaries(ctx, r.db, query, limit)
}

// TopProducts ranks products by units sold.
func (r *reportRepository) TopProducts(ctx context.Context, limit int) ([]*domain.ProductSales, error) {
	query := `
		SELECT p.id, p.code, p.name, SUM(i.quantity) AS sold, SUM(i.subtotal)
		FROM sale_items i
		JOIN products p ON p.id = i.product_id
		GROUP BY p.id, p.code, p.name
		ORDER BY sold DESC, p.code
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, mapError(err, "top products", "")
	}
	defer rows.Close()

	out := []*domain.ProductSales{}
	for rows.Next() {
		row := &domain.ProductSales{}
		if err := rows.Scan(&row.ProductID, &row.Code, &row.Name, &row.QuantitySold, &row.Revenue); err != nil {
			return nil, mapError(err, "scan top products", "")
		}
		out = append(out, row)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate top products", "")
	}

	return out, nil
}

// MonthlySales groups sales by calendar month starting at since, newest first.
func (r *reportRepository) MonthlySales(ctx context.Context, since time.Time) ([]*domain.MonthlySales, error) {
	query := `
		SELECT TO_CHAR(created_at, 'YYYY-MM') AS month, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, mapError(err, "monthly sales", domain.EntitySale)
	}
	defer rows.Close()

	out := []*domain.MonthlySales{}
	for rows.Next() {
		row := &domain.MonthlySales{}
		if err := rows.Scan(&row.Month, &row.Count, &row.Revenue); err != nil {
			return nil, mapError(err, "scan monthly sales", domain.EntitySale)
		}
		out = append(out, row)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate monthly sales", domain.EntitySale)
	}

	return out, nil
}
