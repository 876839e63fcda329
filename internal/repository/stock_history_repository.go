package repository

import (
	"context"
	"database/sql"

	"techstore/internal/domain"

	"github.com/google/uuid"
)

// StockHistoryRepository appends to and reads the stock audit log. There is no
// update or delete.
type StockHistoryRepository interface {
	AppendTx(ctx context.Context, tx DBTX, entry *domain.StockHistoryEntry) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.StockHistoryView, error)
}

type stockHistoryRepository struct {
	db *sql.DB
}

func NewStockHistoryRepository(db *sql.DB) StockHistoryRepository {
	return &stockHistoryRepository{db: db}
}

func (r *stockHistoryRepository) AppendTx(ctx context.Context, tx DBTX, entry *domain.StockHistoryEntry) error {
	query := `
		INSERT INTO stock_history (id, product_id, account_id, quantity_before, quantity_after,
		                           movement_type, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.ProductID,
		entry.AccountID,
		entry.QuantityBefore,
		entry.QuantityAfter,
		entry.MovementType,
		entry.Reason,
		entry.CreatedAt,
	)

	return mapError(err, "append stock history", "stock_history")
}

// ListByProduct returns the newest entries first.
func (r *stockHistoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.StockHistoryView, error) {
	query := `
		SELECT h.id, h.product_id, h.account_id, h.quantity_before, h.quantity_after,
		       h.movement_type, h.reason, h.created_at, COALESCE(a.full_name, '')
		FROM stock_history h
		LEFT JOIN accounts a ON a.id = h.account_id
		WHERE h.product_id = $1
		ORDER BY h.created_at DESC, h.seq DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, productID, limit)
	if err != nil {
		return nil, mapError(err, "list stock history", "stock_history")
	}
	defer rows.Close()

	entries := []*domain.StockHistoryView{}
	for rows.Next() {
		view := &domain.StockHistoryView{}
		err := rows.Scan(
			&view.ID,
			&view.ProductID,
			&view.AccountID,
			&view.QuantityBefore,
			&view.QuantityAfter,
			&view.MovementType,
			&view.Reason,
			&view.CreatedAt,
			&view.AccountName,
		)
		if err != nil {
			return nil, mapError(err, "scan stock history", "stock_history")
		}
		entries = append(entries, view)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate stock history", "stock_history")
	}

	return entries, nil
}
