package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"techstore/internal/domain"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	FindByDocument(ctx context.Context, document string) (*domain.Customer, error)
	List(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, document, document_type, first_name, last_name, email, phone, address, created_at`

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Document,
		&customer.DocumentType,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// Create inserts a customer; a registered document yields a DuplicateError
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Document,
		customer.DocumentType,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.CreatedAt,
	)

	return mapError(err, "create customer", domain.EntityCustomer)
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return r.findOne(ctx, "id = $1", id, id.String())
}

func (r *customerRepository) FindByDocument(ctx context.Context, document string) (*domain.Customer, error) {
	return r.findOne(ctx, "document = $1", document, document)
}

func (r *customerRepository) findOne(ctx context.Context, where string, arg any, label string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + where

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: domain.EntityCustomer, ID: label}
		}
		return nil, mapError(err, "find customer", domain.EntityCustomer)
	}

	return customer, nil
}

// List searches customers by document or name, newest first
func (r *customerRepository) List(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	where := `WHERE document ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers `+where, pattern).Scan(&total); err != nil {
		return nil, 0, mapError(err, "count customers", domain.EntityCustomer)
	}

	limit, offset := pageOffset(page, pageSize)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers `+where+` ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, mapError(err, "list customers", domain.EntityCustomer)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, mapError(err, "scan customer", domain.EntityCustomer)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, mapError(err, "iterate customers", domain.EntityCustomer)
	}

	return customers, total, nil
}
