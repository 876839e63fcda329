package repository

import (
	"context"
	"database/sql"
	"errors"

	"techstore/internal/domain"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for staff account data access
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new instance of AccountRepository
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, full_name, role, active, created_at, updated_at`

func scanAccount(row rowScanner) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.FullName,
		&account.Role,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Create inserts a new account; a taken username or email yields a DuplicateError
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.FullName,
		account.Role,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return mapError(err, "create account", domain.EntityAccount)
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, "username = $1", username, username)
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "email = $1", email, email)
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.findOne(ctx, "id = $1", id, id.String())
}

func (r *accountRepository) findOne(ctx context.Context, where string, arg any, label string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: domain.EntityAccount, ID: label}
		}
		return nil, mapError(err, "find account", domain.EntityAccount)
	}

	return account, nil
}

// List returns every account ordered by creation date, newest first
func (r *accountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError(err, "list accounts", domain.EntityAccount)
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, mapError(err, "scan account", domain.EntityAccount)
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate accounts", domain.EntityAccount)
	}

	return accounts, nil
}

func (r *accountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE accounts SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return mapError(err, "update account", domain.EntityAccount)
	}

	return expectOneRow(result, domain.NewNotFoundError(domain.EntityAccount, id))
}
