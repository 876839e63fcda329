package repository

import (
	"context"
	"database/sql"
	"errors"

	"techstore/internal/domain"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context, includeInactive bool) ([]*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category; a taken name yields a DuplicateError
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Description,
		category.Active,
		category.CreatedAt,
	)

	return mapError(err, "create category", domain.EntityCategory)
}

// List retrieves categories ordered by name
func (r *categoryRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	query := `
		SELECT id, name, description, active, created_at
		FROM categories
		WHERE active = TRUE OR $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, includeInactive)
	if err != nil {
		return nil, mapError(err, "list categories", domain.EntityCategory)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.Active,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, mapError(err, "scan category", domain.EntityCategory)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, "iterate categories", domain.EntityCategory)
	}

	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return r.findOne(ctx, `WHERE id = $1`, id, id.String())
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.findOne(ctx, `WHERE name = $1`, name, name)
}

func (r *categoryRepository) findOne(ctx context.Context, where string, arg any, label string) (*domain.Category, error) {
	query := `SELECT id, name, description, active, created_at FROM categories ` + where

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Active,
		&category.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: domain.EntityCategory, ID: label}
		}
		return nil, mapError(err, "find category", domain.EntityCategory)
	}

	return category, nil
}
