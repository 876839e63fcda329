package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"techstore/internal/domain"
)

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// mapError turns driver errors into the domain taxonomy. entity names the
// table's subject for duplicate errors.
func mapError(err error, op, entity string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &domain.DuplicateError{Entity: entity, Field: constraintColumn(pgErr.TableName, pgErr.ConstraintName, "_key")}
		case pgForeignKeyViolation:
			ref := strings.TrimSuffix(constraintColumn(pgErr.TableName, pgErr.ConstraintName, "_fkey"), "_id")
			return &domain.NotFoundError{Entity: ref}
		case pgCheckViolation:
			return &domain.ValidationError{Field: pgErr.ConstraintName, Message: "value violates constraint"}
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return &domain.ConcurrencyConflictError{Op: op, Err: err}
		}
	}

	return &domain.PersistenceError{Op: op, Err: err}
}

// constraintColumn extracts "code" from "products_code_key".
func constraintColumn(table, constraint, suffix string) string {
	col := strings.TrimSuffix(constraint, suffix)
	if table != "" {
		col = strings.TrimPrefix(col, table+"_")
	}
	return col
}

// pageOffset clamps pagination input.
func pageOffset(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
