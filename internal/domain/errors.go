package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Every typed error below matches exactly one of them via errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrDuplicate           = errors.New("already exists")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrPersistence         = errors.New("persistence failure")
)

// Validation reasons carried by ValidationError.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// ErrProductNotFound matches any NotFoundError about a product.
var ErrProductNotFound = errors.New("product not found")

const (
	EntityAccount  = "account"
	EntityCategory = "category"
	EntityCustomer = "customer"
	EntityProduct  = "product"
	EntitySale     = "sale"
	EntityToken    = "refresh_token"
)

type ValidationError struct {
	Field   string
	Message string
	Reason  error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Reason }

type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || (target == ErrProductNotFound && e.Entity == EntityProduct)
}

type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductCode string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.label(), e.Requested, e.Available)
}

func (e *InsufficientStockError) label() string {
	if e.ProductCode != "" {
		return e.ProductCode
	}
	return e.ProductID.String()
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type DuplicateError struct {
	Entity string
	Field  string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return e.Entity + " already exists"
	}
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

type ConcurrencyConflictError struct {
	Op  string
	Err error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s: concurrent update conflict: %v", e.Op, e.Err)
}

func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }

func (e *ConcurrencyConflictError) Unwrap() error { return e.Err }

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }
