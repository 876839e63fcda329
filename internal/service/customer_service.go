package service

import (
	"context"
	"strings"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
)

var documentTypes = map[string]bool{"DNI": true, "RUC": true, "CE": true, "PASAPORTE": true}

type CustomerInput struct {
	Document     string
	DocumentType string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error)
}

type customerService struct {
	customers repository.CustomerRepository
}

func NewCustomerService(customers repository.CustomerRepository) CustomerService {
	return &customerService{customers: customers}
}

// CreateCustomer registers a buyer; the document number must be unused.
func (s *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	docType := strings.ToUpper(strings.TrimSpace(input.DocumentType))
	if docType == "" {
		docType = "DNI"
	}

	customer := &domain.Customer{
		ID:           uuid.New(),
		Document:     strings.TrimSpace(input.Document),
		DocumentType: docType,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		CreatedAt:    time.Now(),
	}

	switch {
	case customer.Document == "":
		return nil, domain.NewValidationError("document", "document number is required")
	case !documentTypes[docType]:
		return nil, domain.NewValidationError("document_type", "document type must be DNI, RUC, CE or PASAPORTE")
	case customer.FirstName == "":
		return nil, domain.NewValidationError("first_name", "first name is required")
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error) {
	return s.customers.List(ctx, query, page, pageSize)
}
