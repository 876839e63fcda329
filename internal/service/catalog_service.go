package service

import (
	"context"
	"strings"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InitialStockReason labels the ledger entry written when a product is created
// with stock on hand.
const InitialStockReason = "Stock inicial"

// ProductInput carries editable product fields. A nil Stock on update leaves
// the stock untouched; a nil MinStock keeps the default or current threshold.
type ProductInput struct {
	Code        string
	Name        string
	Description string
	CategoryID  *uuid.UUID
	Brand       string
	Model       string
	Price       decimal.Decimal
	Stock       *int
	MinStock    *int
	ImageURL    string
	Active      *bool
}

// CatalogService manages categories and products.
type CatalogService interface {
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateProduct(ctx context.Context, actorID uuid.UUID, input ProductInput) (*domain.ProductView, error)
	UpdateProduct(ctx context.Context, actorID, id uuid.UUID, input ProductInput) (*domain.ProductView, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductView, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductView, int, error)
	LowStock(ctx context.Context, limit int) ([]*domain.ProductView, error)
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	ledger     StockLedger
	tx         repository.Transactor
	logger     *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	ledger StockLedger,
	tx repository.Transactor,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
		ledger:     ledger,
		tx:         tx,
		logger:     logger.Named("catalog"),
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "category name is required")
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx, false)
}

// CreateProduct inserts the product with zero stock and books any initial
// stock through the ledger in the same transaction.
func (s *catalogService) CreateProduct(ctx context.Context, actorID uuid.UUID, input ProductInput) (*domain.ProductView, error) {
	now := time.Now()
	product := &domain.Product{
		ID:        uuid.New(),
		MinStock:  domain.DefaultMinStock,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applyInput(ctx, product, input); err != nil {
		return nil, err
	}

	initial := 0
	if input.Stock != nil {
		initial = *input.Stock
	}
	if initial < 0 {
		return nil, domain.NewValidationError("stock", "stock cannot be negative")
	}
	if initial > 0 {
		if err := validateActor(actorID); err != nil {
			return nil, err
		}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		if err := s.products.CreateTx(ctx, tx, product); err != nil {
			return err
		}
		if initial == 0 {
			return nil
		}
		_, err := s.ledger.AdjustTx(ctx, tx, domain.StockAdjustment{
			ProductID: product.ID,
			Delta:     initial,
			ActorID:   actorID,
			Reason:    InitialStockReason,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.String("code", product.Code), zap.Int("stock", initial))
	return s.products.FindViewByID(ctx, product.ID)
}

// UpdateProduct edits product details. A changed stock level is recorded as a
// manual adjustment in the same transaction.
func (s *catalogService) UpdateProduct(ctx context.Context, actorID, id uuid.UUID, input ProductInput) (*domain.ProductView, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, product, input); err != nil {
		return nil, err
	}
	if input.Stock != nil {
		if err := validateActor(actorID); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		if err := s.products.UpdateDetailsTx(ctx, tx, product); err != nil {
			return err
		}
		if input.Stock == nil {
			return nil
		}
		_, err := s.ledger.SetLevelTx(ctx, tx, id, *input.Stock, actorID, domain.ManualAdjustmentReason)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.products.FindViewByID(ctx, id)
}

func (s *catalogService) applyInput(ctx context.Context, product *domain.Product, input ProductInput) error {
	product.Code = domain.NormalizeProductCode(input.Code)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Brand = strings.TrimSpace(input.Brand)
	product.Model = strings.TrimSpace(input.Model)
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	if input.MinStock != nil {
		product.MinStock = *input.MinStock
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	switch {
	case product.Code == "":
		return domain.NewValidationError("code", "product code is required")
	case product.Name == "":
		return domain.NewValidationError("name", "product name is required")
	case !product.Price.IsPositive():
		return domain.NewValidationError("price", "price must be greater than zero")
	case product.Price.Exponent() < -2 && !product.Price.Equal(product.Price.Round(2)):
		return domain.NewValidationError("price", "price cannot have more than two decimals")
	case product.MinStock < 0:
		return domain.NewValidationError("min_stock", "minimum stock cannot be negative")
	}

	if product.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *product.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deactivated", zap.String("product_id", id.String()))
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductView, error) {
	return s.products.FindViewByID(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductView, int, error) {
	return s.products.List(ctx, filter)
}

func (s *catalogService) LowStock(ctx context.Context, limit int) ([]*domain.ProductView, error) {
	return s.products.LowStock(ctx, limit)
}
