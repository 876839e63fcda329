package service

import (
	"context"
	"errors"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// SaleService is what the HTTP layer talks to for sales.
type SaleService interface {
	PreviewSale(ctx context.Context, req BuildSaleRequest) (*domain.DraftSale, error)
	RegisterSale(ctx context.Context, req BuildSaleRequest) (*domain.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error)
	ListSales(ctx context.Context, filter repository.SaleFilter) ([]*domain.SaleSummary, int, error)
}

type saleService struct {
	builder     SaleBuilder
	coordinator SaleCoordinator
	sales       repository.SaleRepository
	logger      *zap.Logger
	retryDelay  time.Duration
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(
	builder SaleBuilder,
	coordinator SaleCoordinator,
	sales repository.SaleRepository,
	logger *zap.Logger,
) SaleService {
	return &saleService{
		builder:     builder,
		coordinator: coordinator,
		sales:       sales,
		logger:      logger.Named("sales"),
		retryDelay:  50 * time.Millisecond,
	}
}

func (s *saleService) PreviewSale(ctx context.Context, req BuildSaleRequest) (*domain.DraftSale, error) {
	return s.builder.BuildSale(ctx, req)
}

// RegisterSale builds and commits a sale. A concurrency conflict is retried
// once from a fresh build, so stock and prices are read again.
func (s *saleService) RegisterSale(ctx context.Context, req BuildSaleRequest) (*domain.Sale, error) {
	var sale *domain.Sale
	attempt := 0

	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		draft, err := s.builder.BuildSale(ctx, req)
		if err != nil {
			return err
		}

		committed, err := s.coordinator.CommitSale(ctx, draft)
		if err != nil {
			if errors.Is(err, domain.ErrConcurrencyConflict) {
				s.logger.Warn("Sale commit conflicted", zap.Int("attempt", attempt), zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}

		sale = committed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error) {
	return s.sales.FindDetail(ctx, id)
}

func (s *saleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]*domain.SaleSummary, int, error) {
	return s.sales.List(ctx, filter)
}
