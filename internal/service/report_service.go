package service

import (
	"context"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	dashboardLowStockLimit = 5
	dashboardRecentLimit   = 5
	defaultTopProducts     = 10
	defaultReportMonths    = 12
)

type ReportService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	TopProducts(ctx context.Context, limit int) ([]*domain.ProductSales, error)
	MonthlySales(ctx context.Context, months int) ([]*domain.MonthlySales, error)
}

type reportService struct {
	reports  repository.ReportRepository
	products repository.ProductRepository
	now      func() time.Time
}

func NewReportService(reports repository.ReportRepository, products repository.ProductRepository) ReportService {
	return &reportService{reports: reports, products: products, now: time.Now}
}

// Dashboard runs its independent queries concurrently.
func (s *reportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	d := &domain.Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.reports.CountActiveProducts(ctx)
		d.ActiveProducts = n
		return err
	})
	g.Go(func() error {
		n, err := s.reports.CountLowStock(ctx)
		d.LowStockCount = n
		return err
	})
	g.Go(func() error {
		count, revenue, err := s.reports.SalesBetween(ctx, dayStart, dayEnd)
		d.SalesToday, d.RevenueToday = count, revenue
		return err
	})
	g.Go(func() error {
		products, err := s.products.LowStock(ctx, dashboardLowStockLimit)
		for _, p := range products {
			d.LowStock = append(d.LowStock, *p)
		}
		return err
	})
	g.Go(func() error {
		sales, err := s.reports.RecentSales(ctx, dashboardRecentLimit)
		for _, sale := range sales {
			d.RecentSales = append(d.RecentSales, *sale)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *reportService) TopProducts(ctx context.Context, limit int) ([]*domain.ProductSales, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultTopProducts
	}
	return s.reports.TopProducts(ctx, limit)
}

// MonthlySales covers the current month and the months-1 before it.
func (s *reportService) MonthlySales(ctx context.Context, months int) ([]*domain.MonthlySales, error) {
	if months <= 0 || months > 60 {
		months = defaultReportMonths
	}
	now := s.now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	return s.reports.MonthlySales(ctx, since)
}
