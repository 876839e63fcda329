package service

import (
	"database/sql"

	"techstore/internal/repository"

	"go.uber.org/zap"
)

// Repositories groups the Postgres-backed repositories.
type Repositories struct {
	Accounts      repository.AccountRepository
	RefreshTokens repository.RefreshTokenRepository
	Categories    repository.CategoryRepository
	Products      repository.ProductRepository
	Customers     repository.CustomerRepository
	Sales         repository.SaleRepository
	StockHistory  repository.StockHistoryRepository
	Reports       repository.ReportRepository
	Tx            repository.Transactor
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Accounts:      repository.NewAccountRepository(db),
		RefreshTokens: repository.NewRefreshTokenRepository(db),
		Categories:    repository.NewCategoryRepository(db),
		Products:      repository.NewProductRepository(db),
		Customers:     repository.NewCustomerRepository(db),
		Sales:         repository.NewSaleRepository(db),
		StockHistory:  repository.NewStockHistoryRepository(db),
		Reports:       repository.NewReportRepository(db),
		Tx:            repository.NewTransactor(db),
	}
}

// Services is the set of services the HTTP layer and the CLI share.
type Services struct {
	Accounts  AccountService
	Catalog   CatalogService
	Customers CustomerService
	Ledger    StockLedger
	Sales     SaleService
	Reports   ReportService
}

func NewServices(repos *Repositories, tokens TokenSettings, logger *zap.Logger) *Services {
	ledger := NewStockLedger(repos.Products, repos.StockHistory, repos.Tx, logger)
	builder := NewSaleBuilder(repos.Products, repos.Customers)
	coordinator := NewSaleCoordinator(repos.Tx, repos.Sales, repos.Products, ledger, logger)

	return &Services{
		Accounts:  NewAccountService(repos.Accounts, repos.RefreshTokens, tokens),
		Catalog:   NewCatalogService(repos.Categories, repos.Products, ledger, repos.Tx, logger),
		Customers: NewCustomerService(repos.Customers),
		Ledger:    ledger,
		Sales:     NewSaleService(builder, coordinator, repos.Sales, logger),
		Reports:   NewReportService(repos.Reports, repos.Products),
	}
}
