// Package seed loads the default accounts, categories and sample catalog.
// Running it twice is harmless: existing rows are left alone.
package seed

import (
	"context"
	"errors"
	"fmt"

	"techstore/internal/domain"
	"techstore/internal/repository"
	"techstore/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type accountSeed struct {
	username, password, fullName, email string
	role                                domain.Role
}

var defaultAccounts = []accountSeed{
	{"admin", "admin123", "Administrador", "admin@techstore.pe", domain.RoleAdmin},
	{"asesor", "asesor123", "Asesor de Ventas", "asesor@techstore.pe", domain.RoleAdvisor},
}

var defaultCategories = [][2]string{
	{"Laptops", "Computadoras portátiles de diferentes marcas"},
	{"Smartphones", "Teléfonos inteligentes"},
	{"Tablets", "Tabletas y iPads"},
	{"Accesorios", "Accesorios tecnológicos diversos"},
	{"Componentes", "Componentes de computadora"},
	{"Audio", "Audífonos, parlantes y equipos de audio"},
	{"Gaming", "Productos para videojuegos"},
}

type productSeed struct {
	code, name, description, category, brand, model, price string
	stock, minStock                                        int
}

var defaultProducts = []productSeed{
	{"LAP001", "Laptop HP Pavilion 15", "Laptop con procesador Intel Core i5, 8GB RAM, 256GB SSD", "Laptops", "HP", "Pavilion 15", "2499.00", 15, 5},
	{"LAP002", "Laptop Lenovo IdeaPad", "Laptop con procesador AMD Ryzen 5, 16GB RAM, 512GB SSD", "Laptops", "Lenovo", "IdeaPad 3", "2799.00", 10, 5},
	{"CEL001", "iPhone 15 Pro", "Smartphone Apple con chip A17 Pro, 256GB", "Smartphones", "Apple", "iPhone 15 Pro", "5499.00", 8, 3},
	{"CEL002", "Samsung Galaxy S24", "Smartphone Samsung con 256GB y cámara de 50MP", "Smartphones", "Samsung", "Galaxy S24", "4299.00", 12, 5},
	{"TAB001", "iPad Air", "Tablet Apple con chip M1 y pantalla de 10.9\"", "Tablets", "Apple", "iPad Air", "3499.00", 6, 3},
	{"ACC001", "Mouse Logitech MX Master", "Mouse ergonómico inalámbrico", "Accesorios", "Logitech", "MX Master 3S", "349.00", 25, 10},
	{"ACC002", "Teclado Mecánico RGB", "Teclado gaming con switches mecánicos", "Accesorios", "Corsair", "K95 RGB", "599.00", 18, 8},
	{"AUD001", "Audífonos Sony WH-1000XM5", "Audífonos con cancelación de ruido", "Audio", "Sony", "WH-1000XM5", "1299.00", 20, 10},
}

// Result counts what a run created.
type Result struct {
	Accounts   int
	Categories int
	Products   int
}

type Seeder struct {
	accounts    service.AccountService
	accountRepo repository.AccountRepository
	categories  repository.CategoryRepository
	catalog     service.CatalogService
	logger      *zap.Logger
}

func NewSeeder(
	accounts service.AccountService,
	accountRepo repository.AccountRepository,
	categories repository.CategoryRepository,
	catalog service.CatalogService,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		accounts:    accounts,
		accountRepo: accountRepo,
		categories:  categories,
		catalog:     catalog,
		logger:      logger.Named("seed"),
	}
}

func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	for _, a := range defaultAccounts {
		_, err := s.accounts.CreateAccount(ctx, service.CreateAccountInput{
			Username: a.username, Email: a.email, Password: a.password, FullName: a.fullName, Role: a.role,
		})
		switch {
		case err == nil:
			res.Accounts++
		case errors.Is(err, domain.ErrDuplicate):
		default:
			return res, fmt.Errorf("seed account %s: %w", a.username, err)
		}
	}

	admin, err := s.accountRepo.FindByUsername(ctx, "admin")
	if err != nil {
		return res, fmt.Errorf("seed: load admin: %w", err)
	}

	categoryIDs := make(map[string]*domain.Category, len(defaultCategories))
	for _, c := range defaultCategories {
		category, err := s.categories.FindByName(ctx, c[0])
		if errors.Is(err, domain.ErrNotFound) {
			category, err = s.catalog.CreateCategory(ctx, c[0], c[1])
			if err == nil {
				res.Categories++
			}
		}
		if err != nil {
			return res, fmt.Errorf("seed category %s: %w", c[0], err)
		}
		categoryIDs[c[0]] = category
	}

	for _, p := range defaultProducts {
		minStock := p.minStock
		stock := p.stock
		_, err := s.catalog.CreateProduct(ctx, admin.ID, service.ProductInput{
			Code:        p.code,
			Name:        p.name,
			Description: p.description,
			CategoryID:  &categoryIDs[p.category].ID,
			Brand:       p.brand,
			Model:       p.model,
			Price:       decimal.RequireFromString(p.price),
			Stock:       &stock,
			MinStock:    &minStock,
		})
		switch {
		case err == nil:
			res.Products++
		case errors.Is(err, domain.ErrDuplicate):
		default:
			return res, fmt.Errorf("seed product %s: %w", p.code, err)
		}
	}

	s.logger.Info("Seed completed",
		zap.Int("accounts", res.Accounts),
		zap.Int("categories", res.Categories),
		zap.Int("products", res.Products),
	)
	return res, nil
}
