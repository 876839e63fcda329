package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// memStore is an in-memory stand-in for the Postgres repositories. WithinTx
// serializes transactions and restores a snapshot when fn fails, so rollback
// behaviour can be tested without a database. The sale sequence is never
// restored, like a real sequence.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products   map[uuid.UUID]*domain.Product
	categories map[uuid.UUID]*domain.Category
	customers  map[uuid.UUID]*domain.Customer
	accounts   map[uuid.UUID]*domain.Account
	sales      []*domain.Sale
	items      []*domain.SaleItem
	history    []*domain.StockHistoryEntry
	seq        int64

	// failItemsWith makes CreateItemTx fail once with the given error.
	failItemsWith error
	// conflicts makes the next n LockForUpdateTx calls fail with a conflict.
	conflicts int
}

type memSnapshot struct {
	products map[uuid.UUID]domain.Product
	sales    int
	items    int
	history  int
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[uuid.UUID]*domain.Product),
		categories: make(map[uuid.UUID]*domain.Category),
		customers:  make(map[uuid.UUID]*domain.Customer),
		accounts:   make(map[uuid.UUID]*domain.Account),
	}
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := memSnapshot{
		products: make(map[uuid.UUID]domain.Product, len(m.products)),
		sales:    len(m.sales),
		items:    len(m.items),
		history:  len(m.history),
	}
	for id, p := range m.products {
		snap.products[id] = *p
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = make(map[uuid.UUID]*domain.Product, len(snap.products))
	for id, p := range snap.products {
		p := p
		m.products[id] = &p
	}
	m.sales = m.sales[:snap.sales]
	m.items = m.items[:snap.items]
	m.history = m.history[:snap.history]
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(ctx, nil); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// seed helpers

func (m *memStore) addAccount(role domain.Role) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &domain.Account{ID: uuid.New(), Username: "user-" + uuid.NewString()[:8], FullName: "Vendedor Prueba", Role: role, Active: true}
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) addProduct(code, price string, stock int) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.Product{
		ID:       uuid.New(),
		Code:     code,
		Name:     "Producto " + code,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		MinStock: domain.DefaultMinStock,
		Active:   true,
	}
	m.products[p.ID] = p
	return p
}

func (m *memStore) stockOf(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) historyOf(id uuid.UUID) []domain.StockHistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StockHistoryEntry
	for _, e := range m.history {
		if e.ProductID == id {
			out = append(out, *e)
		}
	}
	return out
}

// committedNumbers lists sale numbers in the order their transactions
// committed. Rolled-back sales are truncated away by restore.
func (m *memStore) committedNumbers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sales))
	for i, s := range m.sales {
		out[i] = s.Number
	}
	return out
}

func (m *memStore) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

// products

type memProducts struct{ *memStore }

func (r memProducts) CreateTx(ctx context.Context, tx repository.DBTX, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == product.Code {
			return &domain.DuplicateError{Entity: domain.EntityProduct, Field: "code"}
		}
	}
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r memProducts) UpdateDetailsTx(ctx context.Context, tx repository.DBTX, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[product.ID]
	if !ok {
		return domain.NewNotFoundError(domain.EntityProduct, product.ID)
	}
	stock := existing.Stock
	cp := *product
	cp.Stock = stock
	r.products[product.ID] = &cp
	return nil
}

func (r memProducts) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.NewNotFoundError(domain.EntityProduct, id)
	}
	p.Active = false
	return nil
}

func (r memProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.EntityProduct, id)
	}
	cp := *p
	return &cp, nil
}

func (r memProducts) FindViewByID(ctx context.Context, id uuid.UUID) (*domain.ProductView, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ProductView{Product: *p}, nil
}

func (r memProducts) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductView, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProductView
	for _, p := range r.products {
		if !p.Active && !filter.IncludeInactive {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, &domain.ProductView{Product: *p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

func (r memProducts) LowStock(ctx context.Context, limit int) ([]*domain.ProductView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProductView
	for _, p := range r.products {
		if p.Active && p.LowStock() {
			out = append(out, &domain.ProductView{Product: *p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memProducts) LockForUpdateTx(ctx context.Context, tx repository.DBTX, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return nil, &domain.ConcurrencyConflictError{Op: "lock product", Err: context.DeadlineExceeded}
	}
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r memProducts) SetStockTx(ctx context.Context, tx repository.DBTX, id uuid.UUID, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.NewNotFoundError(domain.EntityProduct, id)
	}
	if stock < 0 {
		return domain.NewValidationError("stock", "violates check constraint")
	}
	p.Stock = stock
	return nil
}

// stock history

type memHistory struct{ *memStore }

func (r memHistory) AppendTx(ctx context.Context, tx repository.DBTX, entry *domain.StockHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.history = append(r.history, &cp)
	return nil
}

func (r memHistory) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.StockHistoryView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.StockHistoryView
	for i := len(r.history) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.history[i]
		if e.ProductID != productID {
			continue
		}
		view := &domain.StockHistoryView{StockHistoryEntry: *e}
		if a, ok := r.accounts[e.AccountID]; ok {
			view.AccountName = a.FullName
		}
		out = append(out, view)
	}
	return out, nil
}

// sales

type memSales struct{ *memStore }

func (r memSales) NextNumberTx(ctx context.Context, tx repository.DBTX) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r memSales) CreateTx(ctx context.Context, tx repository.DBTX, sale *domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.Number == sale.Number {
			return &domain.DuplicateError{Entity: domain.EntitySale, Field: "number"}
		}
	}
	cp := *sale
	cp.Items = nil
	r.sales = append(r.sales, &cp)
	return nil
}

func (r memSales) CreateItemTx(ctx context.Context, tx repository.DBTX, item *domain.SaleItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failItemsWith != nil {
		err := r.failItemsWith
		r.failItemsWith = nil
		return err
	}
	cp := *item
	r.items = append(r.items, &cp)
	return nil
}

func (r memSales) FindDetail(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.ID != id {
			continue
		}
		detail := &domain.SaleDetail{
			SaleSummary: domain.SaleSummary{
				ID: s.ID, Number: s.Number, Subtotal: s.Subtotal, Tax: s.Tax, Total: s.Total,
				Status: s.Status, PaymentMethod: s.PaymentMethod, CreatedAt: s.CreatedAt,
				CustomerName: domain.AnonymousCustomerName,
			},
			CustomerID: s.CustomerID,
			Notes:      s.Notes,
		}
		for _, it := range r.items {
			if it.SaleID == id {
				detail.Items = append(detail.Items, domain.SaleItemView{
					ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Subtotal: it.Subtotal,
				})
			}
		}
		return detail, nil
	}
	return nil, domain.NewNotFoundError(domain.EntitySale, id)
}

func (r memSales) List(ctx context.Context, filter repository.SaleFilter) ([]*domain.SaleSummary, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SaleSummary
	for i := len(r.sales) - 1; i >= 0; i-- {
		s := r.sales[i]
		out = append(out, &domain.SaleSummary{ID: s.ID, Number: s.Number, Total: s.Total, CreatedAt: s.CreatedAt})
	}
	return out, len(out), nil
}

// customers and categories

type memCustomers struct{ *memStore }

func (r memCustomers) Create(ctx context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Document == customer.Document {
			return &domain.DuplicateError{Entity: domain.EntityCustomer, Field: "document"}
		}
	}
	cp := *customer
	r.customers[customer.ID] = &cp
	return nil
}

func (r memCustomers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.EntityCustomer, id)
	}
	cp := *c
	return &cp, nil
}

func (r memCustomers) FindByDocument(ctx context.Context, document string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Document == document {
			cp := *c
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: domain.EntityCustomer}
}

func (r memCustomers) List(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Customer
	for _, c := range r.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type memCategories struct{ *memStore }

func (r memCategories) Create(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return &domain.DuplicateError{Entity: domain.EntityCategory, Field: "name"}
		}
	}
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r memCategories) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Category
	for _, c := range r.categories {
		if c.Active || includeInactive {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memCategories) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.EntityCategory, id)
	}
	cp := *c
	return &cp, nil
}

func (r memCategories) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: domain.EntityCategory}
}

// wiring

type salesFixture struct {
	store       *memStore
	ledger      StockLedger
	builder     SaleBuilder
	coordinator SaleCoordinator
	sales       SaleService
	catalog     CatalogService
	seller      *domain.Account
}

func newSalesFixture() *salesFixture {
	store := newMemStore()
	log := zap.NewNop()

	products := memProducts{store}
	ledger := NewStockLedger(products, memHistory{store}, store, log)
	builder := NewSaleBuilder(products, memCustomers{store})
	coordinator := NewSaleCoordinator(store, memSales{store}, products, ledger, log)

	sales := NewSaleService(builder, coordinator, memSales{store}, log).(*saleService)
	sales.retryDelay = time.Millisecond

	return &salesFixture{
		store:       store,
		ledger:      ledger,
		builder:     builder,
		coordinator: coordinator,
		sales:       sales,
		catalog:     NewCatalogService(memCategories{store}, products, ledger, store, log),
		seller:      store.addAccount(domain.RoleAdvisor),
	}
}

func (f *salesFixture) cart(lines ...domain.CartLine) BuildSaleRequest {
	return BuildSaleRequest{
		Items:         lines,
		PaymentMethod: domain.PaymentCash,
		ActorID:       f.seller.ID,
	}
}
