package transport

import (
	"net/http"
	"strings"

	"techstore/internal/domain"
	"techstore/internal/middleware"
	"techstore/internal/repository"
	"techstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// ProductRequest is shared by create and update. Omitting stock on update
// leaves it unchanged.
type ProductRequest struct {
	Code        string          `json:"code" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Brand       string          `json:"brand" validate:"max=100"`
	Model       string          `json:"model" validate:"max=100"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Stock       *int            `json:"stock" validate:"omitempty,gte=0"`
	MinStock    *int            `json:"min_stock" validate:"omitempty,gte=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=500"`
	Active      *bool           `json:"active"`
}

func (p ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Brand:       p.Brand,
		Model:       p.Model,
		Price:       p.Price,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		ImageURL:    p.ImageURL,
		Active:      p.Active,
	}
}

type StockAdjustmentRequest struct {
	Delta  int    `json:"delta" validate:"required,min=-1000000,max=1000000"`
	Reason string `json:"reason" validate:"max=255"`
}

type StockAdjustmentResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Stock     int       `json:"stock"`
}

// CatalogHandler serves categories, products and their stock ledger.
type CatalogHandler struct {
	catalog service.CatalogService
	ledger  service.StockLedger
	logger  *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, ledger service.StockLedger, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, ledger: ledger, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireAdmin(h.logger)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.With(admin).Post("/", h.CreateCategory)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/low-stock", h.LowStock)
		r.With(admin).Post("/", h.CreateProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProduct)
			r.Get("/stock-history", h.StockHistory)
			r.With(admin).Put("/", h.UpdateProduct)
			r.With(admin).Delete("/", h.DeactivateProduct)
			r.With(admin).Post("/stock-adjustments", h.AdjustStock)
		})
	})
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// ListProducts supports q, category_id, include_inactive, sort_by, sort_order,
// page and page_size.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryUUID(r, "category_id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
		return
	}

	q := r.URL.Query()
	filter := repository.ProductFilter{
		CategoryID:      categoryID,
		Query:           q.Get("q"),
		IncludeInactive: q.Get("include_inactive") == "true",
		Page:            queryInt(r, "page", 1),
		PageSize:        queryInt(r, "page_size", 20),
		SortBy:          q.Get("sort_by"),
		SortOrder:       repository.SortOrder(strings.ToUpper(q.Get("sort_order"))),
	}

	products, total, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Items:    products,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

func (h *CatalogHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.LowStock(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentAccount(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), actorID, req.input())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := currentAccount(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), actorID, id, req.input())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeactivateProduct(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) StockHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	history, err := h.ledger.History(r.Context(), id, queryInt(r, "limit", service.DefaultHistoryLimit))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	if history == nil {
		history = []*domain.StockHistoryView{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, history)
}

func (h *CatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := currentAccount(w, r)
	if !ok {
		return
	}
	var req StockAdjustmentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	stock, err := h.ledger.Adjust(r.Context(), domain.StockAdjustment{
		ProductID: id,
		Delta:     req.Delta,
		ActorID:   actorID,
		Reason:    req.Reason,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, StockAdjustmentResponse{ProductID: id, Stock: stock})
}
