package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"techstore/internal/domain"
	"techstore/internal/middleware"
	"techstore/internal/receipt"
	"techstore/internal/repository"
	"techstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SaleLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

// SaleRequest is the cart submitted by a seller. Quantities are checked by the
// sale builder so that an empty cart and a bad quantity get distinct errors.
type SaleRequest struct {
	Items         []SaleLineRequest `json:"items" validate:"dive"`
	CustomerID    *uuid.UUID        `json:"customer_id"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=efectivo tarjeta transferencia"`
	Notes         string            `json:"notes" validate:"max=1000"`
}

func (s SaleRequest) build(actorID uuid.UUID) service.BuildSaleRequest {
	lines := make([]domain.CartLine, len(s.Items))
	for i, item := range s.Items {
		lines[i] = domain.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return service.BuildSaleRequest{
		Items:         lines,
		CustomerID:    s.CustomerID,
		PaymentMethod: domain.PaymentMethod(s.PaymentMethod),
		ActorID:       actorID,
		Notes:         s.Notes,
	}
}

type SaleHandler struct {
	sales  service.SaleService
	store  receipt.Store
	logger *zap.Logger
}

func NewSaleHandler(sales service.SaleService, store receipt.Store, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{sales: sales, store: store, logger: logger}
}

func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Register)
		r.Post("/preview", h.Preview)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/receipt", h.Receipt)
	})
}

// Preview prices a cart without writing anything.
func (h *SaleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentAccount(w, r)
	if !ok {
		return
	}
	var req SaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	draft, err := h.sales.PreviewSale(r.Context(), req.build(actorID))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, draft)
}

func (h *SaleHandler) Register(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentAccount(w, r)
	if !ok {
		return
	}
	var req SaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	sale, err := h.sales.RegisterSale(r.Context(), req.build(actorID))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/sales/"+sale.ID.String())
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// List supports from, to (YYYY-MM-DD), account_id, page and page_size.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if to != nil && len(r.URL.Query().Get("to")) == len("2006-01-02") {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	accountID, err := queryUUID(r, "account_id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid account_id")
		return
	}

	filter := repository.SaleFilter{
		From:      from,
		To:        to,
		AccountID: accountID,
		Page:      queryInt(r, "page", 1),
		PageSize:  queryInt(r, "page_size", 20),
	}
	sales, total, err := h.sales.ListSales(r.Context(), filter)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{Items: sales, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := h.sales.GetSale(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// Receipt renders the sale as a PDF download.
func (h *SaleHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := h.sales.GetSale(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, h.store, sale); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", receipt.Filename(sale.Number)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
