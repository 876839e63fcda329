package transport

import (
	"net/http"

	"techstore/internal/middleware"
	"techstore/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports service.ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))
			r.Get("/top-products", h.TopProducts)
			r.Get("/monthly-sales", h.MonthlySales)
		})
	})
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reports.Dashboard(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, dashboard)
}

func (h *ReportHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.TopProducts(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.MonthlySales(r.Context(), queryInt(r, "months", 12))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rows)
}
