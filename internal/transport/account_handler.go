package transport

import (
	"net/http"

	"techstore/internal/domain"
	"techstore/internal/middleware"
	"techstore/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CreateAccountRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=administrador asesor"`
}

type AccountStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// AccountHandler exposes staff account administration.
type AccountHandler struct {
	accounts service.AccountService
	logger   *zap.Logger
}

func NewAccountHandler(accounts service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// RegisterRoutes mounts /accounts; every route requires an administrator.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.logger))
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Patch("/{id}/status", h.SetStatus)
	})
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), service.CreateAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Account created", zap.String("account_id", account.ID.String()), zap.String("role", string(account.Role)))
	middleware.RespondWithJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AccountStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	if err := h.accounts.SetAccountActive(r.Context(), id, *req.Active); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
