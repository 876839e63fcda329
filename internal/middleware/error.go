package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"techstore/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithErrorDetails(w, statusCode, message, nil)
}

// respondWithErrorDetails sends a structured error response with additional details
func respondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	respondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// RespondWithDomainError maps a service error to its HTTP status. Anything
// outside the domain error kinds is logged and reported as a 500 without
// leaking the cause.
func RespondWithDomainError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		validation   *domain.ValidationError
		insufficient *domain.InsufficientStockError
		notFound     *domain.NotFoundError
	)

	switch {
	case errors.As(err, &insufficient):
		respondWithErrorDetails(w, http.StatusConflict, insufficient.Error(), map[string]interface{}{
			"product_id":   insufficient.ProductID,
			"product_code": insufficient.ProductCode,
			"requested":    insufficient.Requested,
			"available":    insufficient.Available,
		})
	case errors.As(err, &validation):
		var details map[string]interface{}
		if validation.Field != "" {
			details = map[string]interface{}{"field": validation.Field}
		}
		respondWithErrorDetails(w, http.StatusBadRequest, validation.Error(), details)
	case errors.As(err, &notFound):
		RespondWithError(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, domain.ErrDuplicate):
		RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		RespondWithError(w, http.StatusConflict, "the operation conflicted with another update, please retry")
	default:
		logger.Error("Request failed", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
