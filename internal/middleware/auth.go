package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"techstore/internal/domain"
	"techstore/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	AccountIDKey contextKey = "account_id"
	RoleKey      contextKey = "account_role"
)

// TokenValidator turns a bearer token into claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

// AuthMiddleware validates JWT tokens and stores the account ID and role in
// the request context.
func AuthMiddleware(tokens TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, service.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if claims.AccountID == uuid.Nil || !claims.Role.Valid() {
				logger.Warn("Token carries incomplete claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			ctx := WithAccount(r.Context(), claims.AccountID, claims.Role)

			logger.Debug("Account authenticated",
				zap.String("account_id", claims.AccountID.String()),
				zap.String("role", string(claims.Role)),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAccount stores the authenticated account in ctx.
func WithAccount(ctx context.Context, id uuid.UUID, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, AccountIDKey, id)
	return context.WithValue(ctx, RoleKey, role)
}

// GetAccountID extracts the account ID from request context
func GetAccountID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(AccountIDKey).(uuid.UUID)
	return id, ok
}

// GetRole extracts the account role from request context
func GetRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(RoleKey).(domain.Role)
	return role, ok
}
