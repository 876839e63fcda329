package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techstore/internal/domain"
	"techstore/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func testValidator() TokenValidator {
	return service.NewAccountService(nil, nil, service.TokenSettings{Secret: testSecret})
}

func signToken(t *testing.T, accountID uuid.UUID, role domain.Role, expiresIn time.Duration) string {
	t.Helper()
	claims := &service.Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Property: protected endpoints reject requests without a token
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			handler := AuthMiddleware(testValidator(), zap.NewNop())(okHandler())

			path := "/" + pathSuffix
			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	handler := AuthMiddleware(testValidator(), zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), domain.RoleAdvisor, -time.Hour))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

// Property: valid tokens put the account ID and role in the context
func TestProperty_ValidTokensAllowProcessing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid tokens allow request processing", prop.ForAll(
		func(seed int64, role string) bool {
			accountID := uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(seed), byte(seed >> 8), byte(seed >> 16)})
			token := signToken(t, accountID, domain.Role(role), time.Hour)

			handlerCalled := false
			handler := AuthMiddleware(testValidator(), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true

				ctxID, ok1 := GetAccountID(r.Context())
				ctxRole, ok2 := GetRole(r.Context())
				if !ok1 || !ok2 || ctxID != accountID || ctxRole != domain.Role(role) {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/api/sales", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return handlerCalled && w.Code == http.StatusOK
		},
		gen.Int64(),
		gen.OneConstOf(string(domain.RoleAdmin), string(domain.RoleAdvisor)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestTokenWithUnknownRoleIsRejected(t *testing.T) {
	handler := AuthMiddleware(testValidator(), zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/api/sales", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), "cajero", time.Hour))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Property: garbage tokens are rejected
func TestProperty_InvalidTokenFormatRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("invalid token formats are rejected", prop.ForAll(
		func(invalidToken string) bool {
			handler := AuthMiddleware(testValidator(), zap.NewNop())(okHandler())

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+invalidToken)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMissingBearerPrefixRejected(t *testing.T) {
	handler := AuthMiddleware(testValidator(), zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", signToken(t, uuid.New(), domain.RoleAdmin, time.Hour))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(zap.NewNop())(okHandler())

	cases := []struct {
		name string
		role domain.Role
		want int
	}{
		{"administrator passes", domain.RoleAdmin, http.StatusOK},
		{"advisor is forbidden", domain.RoleAdvisor, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/accounts", nil)
			req = req.WithContext(WithAccount(req.Context(), uuid.New(), tc.role))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/accounts", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
