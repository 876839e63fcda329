package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Default token lifetimes, overridden by configuration
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour

	minPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// TokenSettings configures JWT signing and lifetimes.
type TokenSettings struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// CreateAccountInput carries the fields an administrator fills in.
type CreateAccountInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     domain.Role
}

// AccountService defines the interface for staff accounts and authentication
type AccountService interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, account *domain.Account, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error
}

// Claims represents the JWT claims
type Claims struct {
	AccountID uuid.UUID   `json:"user_id"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type accountService struct {
	accountRepo      repository.AccountRepository
	refreshTokenRepo repository.RefreshTokenRepository
	settings         TokenSettings
}

// NewAccountService creates a new instance of AccountService
func NewAccountService(
	accountRepo repository.AccountRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	settings TokenSettings,
) AccountService {
	if settings.AccessTTL <= 0 {
		settings.AccessTTL = AccessTokenExpiration
	}
	if settings.RefreshTTL <= 0 {
		settings.RefreshTTL = RefreshTokenExpiration
	}
	return &accountService{
		accountRepo:      accountRepo,
		refreshTokenRepo: refreshTokenRepo,
		settings:         settings,
	}
}

// CreateAccount registers a staff member with a hashed password
func (s *accountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	switch {
	case input.Username == "":
		return nil, domain.NewValidationError("username", "username is required")
	case input.Email == "":
		return nil, domain.NewValidationError("email", "email is required")
	case len(input.Password) < minPasswordLength:
		return nil, domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	case !input.Role.Valid():
		return nil, domain.NewValidationError("role", fmt.Sprintf("unknown role %q", input.Role))
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Login authenticates an account and returns JWT tokens
func (s *accountService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, account *domain.Account, err error) {
	account, err = s.accountRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := verifyPassword(account.PasswordHash, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if !account.Active {
		return "", "", nil, ErrAccountDisabled
	}

	accessToken, err = s.generateAccessToken(account)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, account)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, account, nil
}

// Logout invalidates the refresh token
func (s *accountService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *accountService) RefreshToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	account, err := s.accountRepo.FindByID(ctx, refreshToken.AccountID)
	if err != nil {
		return "", fmt.Errorf("failed to find account: %w", err)
	}
	if !account.Active {
		return "", ErrAccountDisabled
	}

	return s.generateAccessToken(account)
}

// ValidateToken validates a JWT token and returns the claims
func (s *accountService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.settings.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.accountRepo.FindByID(ctx, id)
}

func (s *accountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.accountRepo.List(ctx)
}

func (s *accountService) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.accountRepo.SetActive(ctx, id, active)
}

// HashPassword hashes a password using bcrypt with cost factor 10
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken generates a JWT access token with account ID and role claims
func (s *accountService) generateAccessToken(account *domain.Account) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: account.ID,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.settings.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.settings.Secret))
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *accountService) generateRefreshToken(ctx context.Context, account *domain.Account) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(s.settings.RefreshTTL),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
