// Package auth handles operator login and token verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/parkos/parklot/internal/domain/models"
)

// Store is the operator persistence surface the service needs.
type Store interface {
	GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error)
	CreateOperator(ctx context.Context, op *models.Operator) error
	CountOperators(ctx context.Context) (int, error)
}

// Claims carries the operator's identity inside the signed token.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
}

// Identity is the verified caller extracted from a token.
type Identity struct {
	OperatorID uuid.UUID
	Username   string
	Role       string
}

// Service authenticates operators and issues session tokens.
type Service struct {
	store    Store
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new auth service instance.
func NewService(store Store, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Operator  models.Operator `json:"operator"`
}

// Login checks the operator's password and issues a signed token. Unknown
// usernames and wrong passwords both come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	op, err := s.store.GetOperatorByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.Username,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		OperatorID: op.ID.String(),
		Role:       op.Role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("operator logged in", zap.String("username", op.Username))

	return &LoginResult{Token: signed, ExpiresAt: expiresAt, Operator: *op}, nil
}

// Verify parses and validates a token, returning the caller identity.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}
	if !token.Valid {
		return nil, models.ErrInvalidCredentials
	}

	operatorID, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return &Identity{
		OperatorID: operatorID,
		Username:   claims.Subject,
		Role:       claims.Role,
	}, nil
}

// CreateOperator registers a new operator with a bcrypt-hashed password.
func (s *Service) CreateOperator(ctx context.Context, username, password, displayName, role string) (*models.Operator, error) {
	if username == "" || password == "" {
		return nil, &models.ValidationError{Field: "username", Message: "username and password are required"}
	}
	if role != models.RoleOperator && role != models.RoleAdmin {
		return nil, &models.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", role)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	op := &models.Operator{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
	}
	if err := s.store.CreateOperator(ctx, op); err != nil {
		return nil, err
	}

	s.logger.Info("operator created", zap.String("username", username), zap.String("role", role))
	return op, nil
}

// EnsureBootstrapAdmin creates the initial admin account on an empty operator
// table. A no-op when operators already exist or no password is configured.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}

	count, err := s.store.CountOperators(ctx)
	if err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := s.CreateOperator(ctx, username, password, "Administrator", models.RoleAdmin); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	return nil
}
