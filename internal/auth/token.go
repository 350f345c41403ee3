package auth

import (
	"errors"
	"fmt"
	"time"

	"taskhub_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned whenever a token fails signature, expiry or
// structural checks. The caller never learns which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// SecretPair holds the two signing secrets of one role. The access and
// refresh secrets are independent so a leaked access secret cannot mint
// refresh tokens.
type SecretPair struct {
	Access  string
	Refresh string
}

// Config configures the token service. Both roles need a complete secret
// pair; TTLs apply to all roles.
type Config struct {
	UserSecrets  SecretPair
	AdminSecrets SecretPair
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// Claims are the JWT claims carried by both token kinds. Refresh tokens omit
// the email on purpose: they live longer and should carry as little as
// possible.
type Claims struct {
	UserID string          `json:"id"`
	Email  string          `json:"email,omitempty"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair is the result of issuing tokens for one identity.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues and verifies access/refresh tokens using a secret pair
// selected by role. A token signed under one role's secret always fails
// verification under the other role's secret.
type TokenService struct {
	secrets    map[models.UserRole]SecretPair
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// roleOrder is the candidate list for role-ambiguous verification: the first
// role whose secret verifies the token wins.
var roleOrder = []models.UserRole{models.UserRoleUser, models.UserRoleAdmin}

func NewTokenService(cfg Config) (*TokenService, error) {
	if cfg.UserSecrets.Access == "" || cfg.UserSecrets.Refresh == "" ||
		cfg.AdminSecrets.Access == "" || cfg.AdminSecrets.Refresh == "" {
		return nil, errors.New("token service requires all four signing secrets")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token service requires positive TTLs")
	}

	return &TokenService{
		secrets: map[models.UserRole]SecretPair{
			models.UserRoleUser:  cfg.UserSecrets,
			models.UserRoleAdmin: cfg.AdminSecrets,
		},
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// Issue creates an access/refresh pair for the user. Unknown roles fail
// closed: no token is ever signed with a default secret.
func (s *TokenService) Issue(user *models.User) (*TokenPair, error) {
	pair, ok := s.secrets[user.Role]
	if !ok {
		return nil, fmt.Errorf("no signing secrets configured for role %q", user.Role)
	}

	now := time.Now()

	accessClaims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(pair.Access))
	if err != nil {
		return nil, err
	}

	refreshClaims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(pair.Refresh))
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshTTL exposes the configured refresh-token lifetime so callers can
// persist matching expiry timestamps.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// VerifyAccess validates an access token against the stated role's secret.
func (s *TokenService) VerifyAccess(tokenStr string, role models.UserRole) (*Claims, error) {
	pair, ok := s.secrets[role]
	if !ok {
		return nil, ErrInvalidToken
	}
	return s.verify(tokenStr, pair.Access)
}

// VerifyRefresh validates a refresh token against the stated role's secret.
func (s *TokenService) VerifyRefresh(tokenStr string, role models.UserRole) (*Claims, error) {
	pair, ok := s.secrets[role]
	if !ok {
		return nil, ErrInvalidToken
	}
	return s.verify(tokenStr, pair.Refresh)
}

// VerifyAccessAny tries the access secrets of every known role in order and
// returns the first success. A bearer header serves both user and admin
// sessions, so the role is not known up front.
func (s *TokenService) VerifyAccessAny(tokenStr string) (*Claims, error) {
	for _, role := range roleOrder {
		if claims, err := s.VerifyAccess(tokenStr, role); err == nil {
			return claims, nil
		}
	}
	return nil, ErrInvalidToken
}

// VerifyRefreshAny tries the refresh secrets of every known role in order.
func (s *TokenService) VerifyRefreshAny(tokenStr string) (*Claims, error) {
	for _, role := range roleOrder {
		if claims, err := s.VerifyRefresh(tokenStr, role); err == nil {
			return claims, nil
		}
	}
	return nil, ErrInvalidToken
}

func (s *TokenService) verify(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
