// Package auth issues and verifies the API's signed tokens and hashes
// passwords.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yukikurage/workforce-api/internal/config"
	"github.com/yukikurage/workforce-api/internal/constants"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
)

type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

var (
	ErrTokenExpired = apierrors.NewAuthError(apierrors.ErrCodeTokenExpired, "Token has expired")
	ErrTokenInvalid = apierrors.NewAuthError(apierrors.ErrCodeTokenInvalid, "Invalid token")
)

// Claims carried by both token kinds. Subject holds the user id as a string.
type Claims struct {
	UserID uint64          `json:"uid"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	Type   TokenType       `json:"typ"`
	jwt.RegisteredClaims
}

// Identity is the authenticated principal derived from verified claims.
type Identity struct {
	UserID uint64
	Email  string
	Role   models.UserRole
	Name   string
}

func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// Pair is the result of a successful login or refresh.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	RefreshJTI       string
}

// TokenManager signs access and refresh tokens with distinct HS256 secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	m := &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	if m.accessTTL <= 0 {
		m.accessTTL = constants.DefaultAccessTokenTTL
	}
	if m.refreshTTL <= 0 {
		m.refreshTTL = constants.DefaultRefreshTokenTTL
	}
	return m
}

// WithClock overrides the time source.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// IssuePair signs a fresh access token and refresh token for user.
func (m *TokenManager) IssuePair(user *models.User) (*Pair, error) {
	access, accessClaims, err := m.issue(user, TypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := m.issue(user, TypeRefresh)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
		RefreshJTI:       refreshClaims.ID,
	}, nil
}

func (m *TokenManager) issue(user *models.User, typ TokenType) (string, *Claims, error) {
	secret, ttl := m.accessSecret, m.accessTTL
	if typ == TypeRefresh {
		secret, ttl = m.refreshSecret, m.refreshTTL
	}

	now := m.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.TokenIssuer,
			Subject:   strconv.FormatUint(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (m *TokenManager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, TypeAccess, m.accessSecret)
}

func (m *TokenManager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(token, TypeRefresh, m.refreshSecret)
}

func (m *TokenManager) verify(token string, want TokenType, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired.Wrap(err)
		}
		return nil, ErrTokenInvalid.Wrap(err)
	}

	if claims.Type != want {
		return nil, ErrTokenInvalid.Wrap(errors.New("unexpected token type"))
	}
	if claims.Subject != strconv.FormatUint(claims.UserID, 10) || claims.ID == "" {
		return nil, ErrTokenInvalid.Wrap(errors.New("malformed claims"))
	}
	return claims, nil
}
