package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yukikurage/workforce-api/internal/config"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
)

func newManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

var testUser = &models.User{ID: 42, Email: "a@example.com", Role: models.RoleManager}

func TestIssuePair_RoundTrip(t *testing.T) {
	m := newManager()

	pair, err := m.IssuePair(testUser)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.NotEmpty(t, pair.RefreshJTI)

	claims, err := m.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.Equal(t, Identity{UserID: 42, Email: "a@example.com", Role: models.RoleManager}, claims.Identity())

	refresh, err := m.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshJTI, refresh.ID)
}

func TestVerify_RejectsWrongKind(t *testing.T) {
	m := newManager()
	pair, err := m.IssuePair(testUser)
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Expired(t *testing.T) {
	m := newManager()
	past := time.Now().Add(-time.Hour)
	m.WithClock(func() time.Time { return past })

	pair, err := m.IssuePair(testUser)
	require.NoError(t, err)

	m.WithClock(time.Now)
	_, err = m.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrCodeTokenExpired, appErr.Code)
}

func TestVerify_RejectsTamperedAndForeignTokens(t *testing.T) {
	m := newManager()
	pair, err := m.IssuePair(testUser)
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.AccessToken + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// alg=none must never verify.
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Type: TypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.VerifyAccess(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewTokenManager(config.AuthConfig{AccessSecret: "other", RefreshSecret: "other-refresh"})
	foreign, err := other.IssuePair(testUser)
	require.NoError(t, err)
	_, err = m.VerifyAccess(foreign.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHasher(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, h.Compare(hash, "correct horse"))
	assert.False(t, h.Compare(hash, "wrong"))
	assert.False(t, h.Compare("not-a-hash", "correct horse"))

	h.CompareDummy("anything")
}
