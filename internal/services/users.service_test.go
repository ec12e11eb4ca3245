package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newTestDB(t))

	user, err := svc.Create(ctx, "Admin@MX-IX.com", "admin123", "Admin", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)

	got, err := svc.Authenticate(ctx, "admin@mx-ix.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLogin)

	_, err = svc.Authenticate(ctx, "admin@mx-ix.com", "wrong")
	requireKind(t, err, ErrUnauthorized, "Invalid credentials")

	_, err = svc.Authenticate(ctx, "nobody@mx-ix.com", "admin123")
	requireKind(t, err, ErrUnauthorized, "Invalid credentials")

	require.NoError(t, svc.setActive(ctx, user.ID, false))
	_, err = svc.Authenticate(ctx, "admin@mx-ix.com", "admin123")
	requireKind(t, err, ErrUnauthorized, "Account is deactivated")
}

func TestCreateUserRejectsDuplicatesAndShortPasswords(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newTestDB(t))

	_, err := svc.Create(ctx, "a@mx-ix.com", "12345", "A", "editor")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, "a@mx-ix.com", "123456", "A", "editor")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "A@mx-ix.com", "123456", "A", "editor")
	requireKind(t, err, ErrConflict, "User with this email already exists")
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newTestDB(t))
	user, err := svc.Create(ctx, "a@mx-ix.com", "secret1", "A", "editor")
	require.NoError(t, err)

	requireKind(t, svc.ChangePassword(ctx, user.ID, "wrong!", "secret2"), ErrUnauthorized, "Current password is incorrect")
	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "secret1", "123"), ErrInvalid)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret1", "secret2"))

	_, err = svc.Authenticate(ctx, "a@mx-ix.com", "secret2")
	assert.NoError(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	InitAuthService("test-secret-that-is-long-enough-for-hs256", time.Hour)
	svc := NewUserService(newTestDB(t))
	user, err := svc.Create(context.Background(), "e@mx-ix.com", "secret1", "E", "editor")
	require.NoError(t, err)

	token, err := GenerateToken(user)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "editor", claims.Role)
	assert.Equal(t, time.Hour, GetTokenExpiry())

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	InitAuthService("test-secret-that-is-long-enough-for-hs256", time.Hour)
	claims := CustomClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-that-is-long-enough-for-hs256"))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
