package services

import (
	"errors"
	"fmt"
	"ixadmin/internal/logging"
	"ixadmin/internal/models"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService signs and verifies admin session tokens.
type AuthService struct {
	secretKey   string
	tokenExpiry time.Duration
}

// CustomClaims is the JWT payload issued at login.
type CustomClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var authService *AuthService

// InitAuthService installs the process-wide token signer.
func InitAuthService(secretKey string, tokenExpiry time.Duration) *AuthService {
	secretKey = strings.TrimSpace(secretKey)
	if len(secretKey) < 32 {
		logging.Warn().Int("length", len(secretKey)).Msg("[AUTH] ⚠️  JWT secret is shorter than 32 bytes; set JWT_SECRET")
	}
	if tokenExpiry <= 0 {
		tokenExpiry = 7 * 24 * time.Hour
	}

	authService = &AuthService{
		secretKey:   secretKey,
		tokenExpiry: tokenExpiry,
	}
	return authService
}

// GenerateToken issues a signed token for user.
func GenerateToken(user *models.User) (string, error) {
	if authService == nil {
		return "", fmt.Errorf("auth service not initialized")
	}

	now := time.Now()
	claims := CustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(authService.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "ixadmin",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authService.secretKey))
}

// ValidateToken verifies a token and returns its claims. An expired token
// yields an error matching jwt.ErrTokenExpired.
func ValidateToken(tokenString string) (*CustomClaims, error) {
	if authService == nil {
		return nil, fmt.Errorf("auth service not initialized")
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(authService.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetTokenExpiry returns how long newly issued tokens live.
func GetTokenExpiry() time.Duration {
	if authService == nil {
		return 0
	}
	return authService.tokenExpiry
}
