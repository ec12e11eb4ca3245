package middleware

import (
	"context"
	"errors"
	"ixadmin/internal/models"
	"ixadmin/internal/response"
	"ixadmin/internal/services"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// UserLookup resolves the subject of a verified token.
type UserLookup interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// AuthRequired verifies the bearer token and loads the active user it names.
func AuthRequired(users UserLookup) gin.HandlerFunc {
	validator := NewInputValidator()

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "missing bearer token")
			response.Abort(c, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		if !validator.ValidateToken(token) {
			GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "malformed token")
			response.Abort(c, http.StatusUnauthorized, "Invalid token.")
			return
		}

		claims, err := services.ValidateToken(token)
		if errors.Is(err, jwt.ErrTokenExpired) {
			response.Abort(c, http.StatusUnauthorized, "Token expired. Please login again.")
			return
		}
		if err != nil {
			GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "invalid token: "+err.Error())
			response.Abort(c, http.StatusUnauthorized, "Invalid token.")
			return
		}

		user, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			if err != nil && !errors.Is(err, services.ErrNotFound) {
				response.Fail(c, err, "Authentication failed")
				c.Abort()
				return
			}
			GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "user missing or inactive")
			response.Abort(c, http.StatusUnauthorized, "User not found or inactive.")
			return
		}

		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			email := ""
			if user != nil {
				email = user.Email
			}
			GlobalSecurityLogger.LogForbidden(c.ClientIP(), email, c.FullPath())
			response.Abort(c, http.StatusForbidden, "Admin access required.")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by AuthRequired, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
