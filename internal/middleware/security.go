package middleware

import (
	"ixadmin/internal/logging"
	"ixadmin/internal/response"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Package-level security logger instance
var GlobalSecurityLogger = NewSecurityLogger()

// RateLimiter implements token bucket rate limiting per IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perSecond requests per IP with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			logging.Warn().Str("ip", ip).Msg("[SECURITY] Rate limit exceeded")
			c.Header("Retry-After", "60")
			response.Abort(c, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}
		c.Next()
	}
}

// NewTokenRateLimiter limits token issuance (login) per IP: one attempt
// every 12 seconds with a burst of 10.
func NewTokenRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(12 * time.Second),
		burst:    10,
	}
}

// TokenRateLimitMiddleware enforces stricter rate limiting on the login
// endpoint.
func TokenRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			logging.Warn().Str("ip", ip).Msg("[SECURITY] Login rate limit exceeded (possible credential stuffing)")
			c.Header("Retry-After", "60")
			response.Abort(c, http.StatusTooManyRequests, "Too many login attempts, please try again later.")
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// OriginAllowed reports whether origin matches the allow-list. Entries of
// the form "*.example.com" match any subdomain of example.com.
func OriginAllowed(origin string, allowedOrigins []string) bool {
	normalizedOrigin := strings.TrimRight(origin, "/")
	if normalizedOrigin == "" {
		return false
	}

	for _, o := range allowedOrigins {
		trimmed := strings.TrimRight(strings.TrimSpace(o), "/")
		if trimmed == "" {
			continue
		}
		if trimmed == "*" || normalizedOrigin == trimmed {
			return true
		}
		if suffix, ok := strings.CutPrefix(trimmed, "*."); ok {
			if parsed, err := url.Parse(normalizedOrigin); err == nil && strings.HasSuffix(parsed.Hostname(), "."+suffix) {
				return true
			}
		}
	}
	return false
}

// CORSMiddleware configures CORS with security restrictions. allowAll is
// set in development.
func CORSMiddleware(allowedOrigins []string, allowAll bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimRight(c.GetHeader("Origin"), "/")

		if origin != "" && (allowAll || OriginAllowed(origin, allowedOrigins)) {
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID")
			c.Header("Access-Control-Max-Age", "86400")
		} else if origin != "" {
			logging.Debug().Str("origin", origin).Msg("[SECURITY] CORS origin rejected")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// BodyLimitMiddleware caps request bodies at limit bytes.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			response.Abort(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// SecurityLogger logs security events
type SecurityLogger struct{}

// LogFailedAuth logs failed authentication attempts
func (sl *SecurityLogger) LogFailedAuth(ip string, reason string) {
	logging.Warn().Str("ip", ip).Str("reason", reason).Msg("[SECURITY] ⚠️  Failed authentication")
}

// LogTokenGenerated logs a successful login
func (sl *SecurityLogger) LogTokenGenerated(ip string, email string) {
	logging.Info().Str("ip", ip).Str("email", email).Msg("[SECURITY] Token issued")
}

// LogForbidden logs an authenticated user reaching past their role
func (sl *SecurityLogger) LogForbidden(ip string, email string, path string) {
	logging.Warn().Str("ip", ip).Str("email", email).Str("path", path).Msg("[SECURITY] ⚠️  Admin route denied")
}

// LogWebSocketConnected logs successful WebSocket connections
func (sl *SecurityLogger) LogWebSocketConnected(ip string, clientID string) {
	logging.Info().Str("ip", ip).Str("client", clientID).Msg("[SECURITY] WebSocket connected")
}

// LogWebSocketDisconnected logs WebSocket disconnections
func (sl *SecurityLogger) LogWebSocketDisconnected(ip string, clientID string) {
	logging.Info().Str("ip", ip).Str("client", clientID).Msg("[SECURITY] WebSocket disconnected")
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{}
}

// InputValidator validates and sanitizes user input
type InputValidator struct{}

// ValidateToken checks if token format is valid
func (iv *InputValidator) ValidateToken(token string) bool {
	// JWT tokens are in format: header.payload.signature
	if len(token) < 20 || len(token) > 4096 {
		return false
	}
	return strings.Count(token, ".") == 2
}

// NewInputValidator creates a new input validator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}
