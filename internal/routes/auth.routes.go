package routes

import (
	"ixadmin/internal/controllers"
	"ixadmin/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers login and the signed-in user's endpoints.
// Login sits behind the stricter per-IP token limiter.
func RegisterAuthRoutes(api *gin.RouterGroup, ac *controllers.AuthController, requireAuth gin.HandlerFunc, loginLimiter *middleware.RateLimiter) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.TokenRateLimitMiddleware(loginLimiter), ac.Login)
		auth.GET("/me", requireAuth, ac.Me)
		auth.PUT("/password", requireAuth, ac.ChangePassword)
	}
}
