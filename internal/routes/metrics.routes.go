package routes

import (
	"ixadmin/internal/controllers"
	"ixadmin/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RegisterPlatformRoutes registers the service banner, health check and
// Prometheus scrape endpoint.
func RegisterPlatformRoutes(r *gin.Engine, api *gin.RouterGroup, pc *controllers.PlatformController) {
	r.GET("/", pc.Root)
	r.GET("/metrics", metrics.Handler())
	api.GET("/health", pc.Health)
}
