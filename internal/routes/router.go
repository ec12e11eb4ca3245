package routes

import (
	"ixadmin/internal/config"
	"ixadmin/internal/controllers"
	"ixadmin/internal/metrics"
	"ixadmin/internal/middleware"
	"ixadmin/internal/response"
	"ixadmin/internal/services"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies the HTTP layer is built from.
type Services struct {
	Users      *services.UserService
	Locations  *services.LocationService
	Catalog    *services.CatalogService
	Continents *services.ContinentService
	Contacts   *services.ContactService
	Stats      *services.StatsService
	Traffic    *services.TrafficService
	Upstream   *services.UpstreamService
	Health     *services.HealthService
	Hub        *services.LiveHub
}

// NewRouter builds the engine with the full middleware chain and every
// route under /api.
func NewRouter(cfg *config.Config, s Services) *gin.Engine {
	response.UseJSONFieldNames()

	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	origins := cfg.AllowedOrigins()
	r.Use(
		middleware.Recovery(cfg.IsDevelopment()),
		middleware.RequestID(),
		middleware.RequestLogger(),
		metrics.Middleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.CORSMiddleware(origins, cfg.IsDevelopment()),
		middleware.BodyLimitMiddleware(cfg.Server.BodyLimit),
		middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)),
	)

	requireAuth := middleware.AuthRequired(s.Users)
	adminOnly := middleware.AdminOnly()

	api := r.Group("/api")
	RegisterPlatformRoutes(r, api, controllers.NewPlatformController(s.Health))
	RegisterAuthRoutes(api, controllers.NewAuthController(s.Users), requireAuth, middleware.NewTokenRateLimiter())
	RegisterLocationRoutes(api, controllers.NewLocationController(s.Locations), requireAuth, adminOnly)
	RegisterServiceRoutes(api, controllers.NewServiceController(s.Catalog), requireAuth, adminOnly)
	RegisterContinentRoutes(api, controllers.NewContinentController(s.Continents), requireAuth, adminOnly)
	RegisterContactRoutes(api, controllers.NewContactController(s.Contacts), requireAuth, adminOnly)
	RegisterStatsRoutes(api, controllers.NewStatsController(s.Stats), requireAuth)
	RegisterGrafanaRoutes(api,
		controllers.NewGrafanaController(s.Traffic, s.Upstream),
		controllers.NewLiveController(s.Hub, origins, cfg.IsDevelopment()),
	)

	r.NoRoute(middleware.NoRoute())
	return r
}
