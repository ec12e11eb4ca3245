package routes

import (
	"ixadmin/internal/controllers"

	"github.com/gin-gonic/gin"
)

// Reads are public. Writes need a token; top-level deletes need an admin.

func RegisterLocationRoutes(api *gin.RouterGroup, lc *controllers.LocationController, requireAuth, adminOnly gin.HandlerFunc) {
	locations := api.Group("/locations")
	{
		locations.GET("", lc.List)
		locations.GET("/:id", lc.Get)
		locations.POST("", requireAuth, lc.Create)
		locations.PUT("/:id", requireAuth, lc.Update)
		locations.DELETE("/:id", requireAuth, adminOnly, lc.Delete)

		locations.GET("/:id/asns", lc.ListASNs)
		locations.POST("/:id/asns", requireAuth, lc.AddASN)
		locations.PUT("/:id/asns/:asnNumber", requireAuth, lc.UpdateASN)
		locations.DELETE("/:id/asns/:asnNumber", requireAuth, lc.DeleteASN)

		locations.GET("/:id/sites", lc.ListSites)
		locations.POST("/:id/sites", requireAuth, lc.AddSite)
		locations.PUT("/:id/sites/:siteId", requireAuth, lc.UpdateSite)
		locations.DELETE("/:id/sites/:siteId", requireAuth, lc.DeleteSite)
	}
}

func RegisterServiceRoutes(api *gin.RouterGroup, sc *controllers.ServiceController, requireAuth, adminOnly gin.HandlerFunc) {
	svc := api.Group("/services")
	{
		svc.GET("", sc.List)
		svc.GET("/:id", sc.Get)
		svc.POST("", requireAuth, sc.Create)
		svc.PUT("/:id", requireAuth, sc.Update)
		svc.DELETE("/:id", requireAuth, adminOnly, sc.Delete)

		svc.POST("/:id/items", requireAuth, sc.AddItem)
		svc.PUT("/:id/items/:itemIndex", requireAuth, sc.UpdateItem)
		svc.DELETE("/:id/items/:itemIndex", requireAuth, sc.DeleteItem)
	}
}

func RegisterContinentRoutes(api *gin.RouterGroup, cc *controllers.ContinentController, requireAuth, adminOnly gin.HandlerFunc) {
	continents := api.Group("/continents")
	{
		continents.GET("", cc.List)
		continents.GET("/:id", cc.Get)
		continents.POST("", requireAuth, cc.Create)
		continents.PUT("/:id", requireAuth, cc.Update)
		continents.DELETE("/:id", requireAuth, adminOnly, cc.Delete)
	}
}

func RegisterContactRoutes(api *gin.RouterGroup, cc *controllers.ContactController, requireAuth, adminOnly gin.HandlerFunc) {
	contacts := api.Group("/contacts")
	{
		contacts.GET("", cc.List)
		contacts.GET("/:department/:locationId", cc.Get)
		contacts.PUT("/:department/:locationId", requireAuth, cc.Upsert)
		contacts.DELETE("/:department/:locationId", requireAuth, adminOnly, cc.Delete)
	}
}

func RegisterStatsRoutes(api *gin.RouterGroup, sc *controllers.StatsController, requireAuth gin.HandlerFunc) {
	api.GET("/network-stats", sc.GetNetworkStats)
	api.PUT("/network-stats", requireAuth, sc.UpdateNetworkStats)

	api.GET("/global-fabric-stats", sc.GetGlobalFabricStats)
	api.PUT("/global-fabric-stats", requireAuth, sc.UpdateGlobalFabricStats)

	api.GET("/stats", sc.GetGlobalStats)
	api.PUT("/stats", requireAuth, sc.ReplaceGlobalStats)
}
