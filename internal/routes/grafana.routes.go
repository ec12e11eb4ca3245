package routes

import (
	"ixadmin/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterGrafanaRoutes registers the public traffic proxy and the live
// websocket.
func RegisterGrafanaRoutes(api *gin.RouterGroup, gc *controllers.GrafanaController, live *controllers.LiveController) {
	grafana := api.Group("/grafana")
	{
		grafana.GET("/traffic", gc.Traffic)
		grafana.GET("/realtime", gc.Realtime)
		grafana.GET("/status", gc.Status)
		grafana.GET("/dashboards", gc.Dashboards)
		grafana.GET("/dashboard/:dashboardId", gc.Dashboard)
		grafana.GET("/hosts", gc.Hosts)
		grafana.GET("/live", live.HandleWebSocket)
	}
}
