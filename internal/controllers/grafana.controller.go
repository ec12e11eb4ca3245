package controllers

import (
	"ixadmin/internal/response"
	"ixadmin/internal/services"

	"github.com/gin-gonic/gin"
)

// GrafanaController exposes the traffic proxy. Traffic, realtime and status
// always answer 200; the pass-through endpoints report upstream failures.
type GrafanaController struct {
	traffic  *services.TrafficService
	upstream *services.UpstreamService
}

func NewGrafanaController(traffic *services.TrafficService, upstream *services.UpstreamService) *GrafanaController {
	return &GrafanaController{traffic: traffic, upstream: upstream}
}

func (gc *GrafanaController) Traffic(c *gin.Context) {
	response.OK(c, gc.traffic.Traffic(c.Request.Context()))
}

func (gc *GrafanaController) Realtime(c *gin.Context) {
	response.OK(c, gc.traffic.Realtime(c.Request.Context()))
}

func (gc *GrafanaController) Status(c *gin.Context) {
	response.OK(c, gc.upstream.Status(c.Request.Context()))
}

func (gc *GrafanaController) Dashboards(c *gin.Context) {
	list, err := gc.upstream.Dashboards(c.Request.Context())
	if err != nil {
		response.Fail(c, err, "Failed to fetch dashboards")
		return
	}
	response.OK(c, list)
}

func (gc *GrafanaController) Dashboard(c *gin.Context) {
	dash, err := gc.upstream.Dashboard(c.Request.Context(), c.Param("dashboardId"))
	if err != nil {
		response.Fail(c, err, "Failed to fetch dashboard data")
		return
	}
	response.OK(c, dash)
}

func (gc *GrafanaController) Hosts(c *gin.Context) {
	hosts, err := gc.upstream.Hosts(c.Request.Context())
	if err != nil {
		response.Fail(c, err, "Failed to fetch hosts")
		return
	}
	response.OK(c, hosts)
}
