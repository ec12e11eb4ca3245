package controllers

import (
	"ixadmin/internal/response"
	"ixadmin/internal/services"

	"github.com/gin-gonic/gin"
)

// StatsController serves the three single-row stats documents.
type StatsController struct {
	stats *services.StatsService
}

func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

func (sc *StatsController) GetNetworkStats(c *gin.Context) {
	row, err := sc.stats.NetworkStats(c.Request.Context())
	if err != nil {
		response.Fail(c, err, "Failed to get network stats")
		return
	}
	response.OK(c, row)
}

func (sc *StatsController) UpdateNetworkStats(c *gin.Context) {
	var patch services.NetworkStatsPatch
	if !bind(c, &patch) {
		return
	}
	row, err := sc.stats.UpdateNetworkStats(c.Request.Context(), patch)
	if err != nil {
		response.Fail(c, err, "Failed to update network stats")
		return
	}
	response.OKWithMessage(c, row, "Network stats updated successfully")
}

func (sc *StatsController) GetGlobalFabricStats(c *gin.Context) {
	row, err := sc.stats.GlobalFabricStats(c.Request.Context())
	if err != nil {
		response.Fail(c, err, "Failed to get global fabric stats")
		return
	}
	response.OK(c, row)
}

func (sc *StatsController) UpdateGlobalFabricStats(c *gin.Context) {
	var patch services.GlobalFabricStatsPatch
	if !bind(c, &patch) {
		return
	}
	row, err := sc.stats.UpdateGlobalFabricStats(c.Request.Context(), patch)
	if err != nil {
		response.Fail(c, err, "Failed to update global fabric stats")
		return
	}
	response.OKWithMessage(c, row, "Global fabric stats updated successfully")
}

func (sc *StatsController) GetGlobalStats(c *gin.Context) {
	row, err := sc.stats.GlobalStats(c.Request.Context())
	if err != nil {
		response.Fail(c, err, "Failed to fetch global statistics")
		return
	}
	response.OK(c, row)
}

func (sc *StatsController) ReplaceGlobalStats(c *gin.Context) {
	var req services.GlobalStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "All stat fields are required")
		return
	}
	row, err := sc.stats.ReplaceGlobalStats(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err, "Failed to update global statistics")
		return
	}
	response.OKWithMessage(c, row, "Global statistics updated successfully")
}
