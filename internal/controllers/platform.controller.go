package controllers

import (
	"ixadmin/internal/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is stamped at build time with -ldflags.
var Version = "1.0.0"

type PlatformController struct {
	health *services.HealthService
}

func NewPlatformController(health *services.HealthService) *PlatformController {
	return &PlatformController{health: health}
}

func (pc *PlatformController) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":          "MX-IX Admin Panel API",
		"version":       Version,
		"description":   "Backend API for MX-IX content management",
		"documentation": "/api/health",
	})
}

// Health always answers 200; a lost database shows up in the payload.
func (pc *PlatformController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "MX-IX Admin API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"data":      pc.health.Check(c.Request.Context()),
	})
}
