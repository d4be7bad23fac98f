package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Pinger func(ctx context.Context) error

type HealthController struct {
	checks map[string]Pinger
	log    logrus.FieldLogger
}

func NewHealthController(checks map[string]Pinger, log logrus.FieldLogger) *HealthController {
	return &HealthController{checks: checks, log: log}
}

func (h *HealthController) Root(c *gin.Context) {
	c.String(http.StatusOK, "API is running")
}

func (h *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := gin.H{}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.log.WithFields(logrus.Fields{"check": name, "error": err.Error()}).Warn("health check failed")
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": report})
}
