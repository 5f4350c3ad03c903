package api

import (
	"context"
	"net/http"

	"crownium_bot/internal/metrics"
	"crownium_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewHealthRoutes(handler *gin.Engine, db Pinger, m *metrics.Metrics, metricsPath string) {
	handler.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			logger.Logger().Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if m != nil && metricsPath != "" {
		handler.GET(metricsPath, gin.WrapH(m.Handler()))
	}
}
