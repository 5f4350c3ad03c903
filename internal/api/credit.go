package api

import (
	"errors"
	"net/http"

	"crownium_bot/internal/metrics"
	"crownium_bot/internal/middleware"
	"crownium_bot/internal/service"
	"crownium_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type creditRoutes struct {
	cs      service.CreditServiceI
	metrics *metrics.Metrics
}

// NewCreditRoutes mounts the task network callback. The amount is not
// validated; callers are trusted once they pass cb.
func NewCreditRoutes(handler *gin.RouterGroup, cs service.CreditServiceI, cb *middleware.CallbackAuthorization, m *metrics.Metrics) {
	r := &creditRoutes{cs: cs, metrics: m}
	h := handler.Group("/webhook")
	h.Use(cb.Verify())
	{
		h.POST("/offer-complete", r.OfferComplete)
	}
}

type OfferCompleteRequest struct {
	UserID         *int64 `json:"userId" binding:"required"`
	CrowniumReward int64  `json:"crowniumReward"`
}

func (r *creditRoutes) OfferComplete(c *gin.Context) {
	log := logger.Logger()

	var req OfferCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind credit callback", zap.Error(err))
		r.metrics.RecordCredit("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := *req.UserID
	err := r.cs.CreditTask(c.Request.Context(), userID, req.CrowniumReward)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			log.Warn("credit callback for unknown user",
				zap.Int64("telegram_id", userID),
				zap.Int64("amount", req.CrowniumReward))
			r.metrics.RecordCredit("unknown_user")
			c.Status(http.StatusOK)
			return
		}

		log.Error("failed to credit task", zap.Error(err), zap.Int64("telegram_id", userID))
		r.metrics.RecordCredit("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to credit task"})
		return
	}

	r.metrics.RecordCredit("ok")
	r.metrics.RecordMinted("task", req.CrowniumReward)
	log.Info("credited task crownium",
		zap.Int64("telegram_id", userID),
		zap.Int64("amount", req.CrowniumReward),
		zap.String("request_id", c.GetString(middleware.ContextRequestID)))

	c.Status(http.StatusOK)
}
