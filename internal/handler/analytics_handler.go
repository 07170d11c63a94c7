package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brokerdash/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

func (h *AnalyticsHandler) GetStageTiming(c *gin.Context) {
	report, err := h.analytics.StageTiming(c.Request.Context())
	if err != nil {
		h.logger.Error("GetStageTiming: failed to build report", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
