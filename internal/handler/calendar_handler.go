package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brokerdash/internal/service"
)

// CalendarHandler serves the tasks ICS feed. The feed sits outside JWT auth
// so calendar apps can poll it; a shared feed key gates access instead.
type CalendarHandler struct {
	calendar *service.CalendarService
	feedKey  string
	logger   *zap.Logger
}

func NewCalendarHandler(calendar *service.CalendarService, feedKey string, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendar: calendar,
		feedKey:  feedKey,
		logger:   logger,
	}
}

func (h *CalendarHandler) GetTasksFeed(c *gin.Context) {
	if h.feedKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "calendar feed not enabled"})
		return
	}

	key := c.Query("feed_key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.feedKey)) != 1 {
		h.logger.Warn("GetTasksFeed: bad feed key", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid feed key"})
		return
	}

	ics, err := h.calendar.TasksFeed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, service.ICSContentType, []byte(ics))
}
