package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brokerdash/pkg/outbox"
)

// AdminHandler exposes outbox inspection and replay for operators.
type AdminHandler struct {
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewAdminHandler(outboxRepo *outbox.Repository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// ListFailedEvents returns events the dispatcher gave up on.
// GET /admin/outbox/failed?limit=100
func (h *AdminHandler) ListFailedEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	events, err := h.outboxRepo.GetFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to fetch failed outbox events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ReplayEvent resets a parked event to pending so the dispatcher retries it.
// POST /admin/outbox/replay?id=xxx
func (h *AdminHandler) ReplayEvent(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id parameter"})
		return
	}

	eventID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	if err := h.outboxRepo.ReplayEvent(c.Request.Context(), eventID); err != nil {
		h.logger.Error("Failed to replay outbox event",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replay event"})
		return
	}

	h.logger.Info("Outbox event queued for replay", zap.Int64("event_id", eventID))
	c.JSON(http.StatusOK, gin.H{
		"status":   "replayed",
		"event_id": eventID,
	})
}
