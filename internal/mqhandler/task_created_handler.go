package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	mqcontracts "brokerdash/contracts/mq"
	"brokerdash/internal/service"
	"brokerdash/pkg/metrics"
	"brokerdash/pkg/trace"
	"brokerdash/pkg/util"
)

type TaskCreatedHandler struct {
	notifications *service.NotificationService
	deduper       *util.Deduper
	logger        *zap.Logger
}

func NewTaskCreatedHandler(
	notifications *service.NotificationService,
	deduper *util.Deduper,
	logger *zap.Logger,
) *TaskCreatedHandler {
	return &TaskCreatedHandler{
		notifications: notifications,
		deduper:       deduper,
		logger:        logger,
	}
}

func (h *TaskCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mqcontracts.RoutingKeyTaskCreated, "task_created", time.Since(start))
	}()

	var p mqcontracts.TaskCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TaskCreatedPayload", zap.Error(err))
		// Malformed payloads never become valid on redelivery.
		return nil
	}

	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}

	if !h.deduper.AcquireOnce(ctx, "task_created", p.TaskID) {
		return nil
	}

	h.logger.Info("Handling task.created event",
		zap.String("task_id", p.TaskID),
		zap.String("title", p.Title),
		zap.String("trace_id", p.TraceID),
	)

	if err := h.notifications.SendTaskCreated(ctx, p); err != nil {
		h.logger.Error("Failed to send task notification", zap.Error(err))
		// Don't return error - the task exists regardless, and redelivering
		// a failed email send would only hammer the provider.
	}

	return nil
}
