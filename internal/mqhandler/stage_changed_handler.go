package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	mqcontracts "brokerdash/contracts/mq"
	"brokerdash/internal/service"
	"brokerdash/pkg/metrics"
)

// StageChangedHandler drops the cached stage timing snapshot whenever a
// transition commits, so the next analytics read recomputes.
type StageChangedHandler struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

func NewStageChangedHandler(analytics *service.AnalyticsService, logger *zap.Logger) *StageChangedHandler {
	return &StageChangedHandler{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *StageChangedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mqcontracts.RoutingKeyStageChanged, "stage_changed", time.Since(start))
	}()

	var p mqcontracts.StageChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal StageChangedPayload", zap.Error(err))
		return nil
	}

	h.logger.Info("Handling client.stage_changed event",
		zap.String("client_id", p.ClientID),
		zap.String("to_stage", p.ToStage),
		zap.String("trace_id", p.TraceID),
	)

	h.analytics.InvalidateCache(ctx)
	return nil
}
