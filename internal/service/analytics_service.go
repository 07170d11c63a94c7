package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"brokerdash/internal/apperr"
	"brokerdash/internal/model"
	"brokerdash/internal/pipeline"
	"brokerdash/internal/repository"
	"brokerdash/pkg/metrics"
)

// Cache key for the stage timing snapshot; invalidated by the worker on
// every committed stage transition.
const analyticsCacheKey = "analytics:stage_timing"

const analyticsCacheTTL = 5 * time.Minute

// HistoryRow is one raw history entry enriched with the client name for
// the analytics table.
type HistoryRow struct {
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name,omitempty"`
	FromStage  *pipeline.Stage `json:"from_stage"`
	ToStage    pipeline.Stage  `json:"to_stage"`
	ChangedAt  time.Time       `json:"changed_at"`
}

// StageTimingReport is the analytics page payload.
type StageTimingReport struct {
	Metrics     []pipeline.StageMetric `json:"metrics"`
	Recent      []HistoryRow           `json:"recent"`
	GeneratedAt time.Time              `json:"generated_at"`
}

type AnalyticsService struct {
	historyRepo *repository.HistoryRepository
	clientRepo  *repository.ClientRepository
	rdb         *redis.Client
	logger      *zap.Logger
	now         func() time.Time
}

func NewAnalyticsService(
	historyRepo *repository.HistoryRepository,
	clientRepo *repository.ClientRepository,
	rdb *redis.Client,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		historyRepo: historyRepo,
		clientRepo:  clientRepo,
		rdb:         rdb,
		logger:      logger,
		now:         time.Now,
	}
}

// StageTiming returns the dwell-time report, from cache when fresh.
// Redis being down degrades to a direct computation, never an error.
func (s *AnalyticsService) StageTiming(ctx context.Context) (*StageTimingReport, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, analyticsCacheKey).Bytes()
		if err == nil {
			var report StageTimingReport
			if err := json.Unmarshal(cached, &report); err == nil {
				metrics.IncrementAnalyticsCache("hit")
				return &report, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Analytics cache read failed", zap.Error(err))
			metrics.IncrementAnalyticsCache("bypass")
		} else {
			metrics.IncrementAnalyticsCache("miss")
		}
	}

	report, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := s.rdb.Set(ctx, analyticsCacheKey, data, analyticsCacheTTL).Err(); err != nil {
				s.logger.Warn("Analytics cache write failed", zap.Error(err))
			}
		}
	}
	return report, nil
}

func (s *AnalyticsService) compute(ctx context.Context) (*StageTimingReport, error) {
	entries, err := s.historyRepo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	clients, err := s.clientRepo.List(ctx, true)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	nameByID := make(map[string]string, len(clients))
	for _, c := range clients {
		nameByID[c.ID.String()] = c.Name
	}

	recentEntries, err := s.historyRepo.ListRecent(ctx, 200)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	recent := make([]HistoryRow, 0, len(recentEntries))
	for _, e := range recentEntries {
		recent = append(recent, HistoryRow{
			ClientID:   e.ClientID.String(),
			ClientName: nameByID[e.ClientID.String()],
			FromStage:  e.FromStage,
			ToStage:    e.ToStage,
			ChangedAt:  e.ChangedAt,
		})
	}

	return &StageTimingReport{
		Metrics:     pipeline.AggregateDwell(model.PipelineEntries(entries)),
		Recent:      recent,
		GeneratedAt: s.now(),
	}, nil
}

// InvalidateCache drops the cached snapshot. Called by the worker when a
// stage transition commits.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, analyticsCacheKey).Err(); err != nil {
		s.logger.Warn("Analytics cache invalidation failed", zap.Error(err))
	}
}
