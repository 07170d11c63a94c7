package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brokerdash/internal/apperr"
	"brokerdash/internal/model"
	"brokerdash/internal/pipeline"
	"brokerdash/internal/repository"
	"brokerdash/pkg/rbac"
)

// StageDuration is the days-in-stage view for one client.
type StageDuration struct {
	ClientID  string         `json:"client_id"`
	Stage     pipeline.Stage `json:"stage"`
	EnteredAt time.Time      `json:"entered_at"`
	Days      int            `json:"days"`
	Tier      pipeline.Tier  `json:"tier"`
}

type ClientService struct {
	clientRepo  *repository.ClientRepository
	historyRepo *repository.HistoryRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewClientService(
	clientRepo *repository.ClientRepository,
	historyRepo *repository.HistoryRepository,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		historyRepo: historyRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Create validates and persists a new client. The stage is normalized at
// this boundary; whatever the form sent, only catalog values are stored.
func (s *ClientService) Create(ctx context.Context, c *model.Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("client name is required")
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Stage = pipeline.Normalize(string(c.Stage))

	if err := s.clientRepo.Insert(ctx, c); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("client")
		}
		return nil, apperr.Upstream(err)
	}
	return c, nil
}

func (s *ClientService) List(ctx context.Context, includeArchived bool) ([]model.Client, error) {
	clients, err := s.clientRepo.List(ctx, includeArchived)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return clients, nil
}

// Update writes descriptive fields only; stage changes go through the
// transition executor.
func (s *ClientService) Update(ctx context.Context, c *model.Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("client name is required")
	}
	err := s.clientRepo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.NotFound("client")
		}
		return apperr.Upstream(err)
	}
	return nil
}

func (s *ClientService) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	err := s.clientRepo.SetArchived(ctx, id, archived)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.NotFound("client")
		}
		return apperr.Upstream(err)
	}
	return nil
}

// HardDelete irreversibly removes a client and its history. Admin only;
// deliberately bypasses the state machine.
func (s *ClientService) HardDelete(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	if err := rbac.CheckPermission(actor.Role, rbac.PermissionHardDeleteClient); err != nil {
		return apperr.Forbidden("hard delete requires the admin role")
	}
	err := s.clientRepo.HardDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.NotFound("client")
		}
		return apperr.Upstream(err)
	}
	s.logger.Warn("Client hard-deleted by admin",
		zap.String("client_id", id.String()),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}

func (s *ClientService) History(ctx context.Context, id uuid.UUID) ([]model.StageHistoryEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByClient(ctx, id)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return entries, nil
}

// StageDuration derives when the client entered its current stage and the
// days-in-stage badge tier.
func (s *ClientService) StageDuration(ctx context.Context, id uuid.UUID) (*StageDuration, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByClient(ctx, id)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	fallback := c.UpdatedAt
	if fallback.IsZero() {
		fallback = c.CreatedAt
	}
	enteredAt := pipeline.EnteredCurrentStageAt(model.PipelineEntries(entries), fallback)
	days := pipeline.DaysInStage(enteredAt, s.now())

	return &StageDuration{
		ClientID:  c.ID.String(),
		Stage:     c.Stage,
		EnteredAt: enteredAt,
		Days:      days,
		Tier:      pipeline.TierFor(days),
	}, nil
}
