package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brokerdash/internal/apperr"
	"brokerdash/internal/model"
	"brokerdash/internal/pipeline"
	"brokerdash/internal/repository"
	"brokerdash/pkg/metrics"
)

// TransitionStore is the persistence surface the executor needs.
// ClientRepository implements it; tests supply an in-memory fake.
type TransitionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	// ApplyStageTransition commits the conditional stage update, history
	// append, and outbox event as one transaction. expectedFrom is the raw
	// stored stage; returns false, nil when the column no longer matches it.
	ApplyStageTransition(ctx context.Context, id uuid.UUID, expectedFrom, to pipeline.Stage, changedAt time.Time) (bool, error)
}

// TransitionService executes pipeline stage transitions.
type TransitionService struct {
	store  TransitionStore
	logger *zap.Logger
	now    func() time.Time
}

func NewTransitionService(store TransitionStore, logger *zap.Logger) *TransitionService {
	return &TransitionService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// MoveStage moves a client to the target stage on behalf of the actor.
//
// No-op moves succeed without side effects. A denied role gets
// ErrForbidden with no mutation. The write is conditioned on the stage
// read in this attempt; a stale read is retried once from the top before
// surfacing ErrConflict.
func (s *TransitionService) MoveStage(ctx context.Context, clientID uuid.UUID, target pipeline.Stage, actor model.Actor) (*model.Client, error) {
	target = pipeline.Normalize(string(target))

	const attempts = 2
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := s.store.GetByID(ctx, clientID)
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				metrics.IncrementStageTransition(string(target), "not_found")
				return nil, apperr.NotFound("client")
			}
			metrics.IncrementStageTransition(string(target), "error")
			return nil, apperr.Upstream(err)
		}

		if client.Stage == target {
			// Idempotent no-op: no history entry, no error.
			metrics.IncrementStageTransition(string(target), "noop")
			return client, nil
		}

		if !pipeline.IsTransitionAllowed(actor.Role, client.Stage, target) {
			s.logger.Warn("Stage transition denied",
				zap.String("client_id", clientID.String()),
				zap.String("role", actor.Role),
				zap.String("from_stage", string(client.Stage)),
				zap.String("to_stage", string(target)),
			)
			metrics.IncrementStageTransition(string(target), "forbidden")
			return nil, apperr.Forbidden("role may not perform this transition")
		}

		// Condition the write on what the row actually holds. Legacy rows
		// store retired labels that the normalized view would never match.
		expectedFrom := client.Stage
		if client.StoredStage != "" {
			expectedFrom = pipeline.Stage(client.StoredStage)
		}
		applied, err := s.store.ApplyStageTransition(ctx, clientID, expectedFrom, target, s.now())
		if err != nil {
			metrics.IncrementStageTransition(string(target), "error")
			return nil, apperr.Upstream(err)
		}
		if applied {
			metrics.IncrementStageTransition(string(target), "ok")
			client.Stage = target
			return client, nil
		}

		// Precondition failed: another actor moved the client between our
		// read and write. Re-read and try once more.
		s.logger.Info("Stage transition precondition failed",
			zap.String("client_id", clientID.String()),
			zap.Int("attempt", attempt),
		)
	}

	metrics.IncrementStageTransition(string(target), "conflict")
	return nil, apperr.ErrConflict
}
