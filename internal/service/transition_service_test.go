package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brokerdash/internal/apperr"
	"brokerdash/internal/model"
	"brokerdash/internal/pipeline"
	"brokerdash/internal/repository"
	"brokerdash/pkg/rbac"
)

// fakeStore is an in-memory TransitionStore. It mirrors the repository's
// contract: stored stage values come back normalized with the raw value
// alongside, ApplyStageTransition conditions on the raw value, and the
// update and history append land together or not at all. The map holds
// the raw stage in Stage, standing in for the database column.
type fakeStore struct {
	clients map[uuid.UUID]*model.Client
	history []model.StageHistoryEntry

	// applyErr forces the transactional write to fail entirely.
	applyErr error
	// forceStale makes every conditional write report a failed
	// precondition, as if another actor keeps winning the race.
	forceStale bool
	// staleOnce makes only the first conditional write fail.
	staleOnce bool

	getCalls   int
	applyCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{clients: make(map[uuid.UUID]*model.Client)}
}

func (f *fakeStore) addClient(stage pipeline.Stage) uuid.UUID {
	return f.addClientRaw(string(stage))
}

// addClientRaw seeds a row holding stage verbatim, the way legacy rows
// carry retired labels.
func (f *fakeStore) addClientRaw(stage string) uuid.UUID {
	id := uuid.New()
	f.clients[id] = &model.Client{
		ID:        id,
		Name:      "Test Client",
		Stage:     pipeline.Stage(stage),
		UpdatedAt: time.Now(),
	}
	return id
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	f.getCalls++
	c, ok := f.clients[id]
	if !ok {
		return nil, repository.ErrNoRows
	}
	copied := *c
	copied.StoredStage = string(c.Stage)
	copied.Stage = pipeline.Normalize(copied.StoredStage)
	return &copied, nil
}

func (f *fakeStore) ApplyStageTransition(_ context.Context, id uuid.UUID, expectedFrom, to pipeline.Stage, changedAt time.Time) (bool, error) {
	f.applyCalls++
	if f.applyErr != nil {
		// Transactional failure: nothing is visible afterwards.
		return false, f.applyErr
	}
	if f.forceStale {
		return false, nil
	}
	if f.staleOnce {
		f.staleOnce = false
		return false, nil
	}

	c, ok := f.clients[id]
	if !ok || c.Stage != expectedFrom {
		return false, nil
	}

	from := pipeline.Normalize(string(expectedFrom))
	c.Stage = to
	c.UpdatedAt = changedAt
	f.history = append(f.history, model.StageHistoryEntry{
		ClientID:  id,
		FromStage: &from,
		ToStage:   to,
		ChangedAt: changedAt,
	})
	return true, nil
}

func newTestService(store *fakeStore) *TransitionService {
	return NewTransitionService(store, zap.NewNop())
}

func admin() model.Actor     { return model.Actor{UserID: "u1", Role: rbac.RoleAdmin} }
func assistant() model.Actor { return model.Actor{UserID: "u2", Role: rbac.RoleAssistant} }

func TestMoveStageRoundTrip(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageLead)
	svc := newTestService(store)

	got, err := svc.MoveStage(context.Background(), id, pipeline.StageChecklistSent, assistant())
	if err != nil {
		t.Fatalf("MoveStage returned error: %v", err)
	}
	if got.Stage != pipeline.StageChecklistSent {
		t.Errorf("returned stage = %q, want %q", got.Stage, pipeline.StageChecklistSent)
	}

	if store.clients[id].Stage != pipeline.StageChecklistSent {
		t.Errorf("stored stage = %q, want %q", store.clients[id].Stage, pipeline.StageChecklistSent)
	}
	if len(store.history) != 1 {
		t.Fatalf("history has %d entries, want 1", len(store.history))
	}
	entry := store.history[0]
	if entry.ToStage != pipeline.StageChecklistSent {
		t.Errorf("history to_stage = %q, want %q", entry.ToStage, pipeline.StageChecklistSent)
	}
	if entry.FromStage == nil || *entry.FromStage != pipeline.StageLead {
		t.Errorf("history from_stage = %v, want %q", entry.FromStage, pipeline.StageLead)
	}
}

func TestMoveStageNoOp(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageDocsReceived)
	svc := newTestService(store)

	for _, actor := range []model.Actor{admin(), assistant()} {
		got, err := svc.MoveStage(context.Background(), id, pipeline.StageDocsReceived, actor)
		if err != nil {
			t.Fatalf("no-op move returned error for %s: %v", actor.Role, err)
		}
		if got.Stage != pipeline.StageDocsReceived {
			t.Errorf("no-op returned stage %q", got.Stage)
		}
	}
	if len(store.history) != 0 {
		t.Errorf("no-op wrote %d history entries, want 0", len(store.history))
	}
	if store.applyCalls != 0 {
		t.Errorf("no-op reached the store %d times, want 0", store.applyCalls)
	}
}

func TestMoveStageNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.MoveStage(context.Background(), uuid.New(), pipeline.StageLead, admin())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMoveStageForbiddenLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageStructuring)
	svc := newTestService(store)

	_, err := svc.MoveStage(context.Background(), id, pipeline.StageReadyForBanker, assistant())
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if store.clients[id].Stage != pipeline.StageStructuring {
		t.Error("forbidden transition mutated the client")
	}
	if len(store.history) != 0 {
		t.Error("forbidden transition wrote history")
	}
	if store.applyCalls != 0 {
		t.Error("forbidden transition reached the store")
	}
}

func TestMoveStageRestrictedPairAllowedForAdmin(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageStructuring)
	svc := newTestService(store)

	got, err := svc.MoveStage(context.Background(), id, pipeline.StageReadyForBanker, admin())
	if err != nil {
		t.Fatalf("admin restricted move failed: %v", err)
	}
	if got.Stage != pipeline.StageReadyForBanker {
		t.Errorf("stage = %q, want %q", got.Stage, pipeline.StageReadyForBanker)
	}
}

func TestMoveStageNormalizesTarget(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageSentToBanker)
	svc := newTestService(store)

	got, err := svc.MoveStage(context.Background(), id,
		pipeline.Stage("Decision (Approved/Declined/More Info)"), admin())
	if err != nil {
		t.Fatalf("MoveStage returned error: %v", err)
	}
	if got.Stage != pipeline.StageMoreInfo {
		t.Errorf("legacy target normalized to %q, want %q", got.Stage, pipeline.StageMoreInfo)
	}
}

// A row still holding a retired stage label must transition on the first
// attempt: the conditional write matches the raw stored value, not the
// normalized view, and the committed row carries a catalog value.
func TestMoveStageLegacyStoredStage(t *testing.T) {
	store := newFakeStore()
	id := store.addClientRaw("Decision (Approved/Declined/More Info)")
	svc := newTestService(store)

	got, err := svc.MoveStage(context.Background(), id, pipeline.StageApproved, admin())
	if err != nil {
		t.Fatalf("MoveStage on legacy row failed: %v", err)
	}
	if got.Stage != pipeline.StageApproved {
		t.Errorf("returned stage = %q, want %q", got.Stage, pipeline.StageApproved)
	}
	if store.applyCalls != 1 {
		t.Errorf("apply calls = %d, want 1", store.applyCalls)
	}
	if store.clients[id].Stage != pipeline.StageApproved {
		t.Errorf("stored stage = %q, want %q", store.clients[id].Stage, pipeline.StageApproved)
	}
	if len(store.history) != 1 {
		t.Fatalf("history has %d entries, want 1", len(store.history))
	}
	if from := store.history[0].FromStage; from == nil || *from != pipeline.StageMoreInfo {
		t.Errorf("history from_stage = %v, want %q", from, pipeline.StageMoreInfo)
	}
}

func TestMoveStageRetriesOnceThenSucceeds(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageLead)
	store.staleOnce = true
	svc := newTestService(store)

	got, err := svc.MoveStage(context.Background(), id, pipeline.StageChecklistSent, admin())
	if err != nil {
		t.Fatalf("MoveStage after one stale read failed: %v", err)
	}
	if got.Stage != pipeline.StageChecklistSent {
		t.Errorf("stage = %q, want %q", got.Stage, pipeline.StageChecklistSent)
	}
	if store.applyCalls != 2 {
		t.Errorf("apply calls = %d, want 2", store.applyCalls)
	}
}

func TestMoveStageConflictAfterRetry(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageLead)
	store.forceStale = true
	svc := newTestService(store)

	_, err := svc.MoveStage(context.Background(), id, pipeline.StageChecklistSent, admin())
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if store.applyCalls != 2 {
		t.Errorf("apply calls = %d, want exactly 2 (one retry)", store.applyCalls)
	}
	if len(store.history) != 0 {
		t.Error("conflicted transition wrote history")
	}
}

// Two concurrent movers read the same prior stage: the winner commits,
// the loser's conditional write fails, and its retry fails again against
// the now-changed state when the target equals the new current stage
// (no-op) or keeps losing the race.
func TestMoveStageConcurrentWriters(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageLead)
	svc := newTestService(store)

	// Winner commits Lead -> Checklist Sent.
	if _, err := svc.MoveStage(context.Background(), id, pipeline.StageChecklistSent, admin()); err != nil {
		t.Fatalf("winner failed: %v", err)
	}

	// Loser raced the same move with a stale read of Lead. Its conditional
	// write fails, and the retry observes Checklist Sent already in place:
	// an idempotent no-op, not a duplicate history entry.
	if _, err := svc.MoveStage(context.Background(), id, pipeline.StageChecklistSent, admin()); err != nil {
		t.Fatalf("loser no-op failed: %v", err)
	}
	if len(store.history) != 1 {
		t.Errorf("history has %d entries after race, want 1", len(store.history))
	}
}

func TestMoveStageUpstreamFailureLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	id := store.addClient(pipeline.StageLead)
	store.applyErr = errors.New("connection reset")
	svc := newTestService(store)

	_, err := svc.MoveStage(context.Background(), id, pipeline.StageChecklistSent, admin())
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	// The transaction failed as a unit: pre-transition state is intact.
	if store.clients[id].Stage != pipeline.StageLead {
		t.Error("failed transition left a partial stage update")
	}
	if len(store.history) != 0 {
		t.Error("failed transition left a partial history entry")
	}
}
