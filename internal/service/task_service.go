package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "brokerdash/contracts/mq"
	"brokerdash/internal/apperr"
	"brokerdash/internal/model"
	"brokerdash/internal/repository"
	"brokerdash/pkg/metrics"
	"brokerdash/pkg/trace"
)

// Task list filters mirroring the dashboard tabs.
const (
	TaskFilterOpen      = "open"
	TaskFilterOverdue   = "overdue"
	TaskFilterToday     = "today"
	TaskFilterUpcoming  = "upcoming"
	TaskFilterCompleted = "completed"
	TaskFilterAll       = "all"
)

type TaskService struct {
	taskRepo   *repository.TaskRepository
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	clientRepo *repository.ClientRepository,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		clientRepo: clientRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// Create validates and persists a task. The task.created event goes into
// the outbox in the same transaction; the worker sends the notification
// email later and its failure never surfaces here.
func (s *TaskService) Create(ctx context.Context, t *model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return apperr.Validation("task title is required")
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Status == "" {
		t.Status = model.TaskStatusOpen
	}

	payload := mqcontracts.TaskCreatedPayload{
		Title:         t.Title,
		AssigneeEmail: t.AssigneeEmail,
		DueDate:       t.DueDate,
		Notes:         t.Notes,
		TraceID:       trace.FromContext(ctx),
	}
	if t.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *t.ClientID)
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return apperr.NotFound("client")
			}
			return apperr.Upstream(err)
		}
		cid := client.ID.String()
		payload.ClientID = &cid
		payload.ClientName = client.Name
	}

	if err := s.taskRepo.Insert(ctx, t, payload); err != nil {
		return apperr.Upstream(err)
	}
	metrics.IncrementTaskCreated("api")
	return nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("task")
		}
		return nil, apperr.Upstream(err)
	}
	return t, nil
}

// List applies one of the dashboard filters client-side over the full set.
func (s *TaskService) List(ctx context.Context, filter string) ([]model.Task, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return FilterTasks(tasks, filter, s.now()), nil
}

// FilterTasks narrows tasks to one dashboard tab. Pure; exported for tests.
func FilterTasks(tasks []model.Task, filter string, now time.Time) []model.Task {
	if filter == "" {
		filter = TaskFilterOpen
	}
	today := now.Truncate(24 * time.Hour)
	tomorrow := today.AddDate(0, 0, 1)

	out := []model.Task{}
	for _, t := range tasks {
		open := t.Status == model.TaskStatusOpen
		switch filter {
		case TaskFilterAll:
			out = append(out, t)
		case TaskFilterCompleted:
			if t.Status == model.TaskStatusDone {
				out = append(out, t)
			}
		case TaskFilterOpen:
			if open {
				out = append(out, t)
			}
		case TaskFilterOverdue:
			if open && t.DueDate != nil && t.DueDate.Before(today) {
				out = append(out, t)
			}
		case TaskFilterToday:
			if open && t.DueDate != nil && !t.DueDate.Before(today) && t.DueDate.Before(tomorrow) {
				out = append(out, t)
			}
		case TaskFilterUpcoming:
			if open && t.DueDate != nil && !t.DueDate.Before(tomorrow) {
				out = append(out, t)
			}
		}
	}
	return out
}

func (s *TaskService) Update(ctx context.Context, t *model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return apperr.Validation("task title is required")
	}
	err := s.taskRepo.Update(ctx, t)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.NotFound("task")
		}
		return apperr.Upstream(err)
	}
	return nil
}

func (s *TaskService) Complete(ctx context.Context, id uuid.UUID) error {
	err := s.taskRepo.MarkCompleted(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.NotFound("task")
		}
		return apperr.Upstream(err)
	}
	return nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.NotFound("task")
		}
		return apperr.Upstream(err)
	}
	return nil
}
