package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "brokerdash/contracts/mq"
	"brokerdash/internal/model"
	"brokerdash/pkg/outbox"
)

const taskColumns = `id, client_id, title, assigned_to, assignee_email,
	due_date, status, notes, created_at, completed_at`

type TaskRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:         db,
		outboxRepo: outbox.NewRepository(db),
		logger:     logger,
	}
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	var assignedTo, assigneeEmail, notes *string
	err := row.Scan(
		&t.ID,
		&t.ClientID,
		&t.Title,
		&assignedTo,
		&assigneeEmail,
		&t.DueDate,
		&t.Status,
		&notes,
		&t.CreatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignedTo != nil {
		t.AssignedTo = *assignedTo
	}
	if assigneeEmail != nil {
		t.AssigneeEmail = *assigneeEmail
	}
	if notes != nil {
		t.Notes = *notes
	}
	return &t, nil
}

// Insert writes the task and its task.created outbox event in one
// transaction. The notification email is sent asynchronously by the
// worker and can never fail task creation.
func (r *TaskRepository) Insert(ctx context.Context, t *model.Task, payload mqcontracts.TaskCreatedPayload) error {
	r.logger.Debug("Inserting task",
		zap.String("title", t.Title),
		zap.String("status", t.Status),
	)
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO tasks (id, client_id, title, assigned_to, assignee_email,
            due_date, status, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at
    `
	err = tx.QueryRow(ctx, query,
		t.ID,
		t.ClientID,
		t.Title,
		t.AssignedTo,
		t.AssigneeEmail,
		t.DueDate,
		t.Status,
		t.Notes,
	).Scan(&t.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.String("title", t.Title),
		)
		return err
	}

	payload.TaskID = t.ID.String()
	payload.CreatedAt = t.CreatedAt
	taskID := t.ID.String()
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "task", &taskID, mqcontracts.RoutingKeyTaskCreated, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Task inserted successfully",
		zap.String("task_id", taskID),
	)
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

// List returns all tasks newest first; filtering happens in the service.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListOpenWithDueDate returns the calendar feed's input: open tasks that
// have a due date, soonest first.
func (r *TaskRepository) ListOpenWithDueDate(ctx context.Context) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE status = 'open' AND due_date IS NOT NULL
        ORDER BY due_date ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query open tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET title = $2, client_id = $3, assigned_to = $4, assignee_email = $5,
            due_date = $6, notes = $7
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		t.ID,
		t.Title,
		t.ClientID,
		t.AssignedTo,
		t.AssigneeEmail,
		t.DueDate,
		t.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.String("task_id", t.ID.String()),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *TaskRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `
        UPDATE tasks
        SET status = 'done', completed_at = NOW()
        WHERE id = $1
    `, id)
	if err != nil {
		r.logger.Error("Failed to mark task as completed",
			zap.Error(err),
			zap.String("task_id", id.String()),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	r.logger.Info("Task marked as completed",
		zap.String("task_id", id.String()),
	)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.String("task_id", id.String()),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
