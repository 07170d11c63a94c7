package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "brokerdash/contracts/mq"
	"brokerdash/internal/model"
	"brokerdash/internal/pipeline"
	"brokerdash/pkg/metrics"
	"brokerdash/pkg/outbox"
	"brokerdash/pkg/trace"
)

// ErrNoRows is re-exported so callers outside the repository layer do not
// import pgx directly.
var ErrNoRows = pgx.ErrNoRows

const clientColumns = `id, name, phone, email, stage, assigned_to, banker_name,
	banker_email, lender, notes, notes_file_link, closing_date, is_archived,
	created_at, updated_at`

type ClientRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewClientRepository(db *pgxpool.Pool, logger *zap.Logger) *ClientRepository {
	return &ClientRepository{
		db:         db,
		outboxRepo: outbox.NewRepository(db),
		logger:     logger,
	}
}

func scanClient(row pgx.Row) (*model.Client, error) {
	var c model.Client
	var stage *string
	var phone, email, assignedTo, bankerName, bankerEmail *string
	var lender, notes, notesFileLink *string
	err := row.Scan(
		&c.ID,
		&c.Name,
		&phone,
		&email,
		&stage,
		&assignedTo,
		&bankerName,
		&bankerEmail,
		&lender,
		&notes,
		&notesFileLink,
		&c.ClosingDate,
		&c.IsArchived,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	c.Phone = deref(phone)
	c.Email = deref(email)
	c.AssignedTo = deref(assignedTo)
	c.BankerName = deref(bankerName)
	c.BankerEmail = deref(bankerEmail)
	c.Lender = deref(lender)
	c.Notes = deref(notes)
	c.NotesFileLink = deref(notesFileLink)

	// Legacy or empty stage values are normalized on read; the stored
	// value is rewritten only by the next transition. The raw value is
	// kept so transition preconditions can match the actual column.
	c.StoredStage = deref(stage)
	c.Stage = pipeline.Normalize(c.StoredStage)
	return &c, nil
}

func (r *ClientRepository) Insert(ctx context.Context, c *model.Client) error {
	r.logger.Debug("Inserting client",
		zap.String("name", c.Name),
		zap.String("stage", string(c.Stage)),
	)
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO clients (id, name, phone, email, stage, assigned_to,
            banker_name, banker_email, lender, notes, notes_file_link,
            closing_date, is_archived)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING created_at, updated_at
    `
	err = tx.QueryRow(ctx, query,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		string(c.Stage),
		c.AssignedTo,
		c.BankerName,
		c.BankerEmail,
		c.Lender,
		c.Notes,
		c.NotesFileLink,
		c.ClosingDate,
		c.IsArchived,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert client",
			zap.Error(err),
			zap.String("name", c.Name),
		)
		return err
	}

	// First-ever history entry: from_stage is NULL by contract.
	_, err = tx.Exec(ctx, `
        INSERT INTO client_stage_history (client_id, from_stage, to_stage, changed_at)
        VALUES ($1, NULL, $2, $3)
    `, c.ID, string(c.Stage), c.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert initial history entry",
			zap.Error(err),
			zap.String("client_id", c.ID.String()),
		)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Client inserted successfully",
		zap.String("client_id", c.ID.String()),
	)
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Failed to get client",
				zap.Error(err),
				zap.String("client_id", id.String()),
			)
		}
		return nil, err
	}
	return c, nil
}

// List returns clients for pipeline views. Archived clients are excluded
// unless requested.
func (r *ClientRepository) List(ctx context.Context, includeArchived bool) ([]model.Client, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("list", "clients", time.Since(start))
	}()

	query := `SELECT ` + clientColumns + ` FROM clients`
	if !includeArchived {
		query += ` WHERE is_archived = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query clients", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			r.logger.Error("Failed to scan client row", zap.Error(err))
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// Update writes descriptive fields. The stage column is owned by
// ApplyStageTransition and is never touched here.
func (r *ClientRepository) Update(ctx context.Context, c *model.Client) error {
	query := `
        UPDATE clients
        SET name = $2, phone = $3, email = $4, assigned_to = $5,
            banker_name = $6, banker_email = $7, lender = $8, notes = $9,
            notes_file_link = $10, closing_date = $11, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		c.AssignedTo,
		c.BankerName,
		c.BankerEmail,
		c.Lender,
		c.Notes,
		c.NotesFileLink,
		c.ClosingDate,
	)
	if err != nil {
		r.logger.Error("Failed to update client",
			zap.Error(err),
			zap.String("client_id", c.ID.String()),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ClientRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	result, err := r.db.Exec(ctx, `
        UPDATE clients SET is_archived = $2, updated_at = NOW() WHERE id = $1
    `, id, archived)
	if err != nil {
		r.logger.Error("Failed to set archive flag",
			zap.Error(err),
			zap.String("client_id", id.String()),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	r.logger.Info("Client archive flag updated",
		zap.String("client_id", id.String()),
		zap.Bool("archived", archived),
	)
	return nil
}

// ApplyStageTransition performs the stage update, history append, and
// outbox insert as one transaction. The update is conditioned on the stage
// column still holding expectedFrom, the raw stored value; returns false
// without committing anything when that precondition fails. History and
// the outbox payload record the normalized stage, so a transition off a
// legacy value also rewrites the column to a catalog value.
func (r *ClientRepository) ApplyStageTransition(
	ctx context.Context,
	id uuid.UUID,
	expectedFrom, to pipeline.Stage,
	changedAt time.Time,
) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("stage_transition", "clients", time.Since(start))
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
        UPDATE clients
        SET stage = $2, updated_at = NOW()
        WHERE id = $1 AND stage = $3
    `, id, string(to), string(expectedFrom))
	if err != nil {
		return false, err
	}
	if result.RowsAffected() == 0 {
		// Stale read: someone moved the client since the caller loaded it.
		return false, nil
	}

	from := pipeline.Normalize(string(expectedFrom))
	_, err = tx.Exec(ctx, `
        INSERT INTO client_stage_history (client_id, from_stage, to_stage, changed_at)
        VALUES ($1, $2, $3, $4)
    `, id, string(from), string(to), changedAt)
	if err != nil {
		return false, err
	}

	clientID := id.String()
	fromStr := string(from)
	payload := mqcontracts.StageChangedPayload{
		ClientID:  clientID,
		FromStage: &fromStr,
		ToStage:   string(to),
		ChangedAt: changedAt,
		TraceID:   trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "client", &clientID, mqcontracts.RoutingKeyStageChanged, payload); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	r.logger.Info("Stage transition committed",
		zap.String("client_id", clientID),
		zap.String("from_stage", string(from)),
		zap.String("to_stage", string(to)),
	)
	return true, nil
}

// HardDelete removes the client, its history, and detaches its tasks in
// one transaction. Admin-only at the service layer; bypasses the state
// machine and is irreversible.
func (r *ClientRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE tasks SET client_id = NULL WHERE client_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM client_stage_history WHERE client_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Warn("Client hard-deleted",
		zap.String("client_id", id.String()),
	)
	return nil
}
