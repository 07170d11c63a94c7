package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"brokerdash/internal/model"
	"brokerdash/internal/pipeline"
	"brokerdash/pkg/metrics"
)

type HistoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHistoryRepository(db *pgxpool.Pool, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

func scanHistory(rows pgx.Rows) ([]model.StageHistoryEntry, error) {
	entries := []model.StageHistoryEntry{}
	for rows.Next() {
		var e model.StageHistoryEntry
		var fromStage *string
		var toStage string
		if err := rows.Scan(
			&e.ID,
			&e.ClientID,
			&fromStage,
			&toStage,
			&e.ChangedAt,
		); err != nil {
			return nil, err
		}
		if fromStage != nil {
			s := pipeline.Normalize(*fromStage)
			e.FromStage = &s
		}
		e.ToStage = pipeline.Normalize(toStage)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByClient returns one client's history ordered oldest first.
func (r *HistoryRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.StageHistoryEntry, error) {
	query := `
        SELECT id, client_id, from_stage, to_stage, changed_at
        FROM client_stage_history
        WHERE client_id = $1
        ORDER BY changed_at ASC
    `
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		r.logger.Error("Failed to query stage history",
			zap.Error(err),
			zap.String("client_id", clientID.String()),
		)
		return nil, err
	}
	defer rows.Close()

	return scanHistory(rows)
}

// ListAll returns the full history log ordered by client then time, the
// shape the dwell aggregator expects.
func (r *HistoryRepository) ListAll(ctx context.Context) ([]model.StageHistoryEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("list_all", "client_stage_history", time.Since(start))
	}()

	query := `
        SELECT id, client_id, from_stage, to_stage, changed_at
        FROM client_stage_history
        ORDER BY client_id ASC, changed_at ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query full stage history", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanHistory(rows)
}

// ListRecent returns the newest entries for the analytics raw table.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]model.StageHistoryEntry, error) {
	query := `
        SELECT id, client_id, from_stage, to_stage, changed_at
        FROM client_stage_history
        ORDER BY changed_at DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to query recent stage history", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanHistory(rows)
}
