package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskportal/internal/model"
)

type ActivityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

// Insert stores a. inserted is false when an entry with the same event id
// already exists.
func (r *ActivityRepository) Insert(ctx context.Context, a *model.Activity) (bool, error) {
	query := `
        INSERT INTO activity_log (event_id, routing_key, entity, entity_id, summary, trace_id, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (event_id) DO NOTHING
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		a.EventID, a.RoutingKey, a.Entity, a.EntityID, a.Summary, a.TraceID, a.OccurredAt,
	).Scan(&a.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to insert activity", zap.String("event_id", a.EventID), zap.Error(err))
		return false, err
	}
	return true, nil
}

// ListRecent returns the newest entries first.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, event_id, routing_key, entity, entity_id, summary, trace_id, occurred_at
        FROM activity_log
        ORDER BY occurred_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.EventID, &a.RoutingKey, &a.Entity, &a.EntityID, &a.Summary, &a.TraceID, &a.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
