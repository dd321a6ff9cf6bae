package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a Postgres-backed implementation of ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	if err := available(r.pool); err != nil {
		return err
	}

	const query = `
	INSERT INTO activity_logs (user_email, action, target, asset_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`
	entry.Actor = domain.ActorOrDefault(entry.Actor)
	return r.pool.QueryRow(ctx, query, entry.Actor, entry.Action, entry.Target, nullUUID(entry.AssetID)).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}

	const query = `
	SELECT id, user_email, action, target, asset_id::text, created_at
	FROM activity_logs
	ORDER BY created_at DESC, id DESC
	LIMIT $1
	`
	return r.queryEntries(ctx, query, clampLimit(limit))
}

func (r *activityRepository) ListByAsset(ctx context.Context, assetID string) ([]domain.ActivityEntry, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(assetID); err != nil {
		return []domain.ActivityEntry{}, nil
	}

	const query = `
	SELECT id, user_email, action, target, asset_id::text, created_at
	FROM activity_logs
	WHERE asset_id = $1
	ORDER BY created_at DESC, id DESC
	`
	return r.queryEntries(ctx, query, assetID)
}

func (r *activityRepository) DeleteByAsset(ctx context.Context, assetID string) error {
	if err := available(r.pool); err != nil {
		return err
	}
	if _, err := uuid.Parse(assetID); err != nil {
		return nil
	}

	_, err := r.pool.Exec(ctx, `DELETE FROM activity_logs WHERE asset_id = $1`, assetID)
	return err
}

func (r *activityRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]domain.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var entry domain.ActivityEntry
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Target, &entry.AssetID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
