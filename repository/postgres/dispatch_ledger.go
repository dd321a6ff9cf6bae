package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/sijagad/repository"
)

type dispatchLedger struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewDispatchLedger returns a ledger shared by every process that uses the same
// database, for deployments without Redis.
func NewDispatchLedger(pool *pgxpool.Pool, ttl time.Duration) repository.DispatchLedger {
	if ttl <= 0 {
		ttl = 36 * time.Hour
	}
	return &dispatchLedger{pool: pool, ttl: ttl}
}

// Claim inserts the key, or takes over a claim whose expiry has passed. The
// row lock on conflict makes concurrent claims of the same key exclusive.
func (l *dispatchLedger) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := available(l.pool); err != nil {
		return false, err
	}
	if ttl <= 0 {
		ttl = l.ttl
	}

	const query = `
	INSERT INTO dispatch_claims (claim_key, expires_at)
	VALUES ($1, NOW() + $2::bigint * INTERVAL '1 second')
	ON CONFLICT (claim_key) DO UPDATE
		SET expires_at = EXCLUDED.expires_at, claimed_at = NOW()
		WHERE dispatch_claims.expires_at <= NOW()
	RETURNING claim_key
	`

	var claimed string
	err := l.pool.QueryRow(ctx, query, key, int64(ttl/time.Second)).Scan(&claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
