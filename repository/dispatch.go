package repository

import (
	"context"
	"time"
)

// DispatchLedger records which scheduled notifications were already sent.
type DispatchLedger interface {
	// Claim returns true only for the first caller of key within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
