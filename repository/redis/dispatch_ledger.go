package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/sijagad/repository"
)

type dispatchLedger struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewDispatchLedger creates a Redis-backed ledger of sent broadcasts.
func NewDispatchLedger(client *redislib.Client, ttl time.Duration) repository.DispatchLedger {
	if ttl <= 0 {
		ttl = 36 * time.Hour
	}
	return &dispatchLedger{
		client: client,
		prefix: "sijagad:",
		ttl:    ttl,
	}
}

func (l *dispatchLedger) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = l.ttl
	}
	return l.client.SetNX(ctx, l.key(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (l *dispatchLedger) key(id string) string {
	return fmt.Sprintf("%s%s", l.prefix, id)
}
