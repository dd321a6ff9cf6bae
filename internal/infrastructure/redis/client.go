package redis

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/internal/config"
)

// NewClient connects to Redis when REDIS_URL is set. A nil client without an
// error means Redis is not part of this deployment.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*goRedis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := goRedis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}

// NewLocker returns a distributed lock client, or nil when Redis is absent.
func NewLocker(client *goRedis.Client) *redislock.Client {
	if client == nil {
		return nil
	}
	return redislock.New(client)
}
