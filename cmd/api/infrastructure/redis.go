package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dynamo-user-service/internal/config"
	redisclient "dynamo-user-service/pkg/redis"
)

// NewRedisClient connects the Redis client that backs the rate limiter.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, l *zap.Logger) (*redisclient.Client, error) {
	rdb, err := redisclient.NewClient(ctx, redisclient.Config{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		PoolSize:    cfg.PoolSize,
		MinIdleConn: cfg.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
