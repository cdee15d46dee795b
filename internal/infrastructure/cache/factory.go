// Package cache connects to Redis and provides the stores built on it, with
// in-memory fallbacks for single-instance deployments.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectOption is a functional option for Connect
type ConnectOption func(*connectOptions)

type connectOptions struct {
	logger        *zap.Logger
	allowFallback bool
	timeout       time.Duration
}

// WithLogger sets the logger used to report the fallback
func WithLogger(logger *zap.Logger) ConnectOption {
	return func(o *connectOptions) { o.logger = logger }
}

// WithInMemoryFallback controls whether an unreachable Redis is an error.
// Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ConnectOption {
	return func(o *connectOptions) { o.allowFallback = allow }
}

// Connect opens the shared Redis client and pings it. It returns a nil client
// when Redis is disabled, or unreachable with fallback allowed; callers then
// use the in-memory stores.
func Connect(ctx context.Context, cfg config.RedisConfig, opts ...ConnectOption) (*redis.Client, error) {
	o := connectOptions{logger: zap.NewNop(), allowFallback: true, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if !cfg.Enabled {
		o.logger.Info("Redis disabled, using in-memory stores")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !o.allowFallback {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Duplicate-submit protection and rate limits are not shared across instances.",
			zap.String("addr", cfg.Addr()), zap.Error(err))
		return nil, nil
	}
	o.logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()))
	return client, nil
}

// NewIdempotencyStore returns a Redis store on client, or an in-memory store when client is nil
func NewIdempotencyStore(client *redis.Client) shared.IdempotencyStore {
	if client == nil {
		return NewInMemoryIdempotencyStore(0)
	}
	return NewRedisIdempotencyStore(client, "")
}
