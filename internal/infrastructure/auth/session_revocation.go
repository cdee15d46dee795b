package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRevoker invalidates session tokens before they expire, on logout
type SessionRevoker interface {
	// Revoke records the token id until ttl passes
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisSessionRevoker stores revoked token ids in Redis so every server instance sees them
type RedisSessionRevoker struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisSessionRevoker creates a revoker on an existing client
func NewRedisSessionRevoker(client redis.UniversalClient) *RedisSessionRevoker {
	return &RedisSessionRevoker{client: client, keyPrefix: "gms:session:revoked:"}
}

// Revoke stores the jti with the remaining token lifetime as TTL
func (r *RedisSessionRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked checks whether the jti was revoked
func (r *RedisSessionRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return n > 0, nil
}

// InMemorySessionRevoker keeps revoked ids in process memory.
// Only suitable for a single server instance.
type InMemorySessionRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewInMemorySessionRevoker creates an empty revoker
func NewInMemorySessionRevoker() *InMemorySessionRevoker {
	return &InMemorySessionRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke records the jti until ttl passes
func (r *InMemorySessionRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = r.now().Add(ttl)
	return nil
}

// IsRevoked reports whether jti is revoked and drops expired entries
func (r *InMemorySessionRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	if !ok {
		return false, nil
	}
	if r.now().After(until) {
		delete(r.revoked, jti)
		return false, nil
	}
	return true, nil
}

var (
	_ SessionRevoker = (*RedisSessionRevoker)(nil)
	_ SessionRevoker = (*InMemorySessionRevoker)(nil)
)
