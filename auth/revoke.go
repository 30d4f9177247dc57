package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Revoker remembers token and session ids that were logged out or
// rotated. Revoke reports false when id was already revoked, which makes
// it usable as a single-use redemption.
type Revoker interface {
	Revoke(ctx context.Context, id string, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// RedisRevoker stores revoked ids as expiring keys, so every server
// instance sharing the Redis sees the same list.
type RedisRevoker struct {
	Client *redis.Client
}

func NewRedisRevoker(addr string) *RedisRevoker {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisRevoker{Client: client}
}

func redisKey(id string) string {
	return "revoked_token:" + id
}

func (r *RedisRevoker) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Revoke uses SETNX so that of several concurrent callers only one sees
// true.
func (r *RedisRevoker) Revoke(ctx context.Context, id string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return false, nil
	}
	return r.Client.SetNX(ctx, redisKey(id), 1, ttl).Result()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := r.Client.Exists(ctx, redisKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRevoker) Close() error {
	return r.Client.Close()
}

// MemoryRevoker is used when no Redis address is configured. Its list
// is lost on restart and not shared between processes.
type MemoryRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *MemoryRevoker) Revoke(ctx context.Context, id string, until time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, exp := range r.entries {
		if !now.Before(exp) {
			delete(r.entries, k)
		}
	}
	if !until.After(now) {
		return false, nil
	}
	if _, ok := r.entries[id]; ok {
		return false, nil
	}
	r.entries[id] = until
	return true, nil
}

func (r *MemoryRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.entries[id]
	return ok && r.now().Before(exp), nil
}
