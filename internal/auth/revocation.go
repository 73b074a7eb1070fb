// AngelaMos | 2026
// revocation.go

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

// RevocationStore remembers logged-out tokens by hash until they would
// have expired anyway. A zero expiresAt keeps the entry forever.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type redisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(client *redis.Client) RevocationStore {
	return &redisRevocations{client: client}
}

func (r *redisRevocations) Revoke(
	ctx context.Context,
	token string,
	expiresAt time.Time,
) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	key := core.RedisKey("revoked", core.HashToken(token))
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (r *redisRevocations) IsRevoked(
	ctx context.Context,
	token string,
) (bool, error) {
	key := core.RedisKey("revoked", core.HashToken(token))

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}

	return exists > 0, nil
}

type memoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() RevocationStore {
	return &memoryRevocations{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *memoryRevocations) Revoke(
	_ context.Context,
	token string,
	expiresAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	m.entries[core.HashToken(token)] = expiresAt
	return nil
}

func (m *memoryRevocations) IsRevoked(
	_ context.Context,
	token string,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.entries[core.HashToken(token)]
	if !ok {
		return false, nil
	}
	return expiresAt.IsZero() || m.now().Before(expiresAt), nil
}

func (m *memoryRevocations) sweep() {
	now := m.now()
	for k, exp := range m.entries {
		if !exp.IsZero() && now.After(exp) {
			delete(m.entries, k)
		}
	}
}
