package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type SessionStore interface {
	Create(ctx context.Context, id, userID string, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (m *MemorySessions) Create(_ context.Context, id, _ string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = m.now().Add(ttl)
	return nil
}

func (m *MemorySessions) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.sessions[id]
	if !ok {
		return false, nil
	}
	if !m.now().Before(exp) {
		delete(m.sessions, id)
		return false, nil
	}
	return true, nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// RedisSessions keeps one key per session that expires with the token.
type RedisSessions struct {
	client *redis.Client
	prefix string
}

func NewRedisSessions(client *redis.Client, prefix string) *RedisSessions {
	return &RedisSessions{client: client, prefix: prefix}
}

func (r *RedisSessions) Create(ctx context.Context, id, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+id, userID, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set session")
	}
	return nil
}

func (r *RedisSessions) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+id).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis exists session")
	}
	return n > 0, nil
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return errors.Wrap(err, "redis del session")
	}
	return nil
}
