package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists bearer-token sessions. Sessions are ephemeral:
// losing the store only forces a re-login.
type SessionStore interface {
	Save(ctx context.Context, token, username string, ttl time.Duration) error
	Get(ctx context.Context, token string) (username string, ok bool, err error)
	Delete(ctx context.Context, token string) error
}

// MemoryStore is the default in-process session store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	username  string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession)}
}

func (s *MemoryStore) Save(_ context.Context, token, username string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{username: username, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (string, bool, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if time.Now().After(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", false, nil
	}
	return sess.username, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// CleanupExpired removes expired sessions and returns how many were
// dropped. Run periodically; Get also evicts lazily.
func (s *MemoryStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

const redisSessionPrefix = "session:"

// RedisStore keeps sessions in Redis so they survive restarts and are
// shared across replicas. TTL handling is delegated to Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, token, username string, ttl time.Duration) error {
	return s.client.Set(ctx, redisSessionPrefix+token, username, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (string, bool, error) {
	username, err := s.client.Get(ctx, redisSessionPrefix+token).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return username, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisSessionPrefix+token).Err()
}
