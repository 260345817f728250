package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("secrets: not found")

// Store is a named-secret backend. Keys are plain strings; values are opaque.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
}

// apiKeySecret is the well-known name the voice AI credential lives under.
const apiKeySecret = "voiceai_api_key"

// Resolver produces the upstream API credential. A stored secret wins; when
// none exists the configured default key is returned and persisted
// best-effort so operators can later rotate it in place. Storage
// unavailability never fails the caller as long as a default is configured.
type Resolver struct {
	store      Store
	defaultKey string
	log        *slog.Logger
}

func NewResolver(store Store, defaultKey string, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, defaultKey: defaultKey, log: log}
}

// APIKey returns the credential for upstream requests.
func (r *Resolver) APIKey(ctx context.Context) (string, error) {
	if r.store != nil {
		key, err := r.store.Get(ctx, apiKeySecret)
		switch {
		case err == nil && key != "":
			return key, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			r.log.Warn("secret store lookup failed, using default key", "secret", apiKeySecret, "err", err)
		}
	}

	if r.defaultKey == "" {
		return "", fmt.Errorf("secrets: no %s stored and no default configured", apiKeySecret)
	}

	if r.store != nil {
		if err := r.store.Set(ctx, apiKeySecret, r.defaultKey); err != nil {
			r.log.Warn("failed to persist default key", "secret", apiKeySecret, "err", err)
		}
	}
	return r.defaultKey, nil
}

// RedisStore keeps secrets in redis under a shared key prefix.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(name string) string {
	return "secrets:" + name
}

func (s *RedisStore) Get(ctx context.Context, name string) (string, error) {
	v, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("secrets: get %s: %w", name, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, name, value string) error {
	if err := s.client.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("secrets: set %s: %w", name, err)
	}
	return nil
}

// MemoryStore is an in-process store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return "", s.FailWith
	}
	v, ok := s.values[name]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.values[name] = value
	return nil
}
