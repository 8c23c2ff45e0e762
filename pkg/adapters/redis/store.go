// Package redis provides a Redis-backed ports.Store for flows whose
// progress must survive across devices or processes.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Store implements ports.Store using Redis string values.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.Store = (*Store)(nil)

// Option configures the store.
type Option func(*Store)

// WithPrefix sets the key prefix (default "formpath:").
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL sets a native Redis expiration on every written key. This is
// a storage-level guard independent of the persistence envelope's own
// TTL; 0 disables it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "formpath:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) storageKey(key string) string {
	return s.prefix + key
}

// GetItem retrieves the value stored under key.
func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.storageKey(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return "", domain.ErrRecordNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// SetItem stores value under key, applying the configured expiration.
func (s *Store) SetItem(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.storageKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// RemoveItem deletes the value under key.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.storageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
