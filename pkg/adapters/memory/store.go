// Package memory provides an in-process ports.Store, the default
// backend for tests and single-session tools.
package memory

import (
	"context"
	"sync"

	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Store implements ports.Store with a map. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ ports.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// GetItem retrieves the value stored under key.
func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return "", domain.ErrRecordNotFound
	}
	return value, nil
}

// SetItem stores value under key.
func (s *Store) SetItem(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// RemoveItem deletes the value under key.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
