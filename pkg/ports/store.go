package ports

import "context"

// Store is the key/value storage capability used for persisting flow
// progress. It writes whole string values atomically: a crash between a
// SetItem call and its return leaves either the previous or the new
// value, never a torn write.
//
// Implementations must return domain.ErrRecordNotFound from GetItem when
// the key does not exist. Backends may be in-memory, Redis, SQLite, or
// anything else that can round-trip a string.
type Store interface {
	// GetItem retrieves the value stored under key.
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key string, value string) error

	// RemoveItem deletes the value under key. Removing a missing key is
	// not an error.
	RemoveItem(ctx context.Context, key string) error
}
