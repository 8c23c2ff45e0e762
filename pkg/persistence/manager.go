// Package persistence decorates a flow with durable progress: flow data
// is serialized through a versioned, TTL-bound envelope into any
// ports.Store. Corrupt, expired, or unmigratable records degrade to "no
// saved state" and are proactively cleared; they never surface as
// errors to the consumer.
package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nmbl-labs/formpath/internal/logging"
	"github.com/nmbl-labs/formpath/internal/runtime"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/ports"
)

// MigrateFunc upgrades data stored under an older version. Returning
// ok=false rejects the record, which is then treated as absent and
// cleared from storage.
type MigrateFunc func(old domain.Data, oldVersion int) (migrated domain.Data, ok bool)

// Manager persists and restores flow progress for one flow definition.
type Manager struct {
	store     ports.Store
	def       *domain.FlowDefinition
	key       string
	version   int
	ttl       time.Duration
	migrate   MigrateFunc
	available bool
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithKey overrides the storage key (default "formpath:flow:<flow id>").
func WithKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// WithVersion sets the envelope version written by Persist and expected
// by Hydrate. Default 1.
func WithVersion(version int) Option {
	return func(m *Manager) { m.version = version }
}

// WithTTL bounds the lifetime of a persisted record. ttl <= 0 means no
// expiration.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithMigration installs the version-upgrade function.
func WithMigration(fn MigrateFunc) Option {
	return func(m *Manager) { m.migrate = fn }
}

// WithAvailability declares whether a durable-storage context exists.
// Pass false in server or headless rendering contexts: Persist and
// Clear become no-ops and Hydrate reports no saved state, as a
// first-class configuration rather than an ambient runtime check.
func WithAvailability(available bool) Option {
	return func(m *Manager) { m.available = available }
}

// WithClock injects the time source used for timestamps and TTL checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets a logger for degraded-path diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a persistence manager for the given definition,
// writing through store.
func NewManager(store ports.Store, def *domain.FlowDefinition, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		def:       def,
		key:       "formpath:flow:" + def.ID,
		version:   1,
		available: true,
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the storage key in use.
func (m *Manager) Key() string { return m.key }

// Persist writes the state's collected data under the configured key.
// It resolves without writing when no durable-storage context is
// available.
func (m *Manager) Persist(ctx context.Context, state *domain.FlowState) error {
	if !m.available {
		return nil
	}
	value, err := encodeRecord(Record{
		Version:   m.version,
		Timestamp: m.now().UnixMilli(),
		Data:      state.Data,
	})
	if err != nil {
		return err
	}
	return m.store.SetItem(ctx, m.key, value)
}

// Hydrate reads the stored record and reconstructs a flow state from
// it. It returns (nil, nil), meaning no saved state, when the record is
// absent, malformed, expired, or stored under a different version with
// no successful migration; in the last three cases the stale record is
// cleared from storage as a side effect.
//
// A reconstructed state recomputes the path from the (possibly
// migrated) data, derives completed steps as exactly the path steps
// holding a defined data entry, and points the current step at the last
// path element.
func (m *Manager) Hydrate(ctx context.Context) (*domain.FlowState, error) {
	if !m.available {
		return nil, nil
	}

	value, err := m.store.GetItem(ctx, m.key)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	record, err := decodeRecord(value)
	if err != nil {
		m.logger.Warn("discarding malformed persisted record",
			"flow", m.def.ID, "key", m.key, "err", err)
		m.clearQuietly(ctx)
		return nil, nil
	}

	if m.ttl > 0 && m.now().UnixMilli() > record.Timestamp+m.ttl.Milliseconds() {
		m.logger.Warn("discarding expired persisted record",
			"flow", m.def.ID, "key", m.key)
		m.clearQuietly(ctx)
		return nil, nil
	}

	data := record.Data
	if record.Version != m.version {
		if m.migrate == nil {
			m.logger.Warn("discarding persisted record with version mismatch",
				"flow", m.def.ID, "stored", record.Version, "expected", m.version)
			m.clearQuietly(ctx)
			return nil, nil
		}
		migrated, ok := m.migrate(data, record.Version)
		if !ok {
			m.logger.Warn("migration rejected persisted record",
				"flow", m.def.ID, "stored", record.Version, "expected", m.version)
			m.clearQuietly(ctx)
			return nil, nil
		}
		data = migrated
	}

	return m.rebuild(data), nil
}

// Clear removes the stored record. Removing a missing record is not an
// error, and non-durable contexts no-op.
func (m *Manager) Clear(ctx context.Context) error {
	if !m.available {
		return nil
	}
	return m.store.RemoveItem(ctx, m.key)
}

func (m *Manager) clearQuietly(ctx context.Context) {
	if err := m.store.RemoveItem(ctx, m.key); err != nil {
		m.logger.Warn("failed to clear stale persisted record",
			"flow", m.def.ID, "key", m.key, "err", err)
	}
}

// rebuild reconstructs a full state from bare data.
func (m *Manager) rebuild(data domain.Data) *domain.FlowState {
	if data == nil {
		data = domain.Data{}
	}
	path := runtime.CalculatePath(m.def, data, m.logger)

	completed := map[domain.StepID]bool{}
	for _, id := range path {
		if _, ok := data[id]; ok {
			completed[id] = true
		}
	}

	current := m.def.Initial
	if len(path) > 0 {
		current = path[len(path)-1]
	}

	return &domain.FlowState{
		CurrentStep:    current,
		Data:           data,
		CompletedSteps: completed,
		Path:           path,
		History:        append([]domain.StepID(nil), path...),
		Status:         domain.StatusIdle,
	}
}
