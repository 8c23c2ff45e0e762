package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	_ "modernc.org/sqlite"

	"github.com/nmbl-labs/formpath/pkg/adapters/sqlite"
	"github.com/nmbl-labs/formpath/pkg/ports/storetest"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// The in-memory database lives per connection; keep a single one.
	db.SetMaxOpenConns(1)

	store, err := sqlite.NewStore(db)
	assert.NoError(t, err)
	return store
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, newTestStore(t))
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	ctx := context.Background()

	first, err := sqlite.NewStore(db)
	assert.NoError(t, err)
	assert.NoError(t, first.SetItem(ctx, "k", "v"))

	// A second store over the same database sees the data, and schema
	// initialization is idempotent.
	second, err := sqlite.NewStore(db)
	assert.NoError(t, err)
	value, err := second.GetItem(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, "v", value)
}
