// Package storetest holds the reusable contract suite every ports.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Run verifies that store complies with the ports.Store contract.
func Run(t *testing.T, store ports.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.GetItem(ctx, "contract:missing")
		if !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		if err := store.SetItem(ctx, "contract:key", `{"a":1}`); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		value, err := store.GetItem(ctx, "contract:key")
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if value != `{"a":1}` {
			t.Errorf("value mismatch: got %q", value)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := store.SetItem(ctx, "contract:key", `{"a":2}`); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		value, err := store.GetItem(ctx, "contract:key")
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if value != `{"a":2}` {
			t.Errorf("expected overwritten value, got %q", value)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := store.RemoveItem(ctx, "contract:key"); err != nil {
			t.Fatalf("RemoveItem failed: %v", err)
		}
		_, err := store.GetItem(ctx, "contract:key")
		if !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound after remove, got %v", err)
		}
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		if err := store.RemoveItem(ctx, "contract:never-existed"); err != nil {
			t.Errorf("removing a missing key should not error, got %v", err)
		}
	})
}
