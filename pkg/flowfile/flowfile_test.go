package flowfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmbl-labs/formpath/internal/logging"
	"github.com/nmbl-labs/formpath/internal/runtime"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/flowfile"
)

const checkoutYAML = `
id: checkout
initial: cart
steps:
  cart:
    schema:
      items: "[string]"
      promo: "string?"
    next: shipping
  shipping:
    schema:
      country: string
    branch: pick_payment_route
  customs:
    schema:
      declaration: string
    next: payment
  payment:
    schema:
      method: "enum(card,boleto)"
    end: true
`

func checkoutRegistry() flowfile.Registry {
	r := flowfile.Registry{}
	r.Register("pick_payment_route", func(stepData any, all domain.Data) domain.StepID {
		if m, ok := stepData.(map[string]any); ok && m["country"] != "BR" {
			return "customs"
		}
		return "payment"
	})
	return r
}

func TestParse(t *testing.T) {
	def, err := flowfile.Parse([]byte(checkoutYAML), checkoutRegistry())
	assert.NoError(t, err)
	assert.Equal(t, "checkout", def.ID)
	assert.Equal(t, domain.StepID("cart"), def.Initial)
	assert.Len(t, def.Steps, 4)

	// The loaded definition drives navigation like a hand-built one.
	path := runtime.CalculatePath(def, domain.Data{
		"cart":     map[string]any{"items": []any{"book"}},
		"shipping": map[string]any{"country": "PT"},
	}, logging.NewNop())
	assert.Equal(t, []domain.StepID{"cart", "shipping", "customs"}, path)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"NotYAML", `{{{`},
		{"MissingID", "initial: a\nsteps:\n  a:\n    schema: {x: string}\n"},
		{"MissingInitial", "id: f\nsteps:\n  a:\n    schema: {x: string}\n"},
		{"UnknownType", "id: f\ninitial: a\nsteps:\n  a:\n    schema: {x: decimal}\n"},
		{"UnregisteredBranch", "id: f\ninitial: a\nsteps:\n  a:\n    schema: {x: string}\n    branch: missing\n"},
		{"ConflictingTransitions", "id: f\ninitial: a\nsteps:\n  a:\n    schema: {x: string}\n    next: b\n    end: true\n  b:\n    schema: {y: string}\n"},
		{"DanglingNext", "id: f\ninitial: a\nsteps:\n  a:\n    schema: {x: string}\n    next: ghost\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flowfile.Parse([]byte(tt.yaml), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkout.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(checkoutYAML), 0o644))

	def, err := flowfile.Load(path, checkoutRegistry())
	assert.NoError(t, err)
	assert.Equal(t, "checkout", def.ID)

	_, err = flowfile.Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}
