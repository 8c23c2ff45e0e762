package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmbl-labs/formpath/internal/logging"
	"github.com/nmbl-labs/formpath/internal/runtime"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/schema"
)

// signupFlow is the shared fixture: a linear head, one dynamic branch
// and a terminal review step.
//
//	account -> profile -(type=company)-> company -> review
//	                    \(otherwise)--------------^
func signupFlow(t *testing.T) *domain.FlowDefinition {
	t.Helper()
	def, err := domain.NewFlow("signup", "account", map[domain.StepID]domain.StepDefinition{
		"account": {
			Schema: schema.Schema{"email": schema.String()},
			Next:   domain.Goto("profile"),
		},
		"profile": {
			Schema: schema.Schema{"type": schema.Enum("personal", "company")},
			Next: domain.Branch(func(stepData any, all domain.Data) domain.StepID {
				if m, ok := stepData.(map[string]any); ok && m["type"] == "company" {
					return "company"
				}
				return "review"
			}),
		},
		"company": {
			Schema: schema.Schema{"vat": schema.String()},
			Next:   domain.Goto("review"),
		},
		"review": {
			Schema: schema.Schema{"confirm": schema.Bool()},
			Next:   domain.End(),
		},
	})
	if err != nil {
		t.Fatalf("fixture definition invalid: %v", err)
	}
	return def
}

func TestCalculatePath(t *testing.T) {
	def := signupFlow(t)
	log := logging.NewNop()

	t.Run("NoDataStopsAtInitial", func(t *testing.T) {
		path := runtime.CalculatePath(def, domain.Data{}, log)
		assert.Equal(t, []domain.StepID{"account"}, path)
	})

	t.Run("StaticEdgeStillRequiresOwnData", func(t *testing.T) {
		// account has a static edge, but without account data the path
		// must not extend past it.
		path := runtime.CalculatePath(def, domain.Data{
			"profile": map[string]any{"type": "personal"},
		}, log)
		assert.Equal(t, []domain.StepID{"account"}, path)
	})

	t.Run("GrowsWithData", func(t *testing.T) {
		path := runtime.CalculatePath(def, domain.Data{
			"account": map[string]any{"email": "a@b.c"},
		}, log)
		assert.Equal(t, []domain.StepID{"account", "profile"}, path)
	})

	t.Run("DynamicBranchPersonal", func(t *testing.T) {
		path := runtime.CalculatePath(def, domain.Data{
			"account": map[string]any{"email": "a@b.c"},
			"profile": map[string]any{"type": "personal"},
		}, log)
		assert.Equal(t, []domain.StepID{"account", "profile", "review"}, path)
	})

	t.Run("DynamicBranchCompany", func(t *testing.T) {
		path := runtime.CalculatePath(def, domain.Data{
			"account": map[string]any{"email": "a@b.c"},
			"profile": map[string]any{"type": "company"},
		}, log)
		assert.Equal(t, []domain.StepID{"account", "profile", "company"}, path)
	})

	t.Run("TerminalEndsPath", func(t *testing.T) {
		path := runtime.CalculatePath(def, domain.Data{
			"account": map[string]any{"email": "a@b.c"},
			"profile": map[string]any{"type": "personal"},
			"review":  map[string]any{"confirm": true},
		}, log)
		assert.Equal(t, []domain.StepID{"account", "profile", "review"}, path)
	})

	t.Run("StaleDataOffPathIsIgnored", func(t *testing.T) {
		// company data survives a branch switch but no longer shapes the
		// path.
		path := runtime.CalculatePath(def, domain.Data{
			"account": map[string]any{"email": "a@b.c"},
			"profile": map[string]any{"type": "personal"},
			"company": map[string]any{"vat": "XX1"},
		}, log)
		assert.Equal(t, []domain.StepID{"account", "profile", "review"}, path)
	})
}

func TestCalculatePath_DefensiveStops(t *testing.T) {
	log := logging.NewNop()

	t.Run("DynamicCycle", func(t *testing.T) {
		def := &domain.FlowDefinition{
			ID:      "cyclic",
			Initial: "a",
			Steps: map[domain.StepID]domain.StepDefinition{
				"a": {Schema: schema.Schema{}, Next: domain.Goto("b")},
				"b": {Schema: schema.Schema{}, Next: domain.Branch(func(any, domain.Data) domain.StepID {
					return "a"
				})},
			},
		}
		data := domain.Data{"a": map[string]any{}, "b": map[string]any{}}
		path := runtime.CalculatePath(def, data, log)
		assert.Equal(t, []domain.StepID{"a", "b"}, path, "revisiting a stops the walk")
	})

	t.Run("UndeclaredTarget", func(t *testing.T) {
		def := &domain.FlowDefinition{
			ID:      "dangling",
			Initial: "a",
			Steps: map[domain.StepID]domain.StepDefinition{
				"a": {Schema: schema.Schema{}, Next: domain.Branch(func(any, domain.Data) domain.StepID {
					return "ghost"
				})},
			},
		}
		path := runtime.CalculatePath(def, domain.Data{"a": map[string]any{}}, log)
		assert.Equal(t, []domain.StepID{"a"}, path)
	})
}

func TestCalculateFullPath(t *testing.T) {
	def := signupFlow(t)
	log := logging.NewNop()

	t.Run("FollowsStaticEdgesWithoutData", func(t *testing.T) {
		path := runtime.CalculateFullPath(def, domain.Data{}, log)
		assert.Equal(t, []domain.StepID{"account", "profile"}, path,
			"optimistic walk halts only at the dynamic edge")
	})

	t.Run("DynamicEdgeResolvesWithData", func(t *testing.T) {
		path := runtime.CalculateFullPath(def, domain.Data{
			"profile": map[string]any{"type": "company"},
		}, log)
		assert.Equal(t, []domain.StepID{"account", "profile", "company", "review"}, path)
	})
}
