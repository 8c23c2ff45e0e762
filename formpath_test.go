package formpath_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmbl-labs/formpath"
	"github.com/nmbl-labs/formpath/pkg/adapters/memory"
	"github.com/nmbl-labs/formpath/pkg/persistence"
	"github.com/nmbl-labs/formpath/pkg/schema"
)

func onboardingFlow(t *testing.T) *formpath.FlowDefinition {
	t.Helper()
	def, err := formpath.NewFlow("onboarding", "account", map[formpath.StepID]formpath.StepDefinition{
		"account": {
			Schema: schema.Schema{"email": schema.String()},
			Next:   formpath.Goto("plan"),
		},
		"plan": {
			Schema: schema.Schema{"tier": schema.Enum("free", "pro")},
			Next: formpath.Branch(func(stepData any, all formpath.Data) formpath.StepID {
				if m, ok := stepData.(map[string]any); ok && m["tier"] == "pro" {
					return "billing"
				}
				return "review"
			}),
		},
		"billing": {
			Schema: schema.Schema{"card": schema.String()},
			Next:   formpath.Goto("review"),
		},
		"review": {
			Schema: schema.Schema{"confirm": schema.Bool()},
			Next:   formpath.End(),
		},
	})
	if err != nil {
		t.Fatalf("fixture definition invalid: %v", err)
	}
	return def
}

func TestNew_RejectsInvalidDefinition(t *testing.T) {
	def := &formpath.FlowDefinition{
		ID:      "broken",
		Initial: "ghost",
		Steps:   map[formpath.StepID]formpath.StepDefinition{},
	}
	_, err := formpath.New(def)
	assert.Error(t, err)
}

func TestFlow_EndToEnd(t *testing.T) {
	flow, err := formpath.New(onboardingFlow(t))
	assert.NoError(t, err)
	ctx := context.Background()

	advanced, err := flow.Next(ctx, map[string]any{"email": "a@b.c"})
	assert.NoError(t, err)
	assert.True(t, advanced)

	advanced, err = flow.Next(ctx, map[string]any{"tier": "free"})
	assert.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, formpath.StepID("review"), flow.State().CurrentStep)

	completed, total := flow.Progress()
	assert.Equal(t, 2, completed)
	assert.Equal(t, 3, total)

	advanced, err = flow.Next(ctx, map[string]any{"confirm": true})
	assert.NoError(t, err)
	assert.True(t, advanced)
	assert.True(t, flow.IsComplete())
}

func TestFlow_PersistenceRoundTrip(t *testing.T) {
	def := onboardingFlow(t)
	store := memory.NewStore()
	ctx := context.Background()

	flow, err := formpath.New(def,
		formpath.WithPersistence(store),
		formpath.WithAutoPersist(true),
	)
	assert.NoError(t, err)

	// Hydrating an empty store reports no saved state.
	found, err := flow.Hydrate(ctx)
	assert.NoError(t, err)
	assert.False(t, found)

	_, err = flow.Next(ctx, map[string]any{"email": "a@b.c"})
	assert.NoError(t, err)
	_, err = flow.Next(ctx, map[string]any{"tier": "pro"})
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len(), "auto-persist wrote the progress")

	// A new flow instance over the same store resumes where we stopped.
	resumed, err := formpath.New(def, formpath.WithPersistence(store))
	assert.NoError(t, err)
	found, err = resumed.Hydrate(ctx)
	assert.NoError(t, err)
	assert.True(t, found)

	state := resumed.State()
	assert.Equal(t, formpath.StepID("billing"), state.CurrentStep)
	assert.True(t, state.CompletedSteps["account"])
	assert.True(t, state.CompletedSteps["plan"])

	assert.NoError(t, resumed.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestFlow_PersistenceOptionsPassThrough(t *testing.T) {
	def := onboardingFlow(t)
	store := memory.NewStore()
	ctx := context.Background()

	flow, err := formpath.New(def,
		formpath.WithPersistence(store, persistence.WithKey("sessions:42")),
	)
	assert.NoError(t, err)
	assert.NoError(t, flow.Persist(ctx))

	_, err = store.GetItem(ctx, "sessions:42")
	assert.NoError(t, err)
}

func TestFlow_WithoutPersistenceIsNoOp(t *testing.T) {
	flow, err := formpath.New(onboardingFlow(t))
	assert.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, flow.Persist(ctx))
	assert.NoError(t, flow.Clear(ctx))
	found, err := flow.Hydrate(ctx)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestPathHelpers(t *testing.T) {
	def := onboardingFlow(t)

	path := formpath.CalculatePath(def, formpath.Data{
		"account": map[string]any{"email": "a@b.c"},
	})
	assert.Equal(t, []formpath.StepID{"account", "plan"}, path)

	full := formpath.CalculateFullPath(def, nil)
	assert.Equal(t, []formpath.StepID{"account", "plan"}, full)

	assert.Equal(t, formpath.StepID("plan"), formpath.NextStep("account", path))
	assert.Equal(t, formpath.StepID("account"), formpath.PreviousStep("plan", path))
	assert.Equal(t, formpath.StepID("review"),
		formpath.ResolveTransition(def, "plan", map[string]any{"tier": "free"}, nil))
	assert.True(t, formpath.CanNavigateTo("account", map[formpath.StepID]bool{}, path))
}
