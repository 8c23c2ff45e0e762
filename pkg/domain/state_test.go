package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmbl-labs/formpath/pkg/domain"
)

func TestNewState(t *testing.T) {
	state := domain.NewState("account")

	assert.Equal(t, domain.StepID("account"), state.CurrentStep)
	assert.Equal(t, []domain.StepID{"account"}, state.Path)
	assert.Equal(t, []domain.StepID{"account"}, state.History)
	assert.Empty(t, state.CompletedSteps)
	assert.Equal(t, domain.StatusIdle, state.Status)
	assert.False(t, state.IsComplete())
}

func TestFlowState_CloneIsIndependent(t *testing.T) {
	state := domain.NewState("a")
	state.Data["a"] = map[string]any{"x": 1}
	state.CompletedSteps["a"] = true

	clone := state.Clone()
	clone.Data["b"] = "later"
	clone.CompletedSteps["b"] = true
	clone.Path = append(clone.Path, "b")
	clone.History = append(clone.History, "b")

	assert.NotContains(t, state.Data, domain.StepID("b"))
	assert.NotContains(t, state.CompletedSteps, domain.StepID("b"))
	assert.Len(t, state.Path, 1)
	assert.Len(t, state.History, 1)
}

func TestData_CloneNil(t *testing.T) {
	var d domain.Data
	clone := d.Clone()
	assert.NotNil(t, clone)
	clone["a"] = 1
	assert.Nil(t, d)
}
