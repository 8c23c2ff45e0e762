package runtime

import (
	"log/slog"

	"github.com/nmbl-labs/formpath/pkg/domain"
)

// CalculatePath walks the flow graph from the initial step, bounded by
// the data collected so far: the walk appends each visited step and
// stops at the first step whose own data is missing, at a terminal
// transition, or at a dynamic transition that resolves to nothing.
//
// The walk is deterministic for a given (definition, data) pair. Two
// defensive stops guard against malformed graphs at runtime: a revisited
// step id (a cycle expressed through dynamic edges, invisible to static
// validation) and a transition into an undeclared step. Both log a
// diagnostic and end the walk.
func CalculatePath(def *domain.FlowDefinition, data domain.Data, log *slog.Logger) []domain.StepID {
	path := []domain.StepID{}
	visited := map[domain.StepID]bool{}
	current := def.Initial

	for {
		step, ok := def.Step(current)
		if !ok {
			log.Warn("path walk reached an undeclared step, stopping",
				"flow", def.ID, "step", current)
			break
		}
		if visited[current] {
			log.Warn("path walk revisited a step, stopping to avoid a cycle",
				"flow", def.ID, "step", current)
			break
		}
		visited[current] = true
		path = append(path, current)

		stepData, answered := data[current]
		if !answered {
			// Even a static edge requires the step's own answer before
			// the flow may advance past it.
			break
		}

		next := resolve(step.Next, stepData, data)
		if next == "" {
			break
		}
		current = next
	}

	return path
}

// CalculateFullPath is the optimistic projection of the flow's eventual
// shape: static edges are followed whether or not the step has data, and
// only dynamic edges require the step's answer to proceed. Used for
// step-count displays, not for navigation.
func CalculateFullPath(def *domain.FlowDefinition, data domain.Data, log *slog.Logger) []domain.StepID {
	path := []domain.StepID{}
	visited := map[domain.StepID]bool{}
	current := def.Initial

	for {
		step, ok := def.Step(current)
		if !ok {
			log.Warn("full path walk reached an undeclared step, stopping",
				"flow", def.ID, "step", current)
			break
		}
		if visited[current] {
			log.Warn("full path walk revisited a step, stopping to avoid a cycle",
				"flow", def.ID, "step", current)
			break
		}
		visited[current] = true
		path = append(path, current)

		switch t := step.Next.(type) {
		case domain.Static:
			current = t.To
		case domain.Dynamic:
			stepData, answered := data[current]
			if !answered {
				return path
			}
			next := t.Fn(stepData, data)
			if next == "" {
				return path
			}
			current = next
		default: // Terminal
			return path
		}
	}

	return path
}

// resolve evaluates a transition given the step's own data and the full
// data set. The empty StepID means terminal (or unresolvable). Panics
// from user transition functions propagate to the engine boundary.
func resolve(t domain.Transition, stepData any, all domain.Data) domain.StepID {
	switch v := t.(type) {
	case domain.Static:
		return v.To
	case domain.Dynamic:
		return v.Fn(stepData, all)
	default:
		return ""
	}
}
