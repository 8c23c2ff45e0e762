package runtime

import "github.com/nmbl-labs/formpath/pkg/domain"

// ResolveTransition determines the single next step out of current given
// its data, or the empty StepID for terminal. An undeclared current step
// also yields the empty StepID, signaling an invalid position. Panics
// from user transition functions are deliberately not recovered here so
// the engine can classify them as flow exceptions.
func ResolveTransition(def *domain.FlowDefinition, current domain.StepID, stepData any, all domain.Data) domain.StepID {
	step, ok := def.Step(current)
	if !ok {
		return ""
	}
	return resolve(step.Next, stepData, all)
}

// NextStep returns the element after current in path, or the empty
// StepID when current is the last element or not in the path at all.
func NextStep(current domain.StepID, path []domain.StepID) domain.StepID {
	for i, id := range path {
		if id == current {
			if i+1 < len(path) {
				return path[i+1]
			}
			return ""
		}
	}
	return ""
}

// PreviousStep returns the element before current in path, or the empty
// StepID at the first element or when current is not in the path.
func PreviousStep(current domain.StepID, path []domain.StepID) domain.StepID {
	for i, id := range path {
		if id == current {
			if i > 0 {
				return path[i-1]
			}
			return ""
		}
	}
	return ""
}

// CanNavigateTo gates direct navigation. A target is navigable when it
// is a completed step still on the path, the frontier (the first
// not-yet-completed step on the path), or the path's first element.
// Everything else is rejected, which blocks skipping past uncompleted
// steps while leaving movement among completed ones free.
//
// The frontier is admitted without validating anything; reaching a
// freshly exposed terminal step and submitting it relies on this.
func CanNavigateTo(target domain.StepID, completed map[domain.StepID]bool, path []domain.StepID) bool {
	if len(path) == 0 {
		return false
	}
	if target == path[0] {
		return true
	}

	onPath := false
	var frontier domain.StepID
	for _, id := range path {
		if id == target {
			onPath = true
		}
		if frontier == "" && !completed[id] {
			frontier = id
		}
	}
	if !onPath {
		return false
	}
	if completed[target] {
		return true
	}
	return target == frontier
}
