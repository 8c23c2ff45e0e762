package domain

import (
	"fmt"
	"sort"
)

// FlowDefinition is the static graph of a flow: its steps, keyed by id,
// and the entry step. Definitions are immutable after construction; a
// single definition can back any number of flow states.
type FlowDefinition struct {
	ID      string
	Steps   map[StepID]StepDefinition
	Initial StepID
}

// Report is the outcome of structural validation. Errors are fatal to
// flow creation; Warnings describe shapes that are legal but worth a
// look (terminal steps, dynamic edges, single-step flows).
type Report struct {
	Errors   []*DefinitionError
	Warnings []string
}

// Valid reports whether the definition has no structural errors.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

// NewFlow builds a validated flow definition. It returns an
// *InvalidDefinitionError when the structure is unsound; see Validate
// for the checks performed.
func NewFlow(id string, initial StepID, steps map[StepID]StepDefinition) (*FlowDefinition, error) {
	def := &FlowDefinition{
		ID:      id,
		Steps:   normalizeSteps(steps),
		Initial: initial,
	}
	if err := def.AssertValid(); err != nil {
		return nil, err
	}
	return def, nil
}

// normalizeSteps copies the step map and normalizes nil transitions to
// Terminal so resolution never sees a nil Next.
func normalizeSteps(steps map[StepID]StepDefinition) map[StepID]StepDefinition {
	out := make(map[StepID]StepDefinition, len(steps))
	for id, sd := range steps {
		if sd.Next == nil {
			sd.Next = Terminal{}
		}
		out[id] = sd
	}
	return out
}

// AssertValid runs Validate and converts a dirty report into an error.
func (d *FlowDefinition) AssertValid() error {
	report := d.Validate()
	if report.Valid() {
		return nil
	}
	return &InvalidDefinitionError{Errors: report.Errors}
}

// Validate checks the definition for structural soundness:
//
//   - the initial step must be declared,
//   - every static edge must target a declared step,
//   - every step must carry a schema,
//   - no cycle may be reachable purely through static edges,
//   - every step must be reachable from the initial step.
//
// Cycle detection follows static edges only: a dynamic edge aborts the
// traversal at that node, since its destination is unknowable without
// data. Reachability treats a reachable dynamic edge as able to target
// any declared step, so unreachable-step errors are only reported for
// purely static closures.
//
// Results are deterministic: steps are visited in sorted id order.
func (d *FlowDefinition) Validate() *Report {
	report := &Report{}

	ids := d.sortedStepIDs()

	if _, ok := d.Steps[d.Initial]; !ok {
		report.Errors = append(report.Errors, &DefinitionError{
			Kind: DefErrMissingInitial,
			Step: d.Initial,
			Msg:  "initial step is not declared",
		})
	}

	for _, id := range ids {
		sd := d.Steps[id]

		if sd.Schema == nil {
			report.Errors = append(report.Errors, &DefinitionError{
				Kind: DefErrMissingSchema,
				Step: id,
				Msg:  "step has no schema",
			})
		}

		switch t := sd.Next.(type) {
		case Static:
			if _, ok := d.Steps[t.To]; !ok {
				report.Errors = append(report.Errors, &DefinitionError{
					Kind: DefErrDanglingEdge,
					Step: id,
					Msg:  fmt.Sprintf("static transition targets undeclared step %q", t.To),
				})
			}
		case Terminal, nil:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("step %q is terminal (no outgoing edge)", id))
		case Dynamic:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("step %q has a dynamic transition; its targets cannot be verified statically", id))
		}
	}

	if len(d.Steps) == 1 {
		report.Warnings = append(report.Warnings, "flow has a single step")
	}

	if cycle := d.findStaticCycle(); cycle != nil {
		report.Errors = append(report.Errors, &DefinitionError{
			Kind: DefErrStaticCycle,
			Step: cycle[0],
			Msg:  fmt.Sprintf("unconditional cycle through static edges: %v", cycle),
		})
	}

	// Reachability over static edges from the initial step. If the
	// closure contains a dynamic edge, every step is potentially
	// reachable at runtime and no unreachability error applies.
	if _, ok := d.Steps[d.Initial]; ok {
		reached, sawDynamic := d.staticClosure(d.Initial)
		if !sawDynamic {
			for _, id := range ids {
				if !reached[id] {
					report.Errors = append(report.Errors, &DefinitionError{
						Kind: DefErrUnreachable,
						Step: id,
						Msg:  "step is not reachable from the initial step",
					})
				}
			}
		}
	}

	return report
}

// staticClosure walks static edges from start, returning the visited set
// and whether a dynamic edge was encountered inside it.
func (d *FlowDefinition) staticClosure(start StepID) (map[StepID]bool, bool) {
	visited := map[StepID]bool{}
	sawDynamic := false
	queue := []StepID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		sd, ok := d.Steps[cur]
		if !ok {
			continue
		}
		visited[cur] = true
		switch t := sd.Next.(type) {
		case Static:
			queue = append(queue, t.To)
		case Dynamic:
			sawDynamic = true
		}
	}
	return visited, sawDynamic
}

// findStaticCycle runs a three-color DFS over static edges, rooted at
// the initial step only: a cycle counts when it can be entered without
// data, and any walk that needs a dynamic edge to reach the loop
// cannot. Dynamic edges end the walk at that node. Returns the cycle
// path when one exists, nil otherwise.
func (d *FlowDefinition) findStaticCycle() []StepID {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[StepID]int{}
	var path []StepID

	var dfs func(id StepID) []StepID
	dfs = func(id StepID) []StepID {
		color[id] = gray
		path = append(path, id)

		if sd, ok := d.Steps[id]; ok {
			if t, ok := sd.Next.(Static); ok {
				next := t.To
				if color[next] == gray {
					// Close the loop for reporting.
					start := 0
					for i, p := range path {
						if p == next {
							start = i
							break
						}
					}
					return append(append([]StepID(nil), path[start:]...), next)
				}
				if color[next] == white {
					if _, declared := d.Steps[next]; declared {
						if cycle := dfs(next); cycle != nil {
							return cycle
						}
					}
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	if _, declared := d.Steps[d.Initial]; declared {
		return dfs(d.Initial)
	}
	return nil
}

func (d *FlowDefinition) sortedStepIDs() []StepID {
	ids := make([]StepID, 0, len(d.Steps))
	for id := range d.Steps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Step looks up a step definition. The second return mirrors map access.
func (d *FlowDefinition) Step(id StepID) (StepDefinition, bool) {
	sd, ok := d.Steps[id]
	return sd, ok
}
