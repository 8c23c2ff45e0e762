// Package graph renders flow definitions as Mermaid flowcharts, with an
// optional overlay of a live flow state.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nmbl-labs/formpath/pkg/domain"
)

// Overlay carries state to visualize on top of the static graph.
type Overlay struct {
	Completed []domain.StepID
	Current   domain.StepID
}

// Mermaid produces a Mermaid flowchart from a definition. Shapes carry
// the semantics:
//   - initial step: ((circle))
//   - terminal step: [rectangle] with a terminal edge to a stop marker
//   - dynamic transition: dotted arrow to a decision marker
//
// Steps are emitted in sorted id order so output is deterministic.
func Mermaid(def *domain.FlowDefinition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]domain.StepID, 0, len(def.Steps))
	for id := range def.Steps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		safeID := sanitizeID(id)

		opener, closer := "[", "]"
		if id == def.Initial {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, id, closer))

		switch t := def.Steps[id].Next.(type) {
		case domain.Static:
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeID(t.To)))
		case domain.Dynamic:
			sb.WriteString(fmt.Sprintf("    %s -.-> %s_branch{\"?\"}\n", safeID, safeID))
		case domain.Terminal, nil:
			sb.WriteString(fmt.Sprintf("    %s --> %s_done((\" \"))\n", safeID, safeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% State overlay\n")
		sb.WriteString("    classDef completed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Completed {
			safeID := sanitizeID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s completed;\n", safeID))
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeID(overlay.Current)))
		}
	}

	return sb.String()
}

// OverlayFromState builds an overlay from a state snapshot.
func OverlayFromState(state *domain.FlowState) *Overlay {
	if state == nil {
		return nil
	}
	completed := make([]domain.StepID, 0, len(state.CompletedSteps))
	for _, id := range state.Path {
		if state.CompletedSteps[id] {
			completed = append(completed, id)
		}
	}
	return &Overlay{Completed: completed, Current: state.CurrentStep}
}

func sanitizeID(id domain.StepID) string {
	s := strings.ReplaceAll(string(id), ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
