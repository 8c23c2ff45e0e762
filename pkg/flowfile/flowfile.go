// Package flowfile loads flow definitions from YAML documents.
//
// A flow file names its steps, a field-type schema per step, and the
// transition out of each step. Static transitions are written as the
// target step id; data-driven transitions reference a named function
// registered in a Registry, since behavior cannot live in YAML:
//
//	id: checkout
//	initial: cart
//	steps:
//	  cart:
//	    schema:
//	      items: "[string]"
//	      promo: "string?"
//	    next: shipping
//	  shipping:
//	    schema:
//	      country: string
//	    branch: pick_payment_route
//	  payment:
//	    schema:
//	      method: enum(card,boleto)
//	    end: true
package flowfile

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/schema"
)

// Registry maps branch names used in flow files to transition
// functions.
type Registry map[string]domain.TransitionFunc

// Register adds a named transition function, replacing any previous
// binding.
func (r Registry) Register(name string, fn domain.TransitionFunc) {
	r[name] = fn
}

type document struct {
	ID      string              `mapstructure:"id"`
	Initial string              `mapstructure:"initial"`
	Steps   map[string]stepSpec `mapstructure:"steps"`
}

type stepSpec struct {
	Schema map[string]string `mapstructure:"schema"`
	Next   string            `mapstructure:"next"`
	Branch string            `mapstructure:"branch"`
	End    bool              `mapstructure:"end"`
}

// Load reads and parses a flow file from disk.
func Load(path string, registry Registry) (*domain.FlowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flowfile: read %s: %w", path, err)
	}
	def, err := Parse(data, registry)
	if err != nil {
		return nil, fmt.Errorf("flowfile: %s: %w", path, err)
	}
	return def, nil
}

// Parse builds a validated flow definition from YAML bytes. The
// registry resolves branch names; it may be nil when the file uses no
// data-driven transitions.
func Parse(data []byte, registry Registry) (*domain.FlowDefinition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	var doc document
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode flow document: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("flow document has no id")
	}
	if doc.Initial == "" {
		return nil, fmt.Errorf("flow %q has no initial step", doc.ID)
	}

	steps := make(map[domain.StepID]domain.StepDefinition, len(doc.Steps))
	for id, spec := range doc.Steps {
		sd, err := compileStep(id, spec, registry)
		if err != nil {
			return nil, err
		}
		steps[domain.StepID(id)] = sd
	}

	return domain.NewFlow(doc.ID, domain.StepID(doc.Initial), steps)
}

func compileStep(id string, spec stepSpec, registry Registry) (domain.StepDefinition, error) {
	var sd domain.StepDefinition

	fields, err := schema.ParseTypeMap(spec.Schema)
	if err != nil {
		return sd, fmt.Errorf("step %q: %w", id, err)
	}
	sd.Schema = fields

	set := 0
	if spec.Next != "" {
		set++
	}
	if spec.Branch != "" {
		set++
	}
	if spec.End {
		set++
	}
	if set > 1 {
		return sd, fmt.Errorf("step %q: next, branch and end are mutually exclusive", id)
	}

	switch {
	case spec.Next != "":
		sd.Next = domain.Goto(domain.StepID(spec.Next))
	case spec.Branch != "":
		fn, ok := registry[spec.Branch]
		if !ok {
			return sd, fmt.Errorf("step %q: branch %q is not registered", id, spec.Branch)
		}
		sd.Next = domain.Branch(fn)
	default:
		sd.Next = domain.End()
	}

	return sd, nil
}
