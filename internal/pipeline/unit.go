// Package pipeline runs rule-gated transformation units over a model.
//
// A unit declares the rules it understands and the parameters it reads.
// It runs only when at least one of its rules is active for the step; a
// step with none of them leaves the model untouched.
package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/yaml"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Rule names one switchable behavior of a unit.
type Rule string

// Unit is one transformation of the pipeline.
type Unit interface {
	// Name is the identifier used in configuration files.
	Name() string
	// Rules lists the rules the unit understands.
	Rules() []Rule
	// Params declares the parameters the unit reads.
	Params() []ParamSpec
	// Process applies the active rules of cfg to m. It is only called when
	// at least one rule is active and the parameters passed validation.
	Process(m *model.Model, cfg *StepConfig, sink *mgerrors.Sink) error
}

// StepConfig is the configuration of one pipeline step.
type StepConfig struct {
	Rules    sets.Set[Rule]
	Params   *Params
	ID       string
	Advanced json.RawMessage
}

// NewStepConfig returns a step configuration with the given rules and
// parameter values.
func NewStepConfig(rules []Rule, values map[string]string) *StepConfig {
	return &StepConfig{
		Rules:  sets.New(rules...),
		Params: NewParams(values),
	}
}

// Active reports whether rule is active.
func (c *StepConfig) Active(rule Rule) bool {
	return c != nil && c.Rules.Has(rule)
}

// AnyActive reports whether any of rules is active.
func (c *StepConfig) AnyActive(rules ...Rule) bool {
	for _, r := range rules {
		if c.Active(r) {
			return true
		}
	}
	return false
}

// DecodeAdvanced decodes the advanced configuration into v. An absent
// advanced configuration leaves v unchanged.
func (c *StepConfig) DecodeAdvanced(v any) error {
	if c == nil || len(c.Advanced) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(c.Advanced, v); err != nil {
		return fmt.Errorf("advanced configuration: %w", err)
	}
	return nil
}

func (c *StepConfig) label(u Unit) string {
	if c.ID != "" {
		return c.ID
	}
	return u.Name()
}

// Registry maps unit names to units.
type Registry struct {
	units map[string]Unit
}

// NewRegistry returns a registry holding units.
func NewRegistry(units ...Unit) *Registry {
	r := &Registry{units: make(map[string]Unit)}
	for _, u := range units {
		r.Register(u)
	}
	return r
}

// Register adds u, replacing a unit of the same name.
func (r *Registry) Register(u Unit) {
	r.units[u.Name()] = u
}

// Lookup returns the unit registered under name.
func (r *Registry) Lookup(name string) (Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Names returns the registered unit names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
