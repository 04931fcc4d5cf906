package pipeline

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Step pairs a unit with its configuration.
type Step struct {
	Unit   Unit
	Config *StepConfig
}

// Pipeline is an ordered list of steps.
type Pipeline struct {
	steps []Step
}

// New returns a pipeline running steps in order.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Add appends a step.
func (p *Pipeline) Add(u Unit, cfg *StepConfig) {
	p.steps = append(p.steps, Step{Unit: u, Config: cfg})
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Run applies every step to m in order. Recoverable problems are recorded
// in sink; an error aborts the run.
func (p *Pipeline) Run(m *model.Model, sink *mgerrors.Sink) error {
	for i, step := range p.steps {
		if err := Apply(step.Unit, m, step.Config, sink); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Config.label(step.Unit), err)
		}
	}
	return nil
}

// Apply runs one unit. A step with none of the unit's rules active is a
// no-op. Rules the unit does not declare are reported as warnings, and a
// step whose parameters fail validation is skipped with an error
// diagnostic.
func Apply(u Unit, m *model.Model, cfg *StepConfig, sink *mgerrors.Sink) error {
	if cfg == nil {
		cfg = NewStepConfig(nil, nil)
	}
	if cfg.Params == nil {
		cfg.Params = NewParams(nil)
	}
	label := cfg.label(u)

	known := sets.New(u.Rules()...)
	for _, r := range sets.List(cfg.Rules) {
		if !known.Has(r) {
			sink.Warnf(mgerrors.ErrUnknownRule, label, "rule %s is not understood by unit %s", r, u.Name())
		}
	}
	if !known.HasAny(sets.List(cfg.Rules)...) {
		return nil
	}

	specs := u.Params()
	cfg.Params.Declare(specs)
	if err := cfg.Params.Validate(specs, cfg.Rules); err != nil {
		sink.Errorf(mgerrors.ErrInvalidConfiguration, label, "step skipped: %v", err)
		return nil
	}
	return u.Process(m, cfg, sink)
}
