// Package taggedvalue propagates tagged values along generalizations and
// from value types onto properties.
package taggedvalue

import (
	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Rules understood by the unit.
const (
	RuleInheritance       pipeline.Rule = "rule-trf-taggedValue-inheritance"
	RuleCopyFromValueType pipeline.Rule = "rule-trf-taggedValue-copyFromValueType"
)

// UnitName is the configuration name of the unit.
const UnitName = "taggedValue"

// Parameters read by the unit.
const (
	ParamGeneralList     = "taggedValueInheritanceGeneralList"
	ParamOverwriteList   = "taggedValueInheritanceOverwriteList"
	ParamAppendList      = "taggedValueInheritanceAppendList"
	ParamAppendSeparator = "taggedValueInheritanceAppendSeparator"
	ParamCopyTags        = "taggedValueCopyFromValueTypeTags"
	ParamCopyNameRegex   = "taggedValueCopyFromValueTypeNameRegex"
	ParamCopyOverwrite   = "taggedValueCopyFromValueTypeOverwrite"

	defaultAppendSeparator = ", "
)

// Unit is the tagged value transformation.
type Unit struct{}

// New returns the unit.
func New() *Unit {
	return &Unit{}
}

// Name implements pipeline.Unit.
func (u *Unit) Name() string { return UnitName }

// Rules implements pipeline.Unit.
func (u *Unit) Rules() []pipeline.Rule {
	return []pipeline.Rule{RuleInheritance, RuleCopyFromValueType}
}

// Params implements pipeline.Unit.
func (u *Unit) Params() []pipeline.ParamSpec {
	return []pipeline.ParamSpec{
		{Name: ParamGeneralList, Kind: pipeline.ParamList, RequiredBy: []pipeline.Rule{RuleInheritance},
			Doc: "tags inherited by subtypes"},
		{Name: ParamOverwriteList, Kind: pipeline.ParamList, UsedBy: []pipeline.Rule{RuleInheritance},
			Doc: "inherited tags whose supertype value replaces the subtype value"},
		{Name: ParamAppendList, Kind: pipeline.ParamList, UsedBy: []pipeline.Rule{RuleInheritance},
			Doc: "inherited tags whose subtype value is appended to the supertype value"},
		{Name: ParamAppendSeparator, Default: defaultAppendSeparator, UsedBy: []pipeline.Rule{RuleInheritance},
			Doc: "separator between appended values"},
		{Name: ParamCopyTags, Kind: pipeline.ParamList, RequiredBy: []pipeline.Rule{RuleCopyFromValueType},
			Doc: "tags copied from the value type onto the property"},
		{Name: ParamCopyNameRegex, Kind: pipeline.ParamRegex, Default: ".*", UsedBy: []pipeline.Rule{RuleCopyFromValueType},
			Doc: "value type names eligible for copying"},
		{Name: ParamCopyOverwrite, Kind: pipeline.ParamBool, Default: "false", UsedBy: []pipeline.Rule{RuleCopyFromValueType},
			Doc: "replace tags already present on the property"},
	}
}

// Process implements pipeline.Unit.
func (u *Unit) Process(m *model.Model, cfg *pipeline.StepConfig, sink *mgerrors.Sink) error {
	if cfg.Active(RuleInheritance) {
		inherit(m, newInheritanceConfig(cfg.Params), sink)
	}
	if cfg.Active(RuleCopyFromValueType) {
		re, err := cfg.Params.Regexp(ParamCopyNameRegex)
		if err != nil {
			sink.Errorf(mgerrors.ErrInvalidConfiguration, UnitName, "%s skipped: %v", RuleCopyFromValueType, err)
			return nil
		}
		copyFromValueType(m, copyConfig{
			tags:      cfg.Params.StringList(ParamCopyTags),
			pattern:   re,
			overwrite: cfg.Params.Bool(ParamCopyOverwrite),
		}, sink)
	}
	return nil
}
