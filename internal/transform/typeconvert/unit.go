// Package typeconvert changes class categories and dissolves associations
// into plain attributes.
package typeconvert

import (
	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Rules understood by the unit.
const (
	RuleEnumerationToCodelist     pipeline.Rule = "rule-trf-enumerationToCodelist"
	RuleToFeatureType             pipeline.Rule = "rule-trf-toFeatureType"
	RuleDissolveAssociations      pipeline.Rule = "rule-trf-dissolveAssociations"
	RuleDissolveExcludeManyToMany pipeline.Rule = "rule-trf-dissolveAssociations-excludeManyToMany"
	RuleDissolveRemoveMultiValued pipeline.Rule = "rule-trf-dissolveAssociations-removeMultiValued"
)

// UnitName is the configuration name of the unit.
const UnitName = "typeConversion"

// Parameters read by the unit.
const (
	ParamToFeatureTypeNameRegex = "toFeatureTypeNameRegex"
	ParamAttributeType          = "attributeType"

	// TagToFeatureType marks classes converted when no name pattern is set.
	TagToFeatureType = "toFeatureType"

	defaultAttributeType = "CharacterString"
)

// Unit is the type conversion transformation.
type Unit struct{}

// New returns the unit.
func New() *Unit {
	return &Unit{}
}

// Name implements pipeline.Unit.
func (u *Unit) Name() string { return UnitName }

// Rules implements pipeline.Unit.
func (u *Unit) Rules() []pipeline.Rule {
	return []pipeline.Rule{
		RuleEnumerationToCodelist,
		RuleToFeatureType,
		RuleDissolveAssociations,
		RuleDissolveExcludeManyToMany,
		RuleDissolveRemoveMultiValued,
	}
}

// Params implements pipeline.Unit.
func (u *Unit) Params() []pipeline.ParamSpec {
	return []pipeline.ParamSpec{
		{Name: ParamToFeatureTypeNameRegex, Kind: pipeline.ParamRegex, UsedBy: []pipeline.Rule{RuleToFeatureType},
			Doc: "names of object types converted to feature types; without it classes tagged toFeatureType=true are converted"},
		{Name: ParamAttributeType, Default: defaultAttributeType, UsedBy: []pipeline.Rule{RuleDissolveAssociations},
			Doc: "value type of attributes replacing association roles"},
	}
}

// Process implements pipeline.Unit.
func (u *Unit) Process(m *model.Model, cfg *pipeline.StepConfig, sink *mgerrors.Sink) error {
	if cfg.Active(RuleEnumerationToCodelist) {
		convertCategory(m, sink, model.CategoryEnumeration, model.CategoryCodeList, func(*model.Class) bool { return true })
	}
	if cfg.Active(RuleToFeatureType) {
		re, err := cfg.Params.Regexp(ParamToFeatureTypeNameRegex)
		if err != nil {
			sink.Errorf(mgerrors.ErrInvalidConfiguration, UnitName, "%s skipped: %v", RuleToFeatureType, err)
		} else {
			match := func(c *model.Class) bool { return c.TaggedValues.Get(TagToFeatureType) == "true" }
			if re != nil {
				match = func(c *model.Class) bool { return re.MatchString(c.Name) }
			}
			convertCategory(m, sink, model.CategoryObject, model.CategoryFeature, match)
		}
	}
	if cfg.Active(RuleDissolveAssociations) {
		dissolveAssociations(m, dissolveConfig{
			attributeType:     cfg.Params.Value(ParamAttributeType),
			excludeManyToMany: cfg.Active(RuleDissolveExcludeManyToMany),
			removeMultiValued: cfg.Active(RuleDissolveRemoveMultiValued),
		}, sink)
	}
	return nil
}
