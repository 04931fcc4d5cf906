// Package propertymetadata expands properties stereotyped propertymetadata
// into a companion property that carries their metadata.
package propertymetadata

import (
	"fmt"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// RuleStereotypeToMetadataProperty replaces the stereotype by a metadata property.
const RuleStereotypeToMetadataProperty pipeline.Rule = "rule-trf-propertyMetadata-stereotype-to-metadata-property"

// UnitName is the configuration name of the unit.
const UnitName = "propertyMetadata"

// Parameters read by the unit.
const (
	ParamMetadataType       = "metadataType"
	ParamMetadataMode       = "metadataPropertyMode"
	ParamMetadataNameSuffix = "metadataPropertyNameSuffix"

	// TagMetadataType on a property names its metadata type and takes
	// precedence over ParamMetadataType.
	TagMetadataType = "metadataType"

	defaultNameSuffix  = "Metadata"
	defaultCardinality = "1"
)

// Mode selects how the metadata property is modelled.
type Mode string

const (
	ModeAttribute   Mode = "attribute"
	ModeAssociation Mode = "association"
)

func parseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAttribute:
		return ModeAttribute, nil
	case ModeAssociation:
		return ModeAssociation, nil
	default:
		return "", fmt.Errorf("metadata property mode %q: want %s or %s", s, ModeAttribute, ModeAssociation)
	}
}

// Template overrides the parameters for one metadata type.
type Template struct {
	TypeName    string `json:"typeName"`
	Mode        string `json:"mode,omitempty"`
	NameSuffix  string `json:"nameSuffix,omitempty"`
	Cardinality string `json:"cardinality,omitempty"`
}

// Advanced is the advanced configuration of the unit.
type Advanced struct {
	Templates []Template `json:"templates"`
}

// Unit is the property metadata transformation.
type Unit struct{}

// New returns the unit.
func New() *Unit {
	return &Unit{}
}

// Name implements pipeline.Unit.
func (u *Unit) Name() string { return UnitName }

// Rules implements pipeline.Unit.
func (u *Unit) Rules() []pipeline.Rule {
	return []pipeline.Rule{RuleStereotypeToMetadataProperty}
}

// Params implements pipeline.Unit.
func (u *Unit) Params() []pipeline.ParamSpec {
	return []pipeline.ParamSpec{
		{Name: ParamMetadataType,
			Doc: "metadata type used when a property has no metadataType tag"},
		{Name: ParamMetadataMode, Default: string(ModeAttribute),
			Doc: "attribute or association"},
		{Name: ParamMetadataNameSuffix, Default: defaultNameSuffix,
			Doc: "suffix appended to the property name to name the metadata property"},
	}
}

// Process implements pipeline.Unit.
func (u *Unit) Process(m *model.Model, cfg *pipeline.StepConfig, sink *mgerrors.Sink) error {
	mode, err := parseMode(cfg.Params.Value(ParamMetadataMode))
	if err != nil {
		sink.Errorf(mgerrors.ErrInvalidConfiguration, UnitName, "%s skipped: %v", RuleStereotypeToMetadataProperty, err)
		return nil
	}
	var adv Advanced
	if err := cfg.DecodeAdvanced(&adv); err != nil {
		sink.Errorf(mgerrors.ErrInvalidConfiguration, UnitName, "%s skipped: %v", RuleStereotypeToMetadataProperty, err)
		return nil
	}
	e := &expander{
		model: m,
		sink:  sink,
		defaults: Template{
			TypeName:    cfg.Params.Value(ParamMetadataType),
			Mode:        string(mode),
			NameSuffix:  cfg.Params.Value(ParamMetadataNameSuffix),
			Cardinality: defaultCardinality,
		},
		templates: adv.Templates,
	}
	e.run()
	return nil
}
