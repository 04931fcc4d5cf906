package propertymetadata

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/parser"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/internal/semanticresolve"
	"github.com/jacoelho/modelgraph/pkg/model"
)

const doc = `<Model><packages><Package><id>p</id><name>S</name><isSchema>true</isSchema><classes>
  <Class><id>Road</id><name>Road</name><stereotypes><stereotype>featureType</stereotype></stereotypes><properties>
    <Property><id>r.w</id><name>width</name><typeName>Real</typeName><sequenceNumber>1</sequenceNumber>
      <stereotypes><stereotype>propertyMetadata</stereotype></stereotypes></Property>
    <Property><id>r.s</id><name>surface</name><typeName>CharacterString</typeName><sequenceNumber>2</sequenceNumber>
      <stereotypes><stereotype>propertyMetadata</stereotype></stereotypes>
      <taggedValues><TaggedValue><name>metadataType</name><values><value>Source</value></values></TaggedValue></taggedValues>
    </Property>
    <Property><id>r.n</id><name>name</name><typeName>CharacterString</typeName><sequenceNumber>3</sequenceNumber></Property>
  </properties></Class>
  <Class><id>Quality</id><name>Quality</name><stereotypes><stereotype>dataType</stereotype></stereotypes></Class>
  <Class><id>Source</id><name>Source</name><stereotypes><stereotype>featureType</stereotype></stereotypes></Class>
</classes></Package></packages></Model>`

func load(t *testing.T) *model.Model {
	t.Helper()
	sink := mgerrors.NewSink(logr.Discard())
	m, err := parser.Parse(strings.NewReader(doc), sink)
	require.NoError(t, err)
	semanticresolve.Resolve(m, sink)
	return m
}

func run(t *testing.T, m *model.Model, cfg *pipeline.StepConfig) *mgerrors.Sink {
	t.Helper()
	sink := mgerrors.NewSink(logr.Discard())
	require.NoError(t, pipeline.Apply(New(), m, cfg, sink))
	return sink
}

func names(m *model.Model, c *model.Class) []string {
	var out []string
	for _, p := range m.PropertiesOf(c) {
		out = append(out, p.Name)
	}
	return out
}

func TestAttributeMode(t *testing.T) {
	m := load(t)
	cfg := pipeline.NewStepConfig([]pipeline.Rule{RuleStereotypeToMetadataProperty},
		map[string]string{ParamMetadataType: "Quality"})
	run(t, m, cfg)

	road, _ := m.Class("Road")
	assert.Equal(t, []string{"width", "widthMetadata", "surface", "surfaceMetadata", "name"}, names(m, road))

	wm, ok := m.PropertyByName(road, "widthMetadata")
	require.True(t, ok)
	assert.True(t, wm.Attribute)
	assert.Equal(t, model.RefTo("Quality", "Quality"), wm.Type)
	assert.Equal(t, model.One, wm.Multiplicity)
	assert.True(t, strings.HasPrefix(wm.ID, "prop-"))

	sm, _ := m.PropertyByName(road, "surfaceMetadata")
	assert.Equal(t, "Source", sm.Type.Label(), "tag wins over parameter")

	w, _ := m.Property("r.w")
	assert.False(t, w.Stereotypes.Has(model.StereotypePropertyMetadata))
	assert.Empty(t, m.Associations())

	snapshot := m.Clone()
	run(t, m, cfg)
	assert.True(t, model.Equal(snapshot, m), "second run changes nothing")
}

func TestAssociationMode(t *testing.T) {
	m := load(t)
	cfg := pipeline.NewStepConfig([]pipeline.Rule{RuleStereotypeToMetadataProperty}, map[string]string{
		ParamMetadataType:       "Quality",
		ParamMetadataMode:       string(ModeAssociation),
		ParamMetadataNameSuffix: "Meta",
	})
	run(t, m, cfg)

	road, _ := m.Class("Road")
	sm, ok := m.PropertyByName(road, "surfaceMeta")
	require.True(t, ok)
	assert.False(t, sm.Attribute)
	require.True(t, sm.Association.Resolved)

	a, ok := m.Association(sm.Association.ID)
	require.True(t, ok)
	assert.Equal(t, sm.ID, a.End1.ID)

	reverse, ok := m.ReverseProperty(sm)
	require.True(t, ok, "referenceable metadata type gets a reverse role")
	assert.Equal(t, "road", reverse.Name)
	assert.False(t, reverse.Navigable)
	assert.Equal(t, "Source", reverse.Class)
	assert.False(t, m.IsOwnedByClass(reverse))
	assert.Equal(t, a.End2.ID, reverse.ID)

	wm, _ := m.PropertyByName(road, "widthMeta")
	_, ok = m.ReverseProperty(wm)
	assert.False(t, ok, "data type metadata has no reverse role")
	wa, _ := m.Association(wm.Association.ID)
	assert.True(t, wa.End2.IsZero())
}

func TestTemplates(t *testing.T) {
	m := load(t)
	cfg := pipeline.NewStepConfig([]pipeline.Rule{RuleStereotypeToMetadataProperty},
		map[string]string{ParamMetadataType: "Quality"})
	adv, err := json.Marshal(Advanced{Templates: []Template{
		{TypeName: "Source", Mode: "association", NameSuffix: "Source", Cardinality: "0..*"},
	}})
	require.NoError(t, err)
	cfg.Advanced = adv
	run(t, m, cfg)

	road, _ := m.Class("Road")
	ss, ok := m.PropertyByName(road, "surfaceSource")
	require.True(t, ok)
	assert.False(t, ss.Attribute)
	assert.True(t, ss.Multiplicity.IsMultiValued())

	wm, ok := m.PropertyByName(road, "widthMetadata")
	require.True(t, ok)
	assert.True(t, wm.Attribute)
}

func TestConfigurationProblems(t *testing.T) {
	t.Run("invalid mode", func(t *testing.T) {
		m := load(t)
		before := m.Clone()
		sink := run(t, m, pipeline.NewStepConfig([]pipeline.Rule{RuleStereotypeToMetadataProperty},
			map[string]string{ParamMetadataMode: "sideways"}))
		assert.True(t, model.Equal(before, m))
		assert.Len(t, sink.Diagnostics().WithCode(mgerrors.ErrInvalidConfiguration), 1)
	})

	t.Run("missing metadata type", func(t *testing.T) {
		m := load(t)
		sink := run(t, m, pipeline.NewStepConfig([]pipeline.Rule{RuleStereotypeToMetadataProperty}, nil))
		road, _ := m.Class("Road")
		assert.Equal(t, []string{"width", "surface", "surfaceMetadata", "name"}, names(m, road))
		warnings := sink.Diagnostics().Filter(mgerrors.SeverityWarning)
		require.Len(t, warnings, 1)
		assert.Equal(t, "Road::width", warnings[0].Subject)
		w, _ := m.Property("r.w")
		assert.True(t, w.Stereotypes.Has(model.StereotypePropertyMetadata))
	})

	t.Run("unknown association target", func(t *testing.T) {
		m := load(t)
		sink := run(t, m, pipeline.NewStepConfig([]pipeline.Rule{RuleStereotypeToMetadataProperty}, map[string]string{
			ParamMetadataType: "Missing",
			ParamMetadataMode: string(ModeAssociation),
		}))
		assert.Len(t, sink.Diagnostics().WithCode(mgerrors.ErrUnresolvedReference), 1)
		road, _ := m.Class("Road")
		_, ok := m.PropertyByName(road, "widthMetadata")
		assert.False(t, ok)
	})
}

func TestNoOpWithoutRules(t *testing.T) {
	m := load(t)
	before := m.Clone()
	run(t, m, pipeline.NewStepConfig(nil, map[string]string{ParamMetadataType: "Quality"}))
	assert.True(t, model.Equal(before, m))
}
