package diff

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/parser"
	"github.com/jacoelho/modelgraph/internal/semanticresolve"
	"github.com/jacoelho/modelgraph/pkg/model"
)

const base = `<Model><packages><Package><id>p</id><name>S</name><isSchema>true</isSchema><version>1.0</version>
<packages><Package><id>p.sub</id><name>Sub</name></Package></packages>
<classes>
  <Class><id>Road</id><name>Road</name><stereotypes><stereotype>featureType</stereotype></stereotypes>
    <descriptors><documentation>A road.</documentation><globalIdentifier>gi-road</globalIdentifier></descriptors>
    <taggedValues><TaggedValue><name>length</name><values><value>10</value></values></TaggedValue></taggedValues>
    <properties>
      <Property><id>r.w</id><name>width</name><typeName>Real</typeName><cardinality>1</cardinality></Property>
      <Property><id>r.n</id><name>name</name><typeName>CharacterString</typeName></Property>
    </properties>
    <constraints><TextConstraint><name>inv</name><text>width &gt; 0</text></TextConstraint></constraints>
  </Class>
  <Class><id>Colour</id><name>Colour</name><stereotypes><stereotype>enumeration</stereotype></stereotypes><properties>
    <Property><id>c.r</id><name>red</name></Property>
  </properties></Class>
</classes></Package></packages></Model>`

func load(t *testing.T, doc string) *model.Model {
	t.Helper()
	sink := mgerrors.NewSink(logr.Discard())
	m, err := parser.Parse(strings.NewReader(doc), sink)
	require.NoError(t, err)
	semanticresolve.Resolve(m, sink)
	return m
}

func compare(t *testing.T, ref, cur *model.Model) *Result {
	t.Helper()
	results := Models(ref, cur)
	require.Len(t, results, 1)
	return results[0]
}

func TestIdenticalSnapshotsHaveNoDifferences(t *testing.T) {
	m := load(t, base)
	r := compare(t, m, m.Clone())
	assert.True(t, r.Empty(), "%v", r.Differences)

	r = compare(t, m.Clone(), m)
	assert.True(t, r.Empty(), "%v", r.Differences)
}

func TestDifferences(t *testing.T) {
	changed := strings.NewReplacer(
		`<version>1.0</version>`, `<version>1.1</version>`,
		`<documentation>A road.</documentation>`, `<documentation>A public road.</documentation>`,
		`<cardinality>1</cardinality>`, `<cardinality>0..1</cardinality>`,
		`<typeName>CharacterString</typeName>`, `<typeName>LocalisedCharacterString</typeName>`,
		`<value>10</value>`, `<value>12</value>`,
		`<Property><id>c.r</id><name>red</name></Property>`, `<Property><id>c.g</id><name>green</name></Property>`,
		`<name>Sub</name>`, `<name>Other</name>`,
	).Replace(base)

	r := compare(t, load(t, base), load(t, changed))
	got := sets.New[string]()
	for _, d := range r.Differences {
		got.Insert(d.String())
	}
	want := []string{
		`S: change VERSION "1.0" -> "1.1"`,
		`S: delete SUBPACKAGE Sub`,
		`S: insert SUBPACKAGE Other`,
		`S::Road: change DOCUMENTATION "A road." -> "A public road."`,
		`S::Road: change TAG length "10" -> "12"`,
		`S::Road::width: change MULTIPLICITY "1" -> "0..1"`,
		`S::Road::name: change VALUETYPE "CharacterString" -> "LocalisedCharacterString"`,
		`S::Colour::red: delete ENUM`,
		`S::Colour::green: insert ENUM`,
	}
	assert.ElementsMatch(t, want, sets.List(got))
	assert.Len(t, r.Differences, len(want))

	for i := 1; i < len(r.Differences); i++ {
		assert.LessOrEqual(t, compareElements(r.Differences[i-1].Element, r.Differences[i].Element), 0, "sorted")
	}
}

func TestFilterKeepsVersion(t *testing.T) {
	changed := strings.NewReplacer(
		`<version>1.0</version>`, `<version>2.0</version>`,
		`<cardinality>1</cardinality>`, `<cardinality>0..1</cardinality>`,
		`<documentation>A road.</documentation>`, `<documentation>Changed.</documentation>`,
	).Replace(base)
	r := compare(t, load(t, base), load(t, changed))

	kinds, err := ParseKinds([]string{"name", "documentation"})
	require.NoError(t, err)
	filtered := r.Filter(kinds)
	require.Len(t, filtered.Differences, 2)
	assert.Equal(t, KindVersion, filtered.Differences[0].Kind)
	assert.Equal(t, KindDocumentation, filtered.Differences[1].Kind)

	assert.True(t, r.Filter(sets.New(KindAbstract)).Differences[0].Kind == KindVersion)
}

func TestRenameByGlobalIdentifier(t *testing.T) {
	changed := strings.NewReplacer(`<name>Road</name>`, `<name>Street</name>`).Replace(base)
	r := compare(t, load(t, base), load(t, changed))
	require.Len(t, r.Differences, 1)
	d := r.Differences[0]
	assert.Equal(t, KindName, d.Kind)
	assert.Equal(t, Element{Schema: "S", Class: "Street"}, d.Element)
	assert.Equal(t, "Road", d.From)
	assert.Equal(t, "Street", d.To)
}

func TestDuplicateClassNames(t *testing.T) {
	withClasses := func(classes string) string {
		return strings.Replace(base, `</classes></Package></packages>`, classes+`</classes></Package></packages>`, 1)
	}
	dup := func(id, doc string) string {
		return `<Class><id>` + id + `</id><name>Dup</name><descriptors><documentation>` + doc + `</documentation></descriptors></Class>`
	}
	ref := load(t, withClasses(dup("d1", "first")+dup("d2", "old")))

	assert.True(t, compare(t, ref, ref.Clone()).Empty())

	r := compare(t, ref, load(t, withClasses(dup("d2", "new"))))
	var got []string
	for _, d := range r.Differences {
		got = append(got, d.String())
	}
	assert.ElementsMatch(t, []string{
		`S::Dup: delete CLASS`,
		`S::Dup: change DOCUMENTATION "old" -> "new"`,
	}, got)
}

func TestClassesConstraintsAndCategory(t *testing.T) {
	changed := strings.NewReplacer(
		`<stereotype>featureType</stereotype>`, `<stereotype>type</stereotype>`,
		`<text>width &gt; 0</text>`, `<text>width &gt;= 0</text>`,
		`<name>Colour</name>`, `<name>Shade</name>`,
	).Replace(base)
	r := compare(t, load(t, base), load(t, changed))

	byElement := r.ByElement()
	road := byElement[Element{Schema: "S", Class: "Road"}]
	var kinds []Kind
	for _, d := range road {
		kinds = append(kinds, d.Kind)
	}
	assert.ElementsMatch(t, []Kind{KindCategory, KindConstraint, KindStereotype, KindStereotype}, kinds)

	assert.Equal(t, OpDelete, byElement[Element{Schema: "S", Class: "Colour"}][0].Op)
	assert.Equal(t, OpInsert, byElement[Element{Schema: "S", Class: "Shade"}][0].Op)
	assert.Equal(t, []Element{
		{Schema: "S", Class: "Colour"},
		{Schema: "S", Class: "Road"},
		{Schema: "S", Class: "Shade"},
	}, r.Elements())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"NAME":              KindName,
		"valueType":         KindValueType,
		"value_type":        KindValueType,
		"global-identifier": KindGlobalIdentifier,
		"version":           KindVersion,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKinds([]string{"name", "colour"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestReport(t *testing.T) {
	changed := strings.NewReplacer(`<version>1.0</version>`, `<version>1.1</version>`).Replace(base)
	r := compare(t, load(t, base), load(t, changed))
	sink := mgerrors.NewSink(logr.Discard())
	r.Report(sink, mgerrors.SeverityInfo)
	diags := sink.Diagnostics().WithCode(mgerrors.ErrModelDifference)
	require.Len(t, diags, 1)
	assert.Equal(t, "S", diags[0].Subject)
	assert.Equal(t, mgerrors.SeverityInfo, diags[0].Severity)
}
