package parser

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
	"github.com/jacoelho/modelgraph/pkg/xmlstream"
)

const roadsDoc = `<?xml version="1.0" encoding="UTF-8"?>
<Model version="2.1">
  <packages>
    <Package>
      <id>pkg1</id>
      <name>Roads</name>
      <isSchema>true</isSchema>
      <targetNamespace>urn:roads</targetNamespace>
      <version>1.0</version>
      <classes>
        <Class>
          <id>c1</id>
          <name>Road</name>
          <stereotypes><stereotype>FeatureType</stereotype></stereotypes>
          <descriptors>
            <definition>A road.</definition>
            <example>A1</example>
            <example>M25</example>
          </descriptors>
          <taggedValues>
            <TaggedValue><name>source</name><values><value>osm</value><value>survey</value></values></TaggedValue>
          </taggedValues>
          <profiles>
            <Profile><name>Core</name><parameters><Parameter><name>geometry</name><value>P,C</value></Parameter></parameters></Profile>
          </profiles>
          <diagrams>
            <ImageMetadata><id>img1</id><name>Overview</name><relPathToFile>images/road.png</relPathToFile><width>640</width><height>480</height></ImageMetadata>
          </diagrams>
          <isAbstract>false</isAbstract>
          <supertypes><id>c0</id></supertypes>
          <properties>
            <Property>
              <id>c1.width</id><name>width</name><typeName>Measure</typeName>
              <cardinality>0..1</cardinality><sequenceNumber>2</sequenceNumber>
            </Property>
            <Property>
              <id>c1.lanes</id><name>lanes</name><typeId>c2</typeId>
              <cardinality>1..*</cardinality><isOrdered>true</isOrdered><sequenceNumber>1</sequenceNumber>
            </Property>
          </properties>
          <constraints>
            <OclConstraint>
              <name>positive</name><status>approved</status>
              <text>inv: width &gt; 0</text><sourceType>Road</sourceType>
              <description>checked by the editor</description>
            </OclConstraint>
            <TextConstraint><name>note</name><text>lanes are counted per direction</text><sourceType>ignored</sourceType></TextConstraint>
          </constraints>
        </Class>
        <Class>
          <id>c2</id>
          <name>Lane</name>
          <stereotypes><stereotype>dataType</stereotype></stereotypes>
        </Class>
      </classes>
    </Package>
  </packages>
</Model>`

func newSink() *mgerrors.Sink {
	return mgerrors.NewSink(logr.Discard())
}

func parseString(t *testing.T, doc string) (*model.Model, *mgerrors.Sink) {
	t.Helper()
	sink := newSink()
	m, err := Parse(strings.NewReader(doc), sink)
	require.NoError(t, err)
	return m, sink
}

func TestParseBuildsGraph(t *testing.T) {
	m, sink := parseString(t, roadsDoc)
	assert.Zero(t, sink.Len(), "unexpected diagnostics: %v", sink.Diagnostics())
	assert.Equal(t, "2.1", m.Version)

	pkg, ok := m.Package("pkg1")
	require.True(t, ok)
	assert.True(t, pkg.IsSchema)
	assert.Equal(t, "urn:roads", pkg.TargetNamespace)
	assert.Equal(t, []string{"c1", "c2"}, pkg.ClassIDs())

	road, ok := m.Class("c1")
	require.True(t, ok)
	assert.Equal(t, "pkg1", road.Package)
	assert.Equal(t, model.CategoryFeature, road.Category)
	assert.Equal(t, "A road.", road.Descriptors.Definition)
	assert.Equal(t, []string{"A1", "M25"}, road.Descriptors.Examples)
	assert.Equal(t, []string{"osm", "survey"}, road.TaggedValues.Values("source"))
	core, ok := road.Profiles.Get("Core")
	require.True(t, ok)
	assert.Equal(t, "P,C", core.Params["geometry"])
	require.Len(t, road.Diagrams, 1)
	assert.Equal(t, model.ImageRef{ID: "img1", Name: "Overview", Path: "images/road.png", Width: 640, Height: 480}, road.Diagrams[0])
	assert.Equal(t, []model.Ref{{ID: "c0"}}, road.Supertypes)

	var names []string
	for _, p := range m.PropertiesOf(road) {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"lanes", "width"}, names)

	lanes, _ := m.Property("c1.lanes")
	assert.Equal(t, "c1", lanes.Class)
	assert.Equal(t, model.Ref{ID: "c2"}, lanes.Type)
	assert.Equal(t, model.Multiplicity{MinOccurs: 1, MaxOccurs: model.Unbounded}, lanes.Multiplicity)
	assert.True(t, lanes.Ordered)
	assert.True(t, lanes.Unique)
	width, _ := m.Property("c1.width")
	assert.Equal(t, "Measure", width.Type.Label())

	cons := m.ConstraintsOf(road)
	require.Len(t, cons, 2)
	assert.Equal(t, model.ConstraintOCL, cons[0].Variant)
	assert.Equal(t, "inv: width > 0", cons[0].Text)
	assert.Equal(t, "Road", cons[0].SourceType)
	assert.Equal(t, []string{"checked by the editor"}, cons[0].Comments)
	assert.Equal(t, model.ConstraintText, cons[1].Variant)
	assert.Empty(t, cons[1].SourceType)

	lane, _ := m.Class("c2")
	assert.Equal(t, model.CategoryDataType, lane.Category)
}

func TestParseIdentifierRoundTrip(t *testing.T) {
	m, _ := parseString(t, roadsDoc)
	require.Equal(t, 7, m.Len())
	for _, e := range m.Elements() {
		got, ok := m.Lookup(e.ElementID())
		require.True(t, ok, e.ElementID())
		assert.Same(t, e, got)
	}
}

func TestParseUnknownElementSkipped(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes>
  <Class><id>c1</id><FutureField>x</FutureField><name>Road</name><isLeaf>true</isLeaf></Class>
</classes></Package>`
	m, sink := parseString(t, doc)

	c, ok := m.Class("c1")
	require.True(t, ok)
	assert.Equal(t, "Road", c.Name)
	assert.True(t, c.Leaf)
	assert.Equal(t, "p", c.Package)

	diags := sink.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, string(mgerrors.ErrUnknownElement), diags[0].Code)
	assert.Equal(t, mgerrors.SeverityDebug, diags[0].Severity)
	assert.Equal(t, "FutureField", diags[0].Subject)
	assert.Equal(t, 2, diags[0].Line)
}

func TestParseNestedUnknownSubtree(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name>
  <future><deep><deeper>1</deeper></deep><deep/></future>
  <classes><Class><id>c1</id><name>A</name></Class></classes>
</Package>`
	m, sink := parseString(t, doc)
	_, ok := m.Class("c1")
	assert.True(t, ok)
	assert.Len(t, sink.Diagnostics(), 1)
}

func TestParseUnknownAttributes(t *testing.T) {
	doc := `<Model version="2" generator="ea"><packages>
  <Package><id>p</id><name>P</name><classes>
    <Class color="red"><id>c1</id><name>A</name>
      <future kind="x"><deep attr="y"/></future>
    </Class>
  </classes></Package>
</packages></Model>`
	m, sink := parseString(t, doc)
	assert.Equal(t, "2", m.Version)

	attrs := sink.Diagnostics().WithCode(mgerrors.ErrUnknownAttribute)
	require.Len(t, attrs, 2)
	assert.Equal(t, "generator", attrs[0].Subject)
	assert.Equal(t, "color", attrs[1].Subject)
	assert.Equal(t, 3, attrs[1].Line)
	for _, d := range attrs {
		assert.Equal(t, mgerrors.SeverityDebug, d.Severity)
	}
	assert.Len(t, sink.Diagnostics().WithCode(mgerrors.ErrUnknownElement), 1)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{name: "mismatched end", doc: `<Model><packages></Model>`, want: mgerrors.ErrMalformed},
		{name: "truncated", doc: `<Model><packages><Package><id>p`, want: mgerrors.ErrPrematureEOF},
		{name: "empty", doc: ``, want: mgerrors.ErrPrematureEOF},
		{name: "text outside root", doc: `junk<Model/>`, want: mgerrors.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(strings.NewReader(tt.doc), newSink())
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, m)
		})
	}
}

func TestParseNonNavigableFiltered(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes><Class><id>c</id><name>C</name><properties>
  <Property><id>c.a</id><name>a</name></Property>
  <Property><id>c.b</id><name>b</name><isNavigable>false</isNavigable></Property>
</properties></Class></classes></Package>`
	m, sink := parseString(t, doc)
	c, _ := m.Class("c")
	assert.Equal(t, []string{"c.a"}, c.PropertyIDs())
	_, ok := m.Lookup("c.b")
	assert.False(t, ok)
	require.Len(t, sink.Diagnostics(), 1)
	assert.Equal(t, string(mgerrors.ErrNonNavigableIgnored), sink.Diagnostics()[0].Code)
}

func TestParseSequenceKeys(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes><Class><id>c</id><name>C</name><properties>
  <Property><id>c.a</id><name>a</name><sequenceNumber>1</sequenceNumber></Property>
  <Property><id>c.e</id><name>e</name></Property>
  <Property><id>c.b</id><name>b</name><sequenceNumber>2</sequenceNumber></Property>
  <Property><id>c.c</id><name>c</name><sequenceNumber>1</sequenceNumber></Property>
</properties></Class></classes></Package>`
	m, sink := parseString(t, doc)
	c, _ := m.Class("c")

	var got []string
	for _, p := range m.PropertiesOf(c) {
		got = append(got, p.Name+"="+p.Sequence().String())
	}
	assert.Equal(t, []string{"a=1", "c=1.1", "b=2", "e=3"}, got)

	warnings := sink.Diagnostics().WithCode(mgerrors.ErrDuplicateSequenceKey)
	require.Len(t, warnings, 1)
	assert.Equal(t, mgerrors.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, "C::c", warnings[0].Subject)
}

func TestParseDuplicateIdentifier(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes>
  <Class><id>c</id><name>First</name></Class>
  <Class><id>c</id><name>Second</name></Class>
</classes></Package>`
	m, sink := parseString(t, doc)
	c, _ := m.Class("c")
	assert.Equal(t, "First", c.Name)
	p, _ := m.Package("p")
	assert.Equal(t, []string{"c"}, p.ClassIDs())
	dups := sink.Diagnostics().WithCode(mgerrors.ErrDuplicateID)
	require.Len(t, dups, 1)
	assert.Equal(t, mgerrors.SeverityError, dups[0].Severity)
}

func TestParseProfilesTaggedValue(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes><Class><id>c</id><name>C</name>
  <taggedValues><TaggedValue><name>profiles</name><values><value>A,B[multiplicity=1]</value></values></TaggedValue></taggedValues>
</Class></classes></Package>`
	m, _ := parseString(t, doc)
	c, _ := m.Class("c")
	assert.Equal(t, []string{"A", "B"}, c.Profiles.Names())
	assert.False(t, c.TaggedValues.Has(model.ProfilesTag))
}

func TestParseInvalidValuesWarn(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes><Class><id>c</id><name>C</name>
  <isAbstract>maybe</isAbstract>
  <properties><Property><id>c.a</id><name>a</name><cardinality>many</cardinality></Property></properties>
</Class></classes></Package>`
	m, sink := parseString(t, doc)
	c, _ := m.Class("c")
	assert.False(t, c.Abstract)
	a, _ := m.Property("c.a")
	assert.Equal(t, model.One, a.Multiplicity)
	assert.Len(t, sink.Diagnostics().WithCode(mgerrors.ErrInvalidValue), 2)
}

func TestParseAssociations(t *testing.T) {
	doc := `<Model><packages><Package><id>p</id><name>P</name><classes>
  <Class><id>a</id><name>A</name><properties>
    <Property><id>a.b</id><name>b</name><typeId>b</typeId><isAttribute>false</isAttribute><reversePropertyId>b.a</reversePropertyId><associationId>as</associationId></Property>
  </properties></Class>
  <Class><id>b</id><name>B</name></Class>
</classes></Package></packages>
<associations>
  <Association>
    <id>as</id><name>owns</name>
    <end1 ref="a.b"><Property><id>a.b</id><name>b</name></Property></end1>
    <end2 ref="b.a"><Property><id>b.a</id><name>a</name><typeId>a</typeId><inClassId>b</inClassId><isNavigable>false</isNavigable></Property></end2>
  </Association>
</associations></Model>`
	m, sink := parseString(t, doc)
	assert.Zero(t, sink.Len(), "%v", sink.Diagnostics())

	as, ok := m.Association("as")
	require.True(t, ok)
	assert.Equal(t, model.Ref{ID: "a.b", Name: "b"}, as.End1)
	assert.Equal(t, model.Ref{ID: "b.a", Name: "a"}, as.End2)

	owned, _ := m.Property("a.b")
	assert.True(t, m.IsOwnedByClass(owned))
	assert.False(t, owned.Attribute)

	detached, ok := m.Property("b.a")
	require.True(t, ok)
	assert.False(t, m.IsOwnedByClass(detached))
	assert.Equal(t, "as", detached.Association.ID)
	assert.Equal(t, "b", detached.Class)
}

func TestStringListDepth(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes><Class><id>c</id><name>C</name>
  <stereotypes><stereotype>Union</stereotype><stereotype><i>ignored</i>Mixin</stereotype></stereotypes>
  <supertypes>s1</supertypes>
  <subtypes><id>x</id><id>y</id></subtypes>
</Class></classes></Package>`
	m, _ := parseString(t, doc)
	c, _ := m.Class("c")
	assert.Equal(t, model.Stereotypes{model.StereotypeUnion, "ignoredmixin"}, c.Stereotypes)
	assert.Equal(t, []model.Ref{{ID: "s1"}}, c.Supertypes)
	assert.Equal(t, []model.Ref{{ID: "x"}, {ID: "y"}}, c.Subtypes)
}

func TestParseTaggedValueKeepsEmptyValues(t *testing.T) {
	doc := `<Package><id>p</id><name>P</name><classes><Class><id>c</id><name>C</name>
  <taggedValues><TaggedValue><name>alias</name>
    <values><value>a</value><value/><value> </value><value>d</value></values>
  </TaggedValue></taggedValues>
</Class></classes></Package>`
	m, _ := parseString(t, doc)
	c, _ := m.Class("c")
	assert.Equal(t, []string{"a", "", "", "d"}, c.TaggedValues.Values("alias"))
}

func TestBuilderPush(t *testing.T) {
	m := model.New()
	b := NewBuilder(m, nil)
	start := func(name string) xmlstream.Event {
		return xmlstream.Event{Kind: xmlstream.EventStartElement, Name: xmlstream.QName{Local: name}}
	}
	end := func(name string) xmlstream.Event {
		return xmlstream.Event{Kind: xmlstream.EventEndElement, Name: xmlstream.QName{Local: name}}
	}
	text := func(s string) xmlstream.Event {
		return xmlstream.Event{Kind: xmlstream.EventCharData, Text: s}
	}
	events := []xmlstream.Event{
		start("Package"),
		start("id"), text("p"), end("id"),
		start("name"), text("Pkg"), end("name"),
		end("Package"),
	}
	require.Error(t, b.Finish())
	for _, ev := range events[:3] {
		require.NoError(t, b.Push(ev))
	}
	require.ErrorIs(t, b.Finish(), mgerrors.ErrPrematureEOF)
	for _, ev := range events[3:] {
		require.NoError(t, b.Push(ev))
	}
	require.NoError(t, b.Finish())
	require.ErrorIs(t, b.Push(start("Package")), mgerrors.ErrMalformed)

	p, ok := b.Model().Package("p")
	require.True(t, ok)
	assert.Equal(t, "Pkg", p.Name)
}
