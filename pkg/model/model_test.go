package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jacoelho/modelgraph/pkg/seqkey"
)

func newClass(t *testing.T, m *Model, pkg *Package, id, name string) *Class {
	t.Helper()
	c := &Class{Entity: Entity{ID: id, Name: name}, Package: pkg.ID, Category: CategoryObject}
	require.NoError(t, m.AddClass(c))
	return c
}

func newProp(t *testing.T, m *Model, c *Class, id, name, key string) *Property {
	t.Helper()
	p := NewProperty(id, name)
	if key != "" {
		p.SetSequence(seqkey.MustParse(key))
	}
	require.NoError(t, m.AddProperty(c, p))
	return p
}

func sampleModel(t *testing.T) (*Model, *Package) {
	t.Helper()
	m := New()
	pkg := &Package{Entity: Entity{ID: "pkg", Name: "Roads"}, IsSchema: true}
	require.NoError(t, m.AddPackage(pkg))
	return m, pkg
}

func TestRegistryRoundTrip(t *testing.T) {
	m, pkg := sampleModel(t)
	c := newClass(t, m, pkg, "c1", "Road")
	p := newProp(t, m, c, "p1", "width", "")

	for _, e := range []Element{pkg, c, p} {
		got, ok := m.Lookup(e.ElementID())
		require.True(t, ok)
		assert.Same(t, e, got)
	}
	assert.Equal(t, []string{"c1"}, pkg.ClassIDs())
	assert.Equal(t, 3, m.Len())

	err := m.AddClass(&Class{Entity: Entity{ID: "p1", Name: "Clash"}})
	require.ErrorIs(t, err, ErrDuplicateID)
	got, _ := m.Lookup("p1")
	assert.Same(t, p, got, "duplicate registration keeps the first entity")
}

func TestPropertyOrdering(t *testing.T) {
	m, pkg := sampleModel(t)
	c := newClass(t, m, pkg, "c1", "Road")
	newProp(t, m, c, "p3", "c", "3")
	newProp(t, m, c, "p1", "a", "1")
	newProp(t, m, c, "p2", "b", "2")
	auto := newProp(t, m, c, "p4", "d", "")
	assert.Equal(t, "4", auto.Sequence().String())

	err := m.AddProperty(c, func() *Property {
		p := NewProperty("p5", "dup")
		p.SetSequence(seqkey.MustParse("2"))
		return p
	}())
	require.ErrorIs(t, err, ErrDuplicateSequence)
	_, ok := m.Lookup("p5")
	assert.False(t, ok)

	a, _ := m.Property("p1")
	inserted := NewProperty("p6", "aMeta")
	require.NoError(t, m.InsertPropertyAfter(c, inserted, a))
	assert.Equal(t, "1.1", inserted.Sequence().String())

	var names []string
	var prev seqkey.Key
	for i, p := range m.PropertiesOf(c) {
		if i > 0 {
			assert.True(t, prev.Less(p.Sequence()))
		}
		prev = p.Sequence()
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"a", "aMeta", "b", "c", "d"}, names)

	d, _ := m.Property("p4")
	require.ErrorIs(t, m.Resequence(d, seqkey.MustParse("3")), ErrDuplicateSequence)
	require.NoError(t, m.Resequence(d, seqkey.MustParse("0")))
	assert.Equal(t, "d", m.PropertiesOf(c)[0].Name)
}

func TestNavigation(t *testing.T) {
	m, pkg := sampleModel(t)
	a := newClass(t, m, pkg, "a", "A")
	b := newClass(t, m, pkg, "b", "B")
	cc := newClass(t, m, pkg, "c", "C")
	d := newClass(t, m, pkg, "d", "D")
	m.Link(a, b)
	m.Link(a, cc)
	m.Link(b, d)
	m.Link(cc, d)
	d.Supertypes = append(d.Supertypes, Ref{ID: "ghost", Name: "Ghost"})

	assert.ElementsMatch(t, []*Class{b, cc}, m.Supertypes(d))
	assert.Equal(t, []*Class{b, cc, a}, m.AllSupertypes(d))
	assert.Equal(t, []*Class{b, cc, d}, m.AllSubtypes(a))

	p := newProp(t, m, a, "pa", "toD", "")
	p.Type = RefTo("d", "D")
	vt, ok := m.ValueType(p)
	require.True(t, ok)
	assert.Same(t, d, vt)

	schema, ok := m.SchemaOf(d)
	require.True(t, ok)
	assert.Same(t, pkg, schema)
	found, ok := m.ClassByName(pkg, "C")
	require.True(t, ok)
	assert.Same(t, cc, found)
}

func TestSelection(t *testing.T) {
	m := New()
	root := &Package{Entity: Entity{ID: "root", Name: "Model"}}
	s1 := &Package{Entity: Entity{ID: "s1", Name: "One"}, IsSchema: true, Parent: "root"}
	s2 := &Package{Entity: Entity{ID: "s2", Name: "Two"}, TargetNamespace: "urn:two", Parent: "root"}
	require.NoError(t, m.AddPackage(root))
	require.NoError(t, m.AddPackage(s1))
	require.NoError(t, m.AddPackage(s2))
	c1 := newClass(t, m, s1, "c1", "X")
	c2 := newClass(t, m, s2, "c2", "Y")

	assert.Equal(t, []*Package{root}, m.Roots())
	assert.Equal(t, []*Package{s1, s2}, m.SelectedSchemas())
	assert.True(t, m.InSelectedSchema(c1))

	scope := m.SelectedScope()
	m.SelectSchemas("s2")
	assert.True(t, scope.Contains(c1), "captured before the selection changed")
	assert.False(t, m.SelectedScope().Contains(c1))
	assert.Equal(t, []*Package{s2}, m.SelectedSchemas())
	assert.False(t, m.InSelectedSchema(c1))
	assert.True(t, m.InSelectedSchema(c2))

	got, ok := m.FindClassByName("Y")
	require.True(t, ok)
	assert.Same(t, c2, got)
}

func TestCloneIsDeepAndEqual(t *testing.T) {
	m, pkg := sampleModel(t)
	c := newClass(t, m, pkg, "c1", "Road")
	c.TaggedValues.Set("doc", "x")
	p := newProp(t, m, c, "p1", "width", "")
	p.Profiles = Profiles{{Name: "A", Params: map[string]string{"k": "v"}}}
	require.NoError(t, m.AddConstraint(c, &Constraint{Name: "inv", Text: "true", Variant: ConstraintOCL}))

	cp := m.Clone()
	require.True(t, Equal(m, cp))
	assert.Equal(t, m, cp)

	cc, _ := cp.Class("c1")
	cc.TaggedValues.Set("doc", "changed")
	cp1, _ := cp.Property("p1")
	cp1.Profiles[0].Params["k"] = "w"
	assert.Equal(t, "x", c.TaggedValues.Get("doc"))
	assert.Equal(t, "v", p.Profiles[0].Params["k"])
	assert.False(t, Equal(m, cp))
}

func TestWithoutCascadesAndScrubs(t *testing.T) {
	m, pkg := sampleModel(t)
	a := newClass(t, m, pkg, "a", "A")
	b := newClass(t, m, pkg, "b", "B")
	ab := newClass(t, m, pkg, "ab", "AB")
	m.Link(a, ab)

	roleB := newProp(t, m, a, "a.b", "b", "")
	roleB.Type = RefTo("b", "B")
	roleB.Association = RefTo("assoc", "")
	roleB.Reverse = RefTo("b.a", "a")
	roleA := NewProperty("b.a", "a")
	roleA.Class = "b"
	roleA.Navigable = false
	roleA.Association = RefTo("assoc", "")
	require.NoError(t, m.AddDetachedProperty(roleA))
	require.NoError(t, m.AddAssociation(&Association{
		Entity:     Entity{ID: "assoc"},
		End1:       RefTo("a.b", "b"),
		End2:       RefTo("b.a", "a"),
		AssocClass: RefTo("ab", "AB"),
	}))
	abProp := newProp(t, m, ab, "ab.x", "x", "")
	usesAB := newProp(t, m, b, "b.ab", "link", "")
	usesAB.Type = RefTo("ab", "AB")

	next := m.Without(sets.New("assoc", "ab"))

	for _, id := range []string{"assoc", "ab", "b.a", abProp.ID} {
		_, ok := next.Lookup(id)
		assert.False(t, ok, id)
	}
	na, _ := next.Class("a")
	assert.Empty(t, na.Subtypes)
	np, _ := next.Property("a.b")
	assert.True(t, np.Association.IsZero())
	assert.True(t, np.Reverse.IsZero())
	nu, _ := next.Property("b.ab")
	assert.False(t, nu.Type.Resolved)
	assert.Equal(t, "AB", nu.Type.Label())
	npkg, _ := next.Package("pkg")
	assert.Equal(t, []string{"a", "b"}, npkg.ClassIDs())

	_, ok := m.Lookup("assoc")
	assert.True(t, ok, "source model unchanged")

	m.ReplaceWith(next)
	_, ok = m.Lookup("ab")
	assert.False(t, ok)
}

func TestReportOnce(t *testing.T) {
	m := New()
	assert.True(t, m.ReportOnce("k"))
	assert.False(t, m.ReportOnce("k"))
	assert.False(t, m.Clone().ReportOnce("k"))
}
