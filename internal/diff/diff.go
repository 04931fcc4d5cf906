// Package diff compares two snapshots of an application schema.
//
// Classes are matched by name within the schema and properties by name
// within matched classes. A class without a name match is paired with an
// unmatched class sharing its global identifier, which is reported as a
// rename. Everything left unmatched is reported as inserted or deleted.
package diff

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Element identifies a compared schema, class or property by name.
type Element struct {
	Schema   string
	Class    string
	Property string
}

// String returns the qualified name, such as "Schema::Class::property".
func (e Element) String() string {
	parts := []string{e.Schema}
	if e.Class != "" {
		parts = append(parts, e.Class)
	}
	if e.Property != "" {
		parts = append(parts, e.Property)
	}
	return strings.Join(parts, "::")
}

func compareElements(a, b Element) int {
	return cmp.Or(
		cmp.Compare(a.Schema, b.Schema),
		cmp.Compare(a.Class, b.Class),
		cmp.Compare(a.Property, b.Property),
	)
}

// Difference is one typed difference of an element. Subject names the
// tag, stereotype, profile, supertype, constraint or sub-package concerned,
// if any. From and To hold the compared values.
type Difference struct {
	Element Element
	Subject string
	From    string
	To      string
	Kind    Kind
	Op      Operation
}

// String describes the difference on one line.
func (d Difference) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", d.Element, d.Op, d.Kind)
	if d.Subject != "" {
		fmt.Fprintf(&b, " %s", d.Subject)
	}
	switch d.Op {
	case OpChange:
		fmt.Fprintf(&b, " %q -> %q", d.From, d.To)
	case OpInsert:
		if d.To != "" {
			fmt.Fprintf(&b, " %q", d.To)
		}
	case OpDelete:
		if d.From != "" {
			fmt.Fprintf(&b, " %q", d.From)
		}
	}
	return b.String()
}

// Result holds the sorted differences between two snapshots of a schema.
type Result struct {
	Schema      string
	Differences []Difference
}

// Empty reports whether no difference was found.
func (r *Result) Empty() bool {
	return len(r.Differences) == 0
}

// Filter returns the differences of the given kinds. Version differences
// are always kept.
func (r *Result) Filter(kinds sets.Set[Kind]) *Result {
	out := &Result{Schema: r.Schema}
	for _, d := range r.Differences {
		if d.Kind == KindVersion || kinds.Has(d.Kind) {
			out.Differences = append(out.Differences, d)
		}
	}
	return out
}

// ByElement groups the differences by element.
func (r *Result) ByElement() map[Element][]Difference {
	out := make(map[Element][]Difference)
	for _, d := range r.Differences {
		out[d.Element] = append(out[d.Element], d)
	}
	return out
}

// Elements returns the elements with differences, sorted.
func (r *Result) Elements() []Element {
	elems := slices.Collect(maps.Keys(r.ByElement()))
	slices.SortFunc(elems, compareElements)
	return elems
}

// Report records every difference in sink.
func (r *Result) Report(sink *mgerrors.Sink, severity mgerrors.Severity) {
	for _, d := range r.Differences {
		sink.Addf(mgerrors.ErrModelDifference, severity, d.Element.String(), "%s", d)
	}
}

// Models compares every selected schema of ref with the schema of the same
// name in cur. Schemas missing from cur are skipped.
func Models(ref, cur *model.Model) []*Result {
	var out []*Result
	for _, schema := range ref.SelectedSchemas() {
		other, ok := cur.SchemaByName(schema.Name)
		if !ok {
			continue
		}
		out = append(out, Schemas(ref, schema, cur, other))
	}
	return out
}

// Schemas compares schema refSchema of ref with curSchema of cur. Inserted
// elements exist only in cur, deleted elements only in ref.
func Schemas(ref *model.Model, refSchema *model.Package, cur *model.Model, curSchema *model.Package) *Result {
	d := &differ{ref: ref, cur: cur, schema: curSchema.Name}
	d.schemas(refSchema, curSchema)
	slices.SortStableFunc(d.out, func(a, b Difference) int {
		return cmp.Or(
			compareElements(a.Element, b.Element),
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Subject, b.Subject),
			cmp.Compare(a.Op, b.Op),
		)
	})
	return &Result{Schema: curSchema.Name, Differences: d.out}
}

type differ struct {
	ref    *model.Model
	cur    *model.Model
	schema string
	out    []Difference
}

func (d *differ) add(diff Difference) {
	d.out = append(d.out, diff)
}

func (d *differ) schemas(x, y *model.Package) {
	el := Element{Schema: d.schema}
	if x.Version != y.Version {
		d.add(Difference{Element: el, Kind: KindVersion, Op: OpChange, From: x.Version, To: y.Version})
	}
	if x.Name != y.Name {
		d.add(Difference{Element: el, Kind: KindName, Op: OpChange, From: x.Name, To: y.Name})
	}
	d.entity(el, &x.Entity, &y.Entity)
	d.names(el, KindSubpackage, subPackageNames(d.ref, x), subPackageNames(d.cur, y))
	d.classes(x, y)
}

func subPackageNames(m *model.Model, p *model.Package) []string {
	var out []string
	var visit func(*model.Package)
	visit = func(cur *model.Package) {
		for _, sub := range m.SubPackages(cur) {
			out = append(out, sub.Name)
			visit(sub)
		}
	}
	visit(p)
	return out
}

// classes pairs the classes of x and y by name. Classes sharing a name are
// paired by identifier first and then in document order; leftovers are
// matched by global identifier or reported as deleted or inserted.
func (d *differ) classes(x, y *model.Package) {
	curClasses := d.cur.ClassesIn(y)
	curByName := make(map[string][]*model.Class)
	for _, c := range curClasses {
		curByName[c.Name] = append(curByName[c.Name], c)
	}

	paired := sets.New[string]()
	var unmatched []*model.Class
	for _, c := range d.ref.ClassesIn(x) {
		candidates := curByName[c.Name]
		if len(candidates) == 0 {
			unmatched = append(unmatched, c)
			continue
		}
		i := max(slices.IndexFunc(candidates, func(o *model.Class) bool { return o.ID == c.ID }), 0)
		other := candidates[i]
		curByName[c.Name] = slices.Delete(candidates, i, i+1)
		paired.Insert(other.ID)
		d.class(c, other)
	}

	var added []*model.Class
	for _, c := range curClasses {
		if !paired.Has(c.ID) {
			added = append(added, c)
		}
	}

	for _, c := range unmatched {
		if i := renamed(c, added); i >= 0 {
			other := added[i]
			added = slices.Delete(added, i, i+1)
			d.add(Difference{Element: Element{Schema: d.schema, Class: other.Name}, Kind: KindName, Op: OpChange, From: c.Name, To: other.Name})
			d.class(c, other)
			continue
		}
		d.add(Difference{Element: Element{Schema: d.schema, Class: c.Name}, Kind: KindClass, Op: OpDelete})
	}
	for _, c := range added {
		d.add(Difference{Element: Element{Schema: d.schema, Class: c.Name}, Kind: KindClass, Op: OpInsert})
	}
}

func renamed(c *model.Class, candidates []*model.Class) int {
	gi := c.Descriptors.GlobalIdentifier
	if gi == "" {
		return -1
	}
	return slices.IndexFunc(candidates, func(o *model.Class) bool {
		return o.Descriptors.GlobalIdentifier == gi
	})
}

func isEnumeration(c *model.Class) bool {
	return c.Category == model.CategoryEnumeration || c.Category == model.CategoryCodeList
}

func (d *differ) class(x, y *model.Class) {
	el := Element{Schema: d.schema, Class: y.Name}
	d.entity(el, &x.Entity, &y.Entity)
	if x.Category != y.Category {
		d.add(Difference{Element: el, Kind: KindCategory, Op: OpChange, From: x.Category.String(), To: y.Category.String()})
	}
	if x.Abstract != y.Abstract {
		d.add(Difference{Element: el, Kind: KindAbstract, Op: OpChange,
			From: strconv.FormatBool(x.Abstract), To: strconv.FormatBool(y.Abstract)})
	}
	d.names(el, KindSupertype, refLabels(x.Supertypes), refLabels(y.Supertypes))
	d.constraints(el, d.ref.ConstraintsOf(x), d.cur.ConstraintsOf(y))
	d.properties(el, x, y)
}

func refLabels(refs []model.Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Label())
	}
	return out
}

func (d *differ) properties(el Element, x, y *model.Class) {
	kind := KindProperty
	if isEnumeration(x) || isEnumeration(y) {
		kind = KindEnum
	}
	curProps := d.cur.PropertiesOf(y)
	seen := sets.New[string]()
	for _, p := range d.ref.PropertiesOf(x) {
		if seen.Has(p.Name) {
			continue
		}
		seen.Insert(p.Name)
		pel := el
		pel.Property = p.Name
		other, ok := d.cur.PropertyByName(y, p.Name)
		if !ok {
			d.add(Difference{Element: pel, Kind: kind, Op: OpDelete})
			continue
		}
		d.property(pel, p, other)
	}
	for _, p := range curProps {
		if seen.Has(p.Name) {
			continue
		}
		seen.Insert(p.Name)
		pel := el
		pel.Property = p.Name
		d.add(Difference{Element: pel, Kind: kind, Op: OpInsert})
	}
}

func (d *differ) property(el Element, x, y *model.Property) {
	d.entity(el, &x.Entity, &y.Entity)
	if x.Multiplicity != y.Multiplicity {
		d.add(Difference{Element: el, Kind: KindMultiplicity, Op: OpChange, From: x.Multiplicity.String(), To: y.Multiplicity.String()})
	}
	if x.Type.Label() != y.Type.Label() {
		d.add(Difference{Element: el, Kind: KindValueType, Op: OpChange, From: x.Type.Label(), To: y.Type.Label()})
	}
}

func (d *differ) constraints(el Element, xs, ys []*model.Constraint) {
	byName := make(map[string]*model.Constraint, len(ys))
	for _, c := range ys {
		byName[c.Name] = c
	}
	seen := sets.New[string]()
	for _, c := range xs {
		seen.Insert(c.Name)
		other, ok := byName[c.Name]
		switch {
		case !ok:
			d.add(Difference{Element: el, Kind: KindConstraint, Op: OpDelete, Subject: c.Name, From: c.Text})
		case !c.SameDeclaration(other):
			d.add(Difference{Element: el, Kind: KindConstraint, Op: OpChange, Subject: c.Name, From: c.Text, To: other.Text})
		}
	}
	for _, c := range ys {
		if !seen.Has(c.Name) {
			seen.Insert(c.Name)
			d.add(Difference{Element: el, Kind: KindConstraint, Op: OpInsert, Subject: c.Name, To: c.Text})
		}
	}
}

var descriptorKinds = []struct {
	which model.Descriptor
	kind  Kind
}{
	{model.DescriptorDocumentation, KindDocumentation},
	{model.DescriptorAlias, KindAlias},
	{model.DescriptorDefinition, KindDefinition},
	{model.DescriptorDescription, KindDescription},
	{model.DescriptorPrimaryCode, KindPrimaryCode},
	{model.DescriptorGlobalIdentifier, KindGlobalIdentifier},
	{model.DescriptorLegalBasis, KindLegalBasis},
}

func (d *differ) entity(el Element, x, y *model.Entity) {
	for _, dk := range descriptorKinds {
		d.text(el, dk.kind, x.Descriptors.Get(dk.which), y.Descriptors.Get(dk.which))
	}
	d.names(el, KindStereotype, x.Stereotypes, y.Stereotypes)
	d.tags(el, x.TaggedValues, y.TaggedValues)
	d.profiles(el, x.Profiles, y.Profiles)
}

func (d *differ) text(el Element, kind Kind, from, to string) {
	switch {
	case from == to:
	case from == "":
		d.add(Difference{Element: el, Kind: kind, Op: OpInsert, To: to})
	case to == "":
		d.add(Difference{Element: el, Kind: kind, Op: OpDelete, From: from})
	default:
		d.add(Difference{Element: el, Kind: kind, Op: OpChange, From: from, To: to})
	}
}

func (d *differ) names(el Element, kind Kind, from, to []string) {
	x, y := sets.New(from...), sets.New(to...)
	for _, name := range sets.List(x.Difference(y)) {
		d.add(Difference{Element: el, Kind: kind, Op: OpDelete, Subject: name})
	}
	for _, name := range sets.List(y.Difference(x)) {
		d.add(Difference{Element: el, Kind: kind, Op: OpInsert, Subject: name})
	}
}

func (d *differ) tags(el Element, x, y model.TaggedValues) {
	names := sets.New(x.Names()...).Insert(y.Names()...)
	for _, name := range sets.List(names) {
		from, to := x.Values(name), y.Values(name)
		switch {
		case !x.Has(name):
			d.add(Difference{Element: el, Kind: KindTag, Op: OpInsert, Subject: name, To: strings.Join(to, ", ")})
		case !y.Has(name):
			d.add(Difference{Element: el, Kind: KindTag, Op: OpDelete, Subject: name, From: strings.Join(from, ", ")})
		case !slices.Equal(from, to):
			d.add(Difference{Element: el, Kind: KindTag, Op: OpChange, Subject: name,
				From: strings.Join(from, ", "), To: strings.Join(to, ", ")})
		}
	}
}

func (d *differ) profiles(el Element, x, y model.Profiles) {
	d.names(el, KindProfile, x.Names(), y.Names())
	for _, name := range x.Names() {
		px, _ := x.Get(name)
		py, ok := y.Get(name)
		if ok && !maps.Equal(px.Params, py.Params) {
			d.add(Difference{Element: el, Kind: KindProfile, Op: OpChange, Subject: name,
				From: model.Profiles{px}.String(), To: model.Profiles{py}.String()})
		}
	}
}
