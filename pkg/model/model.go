package model

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jacoelho/modelgraph/pkg/seqkey"
)

var (
	// ErrDuplicateID is returned when an identifier is registered twice.
	ErrDuplicateID = errors.New("duplicate identifier")
	// ErrDuplicateSequence is returned when a sequence key collides with a sibling.
	ErrDuplicateSequence = errors.New("duplicate sequence key")
	// ErrNotFound is returned when an identifier names no registered entity.
	ErrNotFound = errors.New("entity not found")
)

// Model is the entity registry of one load: an arena of entities indexed by
// identifier, plus the set of schema packages selected for processing.
type Model struct {
	classes      map[string]*Class
	properties   map[string]*Property
	associations map[string]*Association
	packages     map[string]*Package
	constraints  map[string]*Constraint
	kinds        map[string]Kind
	selected     sets.Set[string]
	reported     sets.Set[string]
	Version      string
	order        []string
}

// New returns an empty model.
func New() *Model {
	return &Model{
		classes:      make(map[string]*Class),
		properties:   make(map[string]*Property),
		associations: make(map[string]*Association),
		packages:     make(map[string]*Package),
		constraints:  make(map[string]*Constraint),
		kinds:        make(map[string]Kind),
		selected:     sets.New[string](),
		reported:     sets.New[string](),
	}
}

func (m *Model) register(id string, kind Kind) error {
	if id == "" {
		return fmt.Errorf("register %s: empty identifier", kind)
	}
	if existing, ok := m.kinds[id]; ok {
		return fmt.Errorf("register %s %q: already registered as %s: %w", kind, id, existing, ErrDuplicateID)
	}
	m.kinds[id] = kind
	m.order = append(m.order, id)
	return nil
}

// Lookup returns the entity registered under id.
func (m *Model) Lookup(id string) (Element, bool) {
	switch m.kinds[id] {
	case KindPackage:
		return m.packages[id], true
	case KindClass:
		return m.classes[id], true
	case KindProperty:
		return m.properties[id], true
	case KindAssociation:
		return m.associations[id], true
	case KindConstraint:
		return m.constraints[id], true
	default:
		return nil, false
	}
}

// Len returns the number of registered entities.
func (m *Model) Len() int {
	return len(m.order)
}

// Elements returns every entity in registration order.
func (m *Model) Elements() []Element {
	out := make([]Element, 0, len(m.order))
	for _, id := range m.order {
		if e, ok := m.Lookup(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// AddPackage registers p and adopts the classes and sub-packages it lists.
func (m *Model) AddPackage(p *Package) error {
	if err := m.register(p.ID, KindPackage); err != nil {
		return err
	}
	m.packages[p.ID] = p
	for _, id := range p.packages {
		if child, ok := m.packages[id]; ok {
			child.Parent = p.ID
		}
	}
	for _, id := range p.classes {
		if c, ok := m.classes[id]; ok {
			c.Package = p.ID
		}
	}
	if parent, ok := m.packages[p.Parent]; ok {
		parent.AddPackageID(p.ID)
	}
	return nil
}

// AddPackageID lists a sub-package.
func (p *Package) AddPackageID(id string) {
	if !slices.Contains(p.packages, id) {
		p.packages = append(p.packages, id)
	}
}

// AddClassID lists a contained class.
func (p *Package) AddClassID(id string) {
	if !slices.Contains(p.classes, id) {
		p.classes = append(p.classes, id)
	}
}

// AddClass registers c. When c.Package names a registered package, the
// package lists c.
func (m *Model) AddClass(c *Class) error {
	if err := m.register(c.ID, KindClass); err != nil {
		return err
	}
	m.classes[c.ID] = c
	if pkg, ok := m.packages[c.Package]; ok {
		pkg.AddClassID(c.ID)
	}
	return nil
}

// AddProperty registers p as owned by c. A zero sequence key is replaced by
// the key following the last sibling. A key that collides with a sibling is
// rejected with ErrDuplicateSequence and p is not registered.
func (m *Model) AddProperty(c *Class, p *Property) error {
	if p.sequence.IsZero() {
		p.sequence = m.lastSequence(c).Next()
	} else if m.sequenceTaken(c, p.sequence) {
		return fmt.Errorf("property %q of %s: key %s: %w", p.Name, c.Name, p.sequence, ErrDuplicateSequence)
	}
	if err := m.register(p.ID, KindProperty); err != nil {
		return err
	}
	p.Class = c.ID
	m.properties[p.ID] = p
	m.insertOrdered(c, p)
	return nil
}

// InsertPropertyAfter registers p as owned by c, ordered directly after
// sibling after, deriving a suffixed key that leaves every existing key
// unchanged.
func (m *Model) InsertPropertyAfter(c *Class, p *Property, after *Property) error {
	var base seqkey.Key
	if after != nil {
		base = after.sequence
	} else {
		base = m.lastSequence(c)
	}
	p.sequence = seqkey.After(base, m.siblingKeys(c))
	return m.AddProperty(c, p)
}

// Resequence changes the key of a property owned by a class.
func (m *Model) Resequence(p *Property, k seqkey.Key) error {
	c, ok := m.classes[p.Class]
	if !ok {
		p.sequence = k
		return nil
	}
	if !p.sequence.Equal(k) && m.sequenceTaken(c, k) {
		return fmt.Errorf("property %q of %s: key %s: %w", p.Name, c.Name, k, ErrDuplicateSequence)
	}
	if i := slices.Index(c.properties, p.ID); i >= 0 {
		c.properties = slices.Delete(c.properties, i, i+1)
	}
	p.sequence = k
	m.insertOrdered(c, p)
	return nil
}

// AddDetachedProperty registers a property that is not listed by its class,
// such as the non-navigable end of an association.
func (m *Model) AddDetachedProperty(p *Property) error {
	if err := m.register(p.ID, KindProperty); err != nil {
		return err
	}
	m.properties[p.ID] = p
	return nil
}

// AddConstraint registers con as declared on c. An empty identifier is
// derived from the owner.
func (m *Model) AddConstraint(c *Class, con *Constraint) error {
	if con.ID == "" {
		con.ID = fmt.Sprintf("%s#constraint%d", c.ID, len(c.constraints)+1)
	}
	if err := m.register(con.ID, KindConstraint); err != nil {
		return err
	}
	con.Owner = c.ID
	m.constraints[con.ID] = con
	c.constraints = append(c.constraints, con.ID)
	return nil
}

// RemoveConstraintFrom detaches a constraint from its owner. The constraint
// stays registered so identifiers remain stable within the load.
func (m *Model) RemoveConstraintFrom(c *Class, id string) bool {
	i := slices.Index(c.constraints, id)
	if i < 0 {
		return false
	}
	c.constraints = slices.Delete(c.constraints, i, i+1)
	if len(c.constraints) == 0 {
		c.constraints = nil
	}
	return true
}

// AddAssociation registers a.
func (m *Model) AddAssociation(a *Association) error {
	if err := m.register(a.ID, KindAssociation); err != nil {
		return err
	}
	m.associations[a.ID] = a
	return nil
}

// Link records sub as a direct subtype of super on both classes.
func (m *Model) Link(super, sub *Class) {
	if !super.HasSubtype(sub.ID) {
		super.Subtypes = append(super.Subtypes, RefTo(sub.ID, sub.Name))
	}
	if !sub.HasSupertype(super.ID) {
		sub.Supertypes = append(sub.Supertypes, RefTo(super.ID, super.Name))
	}
}

func (m *Model) lastSequence(c *Class) seqkey.Key {
	if n := len(c.properties); n > 0 {
		return m.properties[c.properties[n-1]].sequence
	}
	return seqkey.Key{}
}

func (m *Model) siblingKeys(c *Class) []seqkey.Key {
	keys := make([]seqkey.Key, 0, len(c.properties))
	for _, id := range c.properties {
		keys = append(keys, m.properties[id].sequence)
	}
	return keys
}

func (m *Model) sequenceTaken(c *Class, k seqkey.Key) bool {
	for _, id := range c.properties {
		if m.properties[id].sequence.Equal(k) {
			return true
		}
	}
	return false
}

func (m *Model) insertOrdered(c *Class, p *Property) {
	i := sort.Search(len(c.properties), func(i int) bool {
		return p.sequence.Less(m.properties[c.properties[i]].sequence)
	})
	c.properties = slices.Insert(c.properties, i, p.ID)
}

// Class returns the class registered under id.
func (m *Model) Class(id string) (*Class, bool) {
	c, ok := m.classes[id]
	return c, ok
}

// Property returns the property registered under id.
func (m *Model) Property(id string) (*Property, bool) {
	p, ok := m.properties[id]
	return p, ok
}

// Association returns the association registered under id.
func (m *Model) Association(id string) (*Association, bool) {
	a, ok := m.associations[id]
	return a, ok
}

// Package returns the package registered under id.
func (m *Model) Package(id string) (*Package, bool) {
	p, ok := m.packages[id]
	return p, ok
}

// Constraint returns the constraint registered under id.
func (m *Model) Constraint(id string) (*Constraint, bool) {
	c, ok := m.constraints[id]
	return c, ok
}

// Classes returns all classes in registration order.
func (m *Model) Classes() []*Class {
	return collect(m, KindClass, m.classes)
}

// Properties returns all properties in registration order.
func (m *Model) Properties() []*Property {
	return collect(m, KindProperty, m.properties)
}

// Associations returns all associations in registration order.
func (m *Model) Associations() []*Association {
	return collect(m, KindAssociation, m.associations)
}

// Packages returns all packages in registration order.
func (m *Model) Packages() []*Package {
	return collect(m, KindPackage, m.packages)
}

// Constraints returns all constraints in registration order.
func (m *Model) Constraints() []*Constraint {
	return collect(m, KindConstraint, m.constraints)
}

func collect[T any](m *Model, kind Kind, byID map[string]T) []T {
	out := make([]T, 0, len(byID))
	for _, id := range m.order {
		if m.kinds[id] == kind {
			out = append(out, byID[id])
		}
	}
	return out
}

// Roots returns the top-level packages.
func (m *Model) Roots() []*Package {
	var out []*Package
	for _, p := range m.Packages() {
		if _, ok := m.packages[p.Parent]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// SubPackages returns the direct sub-packages of p.
func (m *Model) SubPackages(p *Package) []*Package {
	out := make([]*Package, 0, len(p.packages))
	for _, id := range p.packages {
		if sub, ok := m.packages[id]; ok {
			out = append(out, sub)
		}
	}
	return out
}

// PropertiesOf returns the properties owned by c in sequence key order.
func (m *Model) PropertiesOf(c *Class) []*Property {
	out := make([]*Property, 0, len(c.properties))
	for _, id := range c.properties {
		if p, ok := m.properties[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// PropertyByName returns the property of c with the given name.
func (m *Model) PropertyByName(c *Class, name string) (*Property, bool) {
	for _, id := range c.properties {
		if p := m.properties[id]; p != nil && p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ConstraintsOf returns the constraints declared on c.
func (m *Model) ConstraintsOf(c *Class) []*Constraint {
	out := make([]*Constraint, 0, len(c.constraints))
	for _, id := range c.constraints {
		if con, ok := m.constraints[id]; ok {
			out = append(out, con)
		}
	}
	return out
}

// Supertypes returns the resolved direct supertypes of c.
func (m *Model) Supertypes(c *Class) []*Class {
	return m.resolvedClasses(c.Supertypes)
}

// Subtypes returns the resolved direct subtypes of c.
func (m *Model) Subtypes(c *Class) []*Class {
	return m.resolvedClasses(c.Subtypes)
}

func (m *Model) resolvedClasses(refs []Ref) []*Class {
	out := make([]*Class, 0, len(refs))
	for _, r := range refs {
		if !r.Resolved {
			continue
		}
		if c, ok := m.classes[r.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// AllSupertypes returns every transitive supertype of c, nearest first,
// each once.
func (m *Model) AllSupertypes(c *Class) []*Class {
	return m.walk(c, m.Supertypes)
}

// AllSubtypes returns every transitive subtype of c, nearest first, each once.
func (m *Model) AllSubtypes(c *Class) []*Class {
	return m.walk(c, m.Subtypes)
}

func (m *Model) walk(start *Class, next func(*Class) []*Class) []*Class {
	seen := sets.New(start.ID)
	var out []*Class
	queue := []*Class{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next(cur) {
			if seen.Has(n.ID) {
				continue
			}
			seen.Insert(n.ID)
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	return out
}

// ValueType returns the resolved value type of p.
func (m *Model) ValueType(p *Property) (*Class, bool) {
	if !p.Type.Resolved {
		return nil, false
	}
	c, ok := m.classes[p.Type.ID]
	return c, ok
}

// ReverseProperty returns the opposite association end of p.
func (m *Model) ReverseProperty(p *Property) (*Property, bool) {
	if !p.Reverse.Resolved {
		return nil, false
	}
	r, ok := m.properties[p.Reverse.ID]
	return r, ok
}

// OwningClass returns the class owning p.
func (m *Model) OwningClass(p *Property) (*Class, bool) {
	c, ok := m.classes[p.Class]
	return c, ok
}

// IsOwnedByClass reports whether p is listed among its class's properties.
func (m *Model) IsOwnedByClass(p *Property) bool {
	c, ok := m.classes[p.Class]
	return ok && slices.Contains(c.properties, p.ID)
}

// PackageChain returns the package of c followed by its ancestors.
func (m *Model) PackageChain(c *Class) []*Package {
	var out []*Package
	seen := sets.New[string]()
	for id := c.Package; id != "" && !seen.Has(id); {
		p, ok := m.packages[id]
		if !ok {
			break
		}
		seen.Insert(id)
		out = append(out, p)
		id = p.Parent
	}
	return out
}

// SchemaOf returns the application schema containing c: the nearest
// enclosing schema root, or the outermost package when none is flagged.
func (m *Model) SchemaOf(c *Class) (*Package, bool) {
	chain := m.PackageChain(c)
	for _, p := range chain {
		if p.IsSchemaRoot() {
			return p, true
		}
	}
	if len(chain) == 0 {
		return nil, false
	}
	return chain[len(chain)-1], true
}

// ClassesIn returns the classes of p and, recursively, of its sub-packages.
func (m *Model) ClassesIn(p *Package) []*Class {
	var out []*Class
	seen := sets.New[string]()
	var visit func(*Package)
	visit = func(cur *Package) {
		if seen.Has(cur.ID) {
			return
		}
		seen.Insert(cur.ID)
		for _, id := range cur.classes {
			if c, ok := m.classes[id]; ok {
				out = append(out, c)
			}
		}
		for _, sub := range m.SubPackages(cur) {
			visit(sub)
		}
	}
	visit(p)
	return out
}

// ClassByName returns the first class named name within schema.
func (m *Model) ClassByName(schema *Package, name string) (*Class, bool) {
	for _, c := range m.ClassesIn(schema) {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// FindClassByName returns the first class named name, preferring classes
// in selected schemas.
func (m *Model) FindClassByName(name string) (*Class, bool) {
	var fallback *Class
	scope := m.SelectedScope()
	for _, c := range m.Classes() {
		if c.Name != name {
			continue
		}
		if scope.Contains(c) {
			return c, true
		}
		if fallback == nil {
			fallback = c
		}
	}
	return fallback, fallback != nil
}

// SchemaByName returns the schema package named name.
func (m *Model) SchemaByName(name string) (*Package, bool) {
	for _, p := range m.Packages() {
		if p.Name == name && p.IsSchemaRoot() {
			return p, true
		}
	}
	return nil, false
}

// SelectSchemas adds package identifiers to the selection.
func (m *Model) SelectSchemas(ids ...string) {
	m.selected.Insert(ids...)
}

// ClearSelection empties the selection.
func (m *Model) ClearSelection() {
	m.selected = sets.New[string]()
}

// SelectedSchemaIDs returns the explicitly selected package identifiers, sorted.
func (m *Model) SelectedSchemaIDs() []string {
	return sets.List(m.selected)
}

// SelectedSchemas returns the packages selected for processing. With no
// explicit selection every schema root is selected, and with no schema roots
// every top-level package.
func (m *Model) SelectedSchemas() []*Package {
	var out []*Package
	if m.selected.Len() > 0 {
		for _, p := range m.Packages() {
			if m.selected.Has(p.ID) {
				out = append(out, p)
			}
		}
		return out
	}
	for _, p := range m.Packages() {
		if p.IsSchemaRoot() {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return m.Roots()
	}
	return out
}

// Scope is the set of selected schemas captured at one point in time. Passes
// take it once and test classes against it.
type Scope struct {
	model   *Model
	schemas sets.Set[string]
}

// SelectedScope captures the current schema selection.
func (m *Model) SelectedScope() Scope {
	schemas := sets.New[string]()
	for _, p := range m.SelectedSchemas() {
		schemas.Insert(p.ID)
	}
	return Scope{model: m, schemas: schemas}
}

// Contains reports whether c lies in one of the captured schemas.
func (s Scope) Contains(c *Class) bool {
	for _, p := range s.model.PackageChain(c) {
		if s.schemas.Has(p.ID) {
			return true
		}
	}
	return false
}

// InSelectedSchema reports whether c lies in a selected schema. Loops over
// many classes should capture SelectedScope once instead.
func (m *Model) InSelectedSchema(c *Class) bool {
	return m.SelectedScope().Contains(c)
}

// ReportOnce records key and reports whether it was not recorded before.
// Passes that may run repeatedly use it to avoid duplicate diagnostics.
func (m *Model) ReportOnce(key string) bool {
	if m.reported.Has(key) {
		return false
	}
	m.reported.Insert(key)
	return true
}
