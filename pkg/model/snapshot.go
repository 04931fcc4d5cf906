package model

import (
	"maps"
	"reflect"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	return m.Without(sets.New[string]())
}

// ReplaceWith installs the contents of next into m. next must not be used
// afterwards.
func (m *Model) ReplaceWith(next *Model) {
	*m = *next
}

// Without returns a consistent deep copy of m that lacks the given entities.
// Dropping cascades: a package drops its classes and sub-packages, a class
// drops its properties and constraints, and an association that loses an end
// is dropped together with its detached ends. References into the dropped
// set are scrubbed; value-type references are kept as unresolved labels.
func (m *Model) Without(ids sets.Set[string]) *Model {
	drop := m.cascade(ids)

	out := New()
	out.Version = m.Version
	out.selected = m.selected.Difference(drop)
	out.reported = m.reported.Clone()
	out.order = make([]string, 0, len(m.order))
	for _, id := range m.order {
		if drop.Has(id) {
			continue
		}
		kind := m.kinds[id]
		out.kinds[id] = kind
		out.order = append(out.order, id)
		switch kind {
		case KindPackage:
			p := m.packages[id].clone()
			p.packages = keep(p.packages, drop)
			p.classes = keep(p.classes, drop)
			out.packages[id] = p
		case KindClass:
			c := m.classes[id].clone()
			c.Supertypes = keepRefs(c.Supertypes, drop)
			c.Subtypes = keepRefs(c.Subtypes, drop)
			c.properties = keep(c.properties, drop)
			c.constraints = keep(c.constraints, drop)
			if drop.Has(c.Association.ID) {
				c.Association = Ref{}
			}
			out.classes[id] = c
		case KindProperty:
			p := m.properties[id].clone()
			if drop.Has(p.Type.ID) {
				p.Type = p.Type.Unresolved()
			}
			if drop.Has(p.Reverse.ID) {
				p.Reverse = Ref{}
			}
			if drop.Has(p.Association.ID) {
				p.Association = Ref{}
				p.Reverse = Ref{}
			}
			out.properties[id] = p
		case KindAssociation:
			a := m.associations[id].clone()
			if drop.Has(a.AssocClass.ID) {
				a.AssocClass = Ref{}
			}
			out.associations[id] = a
		case KindConstraint:
			out.constraints[id] = m.constraints[id].clone()
		}
	}
	return out
}

func (m *Model) cascade(ids sets.Set[string]) sets.Set[string] {
	drop := sets.New[string]()
	for id := range ids {
		if _, ok := m.kinds[id]; ok {
			drop.Insert(id)
		}
	}
	if drop.Len() == 0 {
		return drop
	}
	for {
		before := drop.Len()
		for id, p := range m.packages {
			if drop.Has(id) {
				drop.Insert(p.packages...)
				drop.Insert(p.classes...)
			}
		}
		for id, c := range m.classes {
			if drop.Has(id) {
				drop.Insert(c.properties...)
				drop.Insert(c.constraints...)
			}
		}
		for id, p := range m.properties {
			if drop.Has(p.Class) {
				drop.Insert(id)
			}
		}
		for id, con := range m.constraints {
			if drop.Has(con.Owner) {
				drop.Insert(id)
			}
		}
		for id, a := range m.associations {
			if drop.Has(a.End1.ID) || drop.Has(a.End2.ID) {
				drop.Insert(id)
			}
			if !drop.Has(id) {
				continue
			}
			for _, end := range a.Ends() {
				if p, ok := m.properties[end.ID]; ok && !m.IsOwnedByClass(p) {
					drop.Insert(p.ID)
				}
			}
		}
		if drop.Len() == before {
			return drop
		}
	}
}

func keep(ids []string, drop sets.Set[string]) []string {
	if len(ids) == 0 {
		return ids
	}
	out := slices.DeleteFunc(slices.Clone(ids), drop.Has)
	if len(out) == 0 {
		return nil
	}
	return out
}

func keepRefs(refs []Ref, drop sets.Set[string]) []Ref {
	if len(refs) == 0 {
		return refs
	}
	out := slices.DeleteFunc(slices.Clone(refs), func(r Ref) bool { return drop.Has(r.ID) })
	if len(out) == 0 {
		return nil
	}
	return out
}

// Equal reports whether two models hold the same entities with the same
// attributes, in the same registration order, with the same selection.
func Equal(a, b *Model) bool {
	if a.Version != b.Version || !slices.Equal(a.order, b.order) || !maps.Equal(a.kinds, b.kinds) {
		return false
	}
	if !a.selected.Equal(b.selected) {
		return false
	}
	return reflect.DeepEqual(a.classes, b.classes) &&
		reflect.DeepEqual(a.properties, b.properties) &&
		reflect.DeepEqual(a.associations, b.associations) &&
		reflect.DeepEqual(a.packages, b.packages) &&
		reflect.DeepEqual(a.constraints, b.constraints)
}
