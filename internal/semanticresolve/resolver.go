// Package semanticresolve turns the identifier references recorded by the
// parser into validated links.
package semanticresolve

import (
	"fmt"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// Resolver resolves all identifier references in a model.
// Runs once after parsing and before any transformation. Running it again
// is a no-op: references stay as they are and no diagnostic repeats.
type Resolver struct {
	model *model.Model
	sink  *mgerrors.Sink
}

// NewResolver creates a resolver for m recording into sink.
func NewResolver(m *model.Model, sink *mgerrors.Sink) *Resolver {
	return &Resolver{model: m, sink: sink}
}

// Resolve resolves every reference. Missing targets are kept as unresolved
// id/name pairs and reported as warnings.
func (r *Resolver) Resolve() {
	// 1. Generalization links (navigation below relies on them)
	for _, c := range r.model.Classes() {
		r.resolveGeneralizations(c)
	}

	// 2. Class to association links of association classes
	for _, c := range r.model.Classes() {
		if c.Association.IsZero() {
			continue
		}
		if a, ok := r.model.Association(c.Association.ID); ok {
			c.Association = model.RefTo(a.ID, a.Name)
		} else {
			c.Association = r.unresolved(c.Name, "association", c.Association)
		}
	}

	// 3. Property value types, reverse roles and associations
	for _, p := range r.model.Properties() {
		r.resolveProperty(p)
	}

	// 4. Association ends and association classes
	for _, a := range r.model.Associations() {
		r.resolveAssociation(a)
	}

	// 5. Constraints over-attached to subtypes
	r.normalizeConstraints()
}

// Resolve resolves every reference of m.
func Resolve(m *model.Model, sink *mgerrors.Sink) {
	NewResolver(m, sink).Resolve()
}

func (r *Resolver) resolveGeneralizations(c *model.Class) {
	for i, ref := range c.Supertypes {
		super, ok := r.model.Class(ref.ID)
		if !ok {
			c.Supertypes[i] = r.unresolved(c.Name, "supertype", ref)
			continue
		}
		c.Supertypes[i] = model.RefTo(super.ID, super.Name)
		r.model.Link(super, c)
	}
	for i, ref := range c.Subtypes {
		sub, ok := r.model.Class(ref.ID)
		if !ok {
			c.Subtypes[i] = r.unresolved(c.Name, "subtype", ref)
			continue
		}
		c.Subtypes[i] = model.RefTo(sub.ID, sub.Name)
		r.model.Link(c, sub)
	}
}

func (r *Resolver) resolveProperty(p *model.Property) {
	subject := r.propertySubject(p)
	if p.Type.ID != "" {
		if vt, ok := r.model.Class(p.Type.ID); ok {
			p.Type = model.RefTo(vt.ID, vt.Name)
		} else {
			p.Type = r.unresolved(subject, "value type", p.Type)
		}
	}
	if p.Reverse.ID != "" {
		if rev, ok := r.model.Property(p.Reverse.ID); ok {
			p.Reverse = model.RefTo(rev.ID, rev.Name)
		} else {
			p.Reverse = r.unresolved(subject, "reverse property", p.Reverse)
		}
	}
	if p.Association.ID != "" {
		if a, ok := r.model.Association(p.Association.ID); ok {
			p.Association = model.RefTo(a.ID, a.Name)
		} else {
			p.Association = r.unresolved(subject, "association", p.Association)
		}
	}
}

func (r *Resolver) resolveAssociation(a *model.Association) {
	subject := a.Name
	if subject == "" {
		subject = a.ID
	}
	var ends [2]*model.Property
	for i, ref := range a.Ends() {
		if ref.ID == "" {
			continue
		}
		p, ok := r.model.Property(ref.ID)
		if !ok {
			ref = r.unresolved(subject, fmt.Sprintf("end%d", i+1), ref)
		} else {
			ref = model.RefTo(p.ID, p.Name)
			p.Association = model.RefTo(a.ID, a.Name)
			ends[i] = p
		}
		if i == 0 {
			a.End1 = ref
		} else {
			a.End2 = ref
		}
	}
	if ends[0] != nil && ends[1] != nil {
		if ends[0].Reverse.IsZero() {
			ends[0].Reverse = model.RefTo(ends[1].ID, ends[1].Name)
		}
		if ends[1].Reverse.IsZero() {
			ends[1].Reverse = model.RefTo(ends[0].ID, ends[0].Name)
		}
	}
	if a.AssocClass.ID == "" {
		return
	}
	c, ok := r.model.Class(a.AssocClass.ID)
	if !ok {
		a.AssocClass = r.unresolved(subject, "association class", a.AssocClass)
		return
	}
	a.AssocClass = model.RefTo(c.ID, c.Name)
	if c.Association.IsZero() {
		c.Association = model.RefTo(a.ID, a.Name)
	}
}

// unresolved returns ref marked unresolved, warning once per subject and
// relationship.
func (r *Resolver) unresolved(subject, relation string, ref model.Ref) model.Ref {
	key := fmt.Sprintf("unresolved/%s/%s/%s", subject, relation, ref.ID)
	if r.model.ReportOnce(key) {
		r.sink.Warnf(mgerrors.ErrUnresolvedReference, subject,
			"%s %q does not name a registered entity", relation, ref.Label())
	}
	return ref.Unresolved()
}

func (r *Resolver) propertySubject(p *model.Property) string {
	if c, ok := r.model.OwningClass(p); ok {
		return c.Name + "::" + p.Name
	}
	return p.Name
}
