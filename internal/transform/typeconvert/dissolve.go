package typeconvert

import (
	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

type dissolveConfig struct {
	attributeType     string
	excludeManyToMany bool
	removeMultiValued bool
}

// dissolveAssociations replaces the navigable roles of associations touching
// the selected schemas by plain attributes of the configured type. The
// associations, their non-navigable ends and their association classes are
// dropped by replacing the model with a snapshot without them.
func dissolveAssociations(m *model.Model, cfg dissolveConfig, sink *mgerrors.Sink) {
	valueType := model.Ref{Name: cfg.attributeType}
	if c, ok := m.FindClassByName(cfg.attributeType); ok {
		valueType = model.RefTo(c.ID, c.Name)
	}

	drop := sets.New[string]()
	scope := m.SelectedScope()
	for _, a := range m.Associations() {
		ends := associationEnds(m, a)
		if !touchesSelection(m, scope, ends) {
			continue
		}
		if cfg.excludeManyToMany && manyToMany(ends) {
			sink.Debugf(mgerrors.ErrTransformation, label(a), "many-to-many association kept")
			continue
		}
		for _, p := range ends {
			if p == nil {
				continue
			}
			owner, owned := m.OwningClass(p)
			if !owned || !m.IsOwnedByClass(p) {
				drop.Insert(p.ID)
				continue
			}
			if cfg.removeMultiValued && p.Multiplicity.IsMultiValued() {
				drop.Insert(p.ID)
				sink.Debugf(mgerrors.ErrTransformation, owner.Name+"::"+p.Name, "multi-valued role removed")
				continue
			}
			toAttribute(p, valueType)
			sink.Debugf(mgerrors.ErrTransformation, owner.Name+"::"+p.Name, "role replaced by attribute of type %s", valueType.Label())
		}
		drop.Insert(a.ID)
		if a.AssocClass.Resolved {
			if ac, ok := m.Class(a.AssocClass.ID); ok {
				drop.Insert(ac.ID)
				sink.Warnf(mgerrors.ErrAssociationClassRemoved, ac.Name,
					"association class %s removed together with association %s", ac.Name, label(a))
			}
		}
	}
	if drop.Len() > 0 {
		m.ReplaceWith(m.Without(drop))
	}
}

func associationEnds(m *model.Model, a *model.Association) [2]*model.Property {
	var ends [2]*model.Property
	for i, ref := range a.Ends() {
		if p, ok := m.Property(ref.ID); ok {
			ends[i] = p
		}
	}
	return ends
}

func touchesSelection(m *model.Model, scope model.Scope, ends [2]*model.Property) bool {
	for _, p := range ends {
		if p == nil {
			continue
		}
		if c, ok := m.OwningClass(p); ok && scope.Contains(c) {
			return true
		}
	}
	return false
}

func manyToMany(ends [2]*model.Property) bool {
	return ends[0] != nil && ends[1] != nil &&
		ends[0].Multiplicity.IsMultiValued() && ends[1].Multiplicity.IsMultiValued()
}

func toAttribute(p *model.Property, valueType model.Ref) {
	p.Attribute = true
	p.Type = valueType
	p.Reverse = model.Ref{}
	p.Association = model.Ref{}
	p.Composition = false
	p.Aggregation = false
}

func label(a *model.Association) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
