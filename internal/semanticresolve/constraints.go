package semanticresolve

import (
	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// normalizeConstraints removes constraints that older documents attached to
// subtypes although a supertype declares them. A subtype constraint is
// removed when a supertype declares one with the same variant, name and
// text. A same-named constraint with a different text overrides the
// inherited one and is kept.
func (r *Resolver) normalizeConstraints() {
	for _, c := range r.model.Classes() {
		own := r.model.ConstraintsOf(c)
		if len(own) == 0 {
			continue
		}
		var inherited []*model.Constraint
		for _, super := range r.model.AllSupertypes(c) {
			inherited = append(inherited, r.model.ConstraintsOf(super)...)
		}
		if len(inherited) == 0 {
			continue
		}
		for _, con := range own {
			if !declaredBy(con, inherited) {
				continue
			}
			r.model.RemoveConstraintFrom(c, con.ID)
			r.sink.Debugf(mgerrors.ErrInheritedConstraintRemoved, c.Name+"::"+con.Name,
				"constraint is declared by a supertype, removed from subtype")
		}
	}
}

func declaredBy(con *model.Constraint, inherited []*model.Constraint) bool {
	for _, other := range inherited {
		if con.SameDeclaration(other) {
			return true
		}
	}
	return false
}
