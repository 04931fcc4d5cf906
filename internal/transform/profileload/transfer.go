package profileload

import (
	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// transfer copies profile assignments onto the classes and properties of
// the selected schemas of target.
type transfer struct {
	target *model.Model
	sink   *mgerrors.Sink
	// profiles restricts the transfer to the named profiles. Empty
	// transfers the whole assignment.
	profiles sets.Set[string]
}

// from transfers the profiles of elements of loaded matched by schema name,
// class name and property name. It returns the number of elements whose
// assignment changed.
func (t *transfer) from(loaded *model.Model) int {
	changed := 0
	for _, schema := range t.target.SelectedSchemas() {
		source, ok := loaded.SchemaByName(schema.Name)
		if !ok {
			continue
		}
		for _, c := range t.target.ClassesIn(schema) {
			lc, ok := loaded.ClassByName(source, c.Name)
			if !ok {
				continue
			}
			if t.apply(&c.Entity, lc.Profiles) {
				changed++
				t.sink.Debugf(mgerrors.ErrTransformation, c.Name, "profiles set to %q", c.Profiles.String())
			}
			for _, p := range t.target.PropertiesOf(c) {
				lp, ok := loaded.PropertyByName(lc, p.Name)
				if !ok {
					continue
				}
				if t.apply(&p.Entity, lp.Profiles) {
					changed++
					t.sink.Debugf(mgerrors.ErrTransformation, c.Name+"::"+p.Name, "profiles set to %q", p.Profiles.String())
				}
			}
		}
	}
	return changed
}

// apply overwrites the assignment of e with source, limited to the
// configured profiles. It reports whether the assignment changed.
func (t *transfer) apply(e *model.Entity, source model.Profiles) bool {
	before := e.Profiles.String()
	if t.profiles.Len() == 0 {
		e.Profiles = source.Clone()
	} else {
		for _, name := range sets.List(t.profiles) {
			e.Profiles.Remove(name)
			if p, ok := source.Get(name); ok {
				e.Profiles.Set(p)
			}
		}
	}
	return e.Profiles.String() != before
}
