package typeconvert

import (
	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

// convertCategory changes every matching class of category from in the
// selected schemas to category to, together with its subtypes of the same
// category in the selected schemas.
func convertCategory(m *model.Model, sink *mgerrors.Sink, from, to model.Category, match func(*model.Class) bool) {
	converted := sets.New[string]()
	scope := m.SelectedScope()
	apply := func(c *model.Class) {
		if converted.Has(c.ID) || c.Category != from || !scope.Contains(c) {
			return
		}
		converted.Insert(c.ID)
		c.Category = to
		oldStereo, newStereo := model.CategoryStereotype(from), model.CategoryStereotype(to)
		if c.Stereotypes.Has(oldStereo) {
			c.Stereotypes.Replace(oldStereo, newStereo)
		} else if !c.Stereotypes.Has(newStereo) {
			c.Stereotypes.Add(newStereo)
		}
		sink.Debugf(mgerrors.ErrTransformation, c.Name, "category changed from %s to %s", from, to)
	}
	for _, c := range m.Classes() {
		if c.Category != from || !match(c) {
			continue
		}
		apply(c)
		for _, sub := range m.AllSubtypes(c) {
			apply(sub)
		}
	}
}
