package taggedvalue

import (
	"regexp"
	"slices"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

type copyConfig struct {
	pattern   *regexp.Regexp
	tags      []string
	overwrite bool
}

// copyFromValueType copies the configured tags from the value type of each
// property onto the property, for properties of classes in the selected
// schemas whose value type name matches the pattern.
func copyFromValueType(m *model.Model, cfg copyConfig, sink *mgerrors.Sink) {
	scope := m.SelectedScope()
	for _, c := range m.Classes() {
		if !scope.Contains(c) {
			continue
		}
		for _, p := range m.PropertiesOf(c) {
			vt, ok := m.ValueType(p)
			if !ok || (cfg.pattern != nil && !cfg.pattern.MatchString(vt.Name)) {
				continue
			}
			for _, tag := range cfg.tags {
				if !vt.TaggedValues.Has(tag) {
					continue
				}
				if p.TaggedValues.Has(tag) && !cfg.overwrite {
					continue
				}
				values := vt.TaggedValues.Values(tag)
				if slices.Equal(values, p.TaggedValues.Values(tag)) {
					continue
				}
				p.TaggedValues.Set(tag, values...)
				sink.Debugf(mgerrors.ErrTransformation, c.Name+"::"+p.Name,
					"tagged value %s copied from value type %s", tag, vt.Name)
			}
		}
	}
}
