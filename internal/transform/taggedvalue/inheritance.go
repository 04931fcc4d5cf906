package taggedvalue

import (
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/pipeline"
	"github.com/jacoelho/modelgraph/pkg/model"
)

type inheritanceConfig struct {
	general    sets.Set[string]
	overwrite  sets.Set[string]
	appendTags sets.Set[string]
	separator  string
}

// newInheritanceConfig reads the three tag sets. Overwrite and append
// entries outside the general set are ignored, and overwrite wins over
// append.
func newInheritanceConfig(p *pipeline.Params) inheritanceConfig {
	general := p.StringSet(ParamGeneralList)
	overwrite := p.StringSet(ParamOverwriteList).Intersection(general)
	return inheritanceConfig{
		general:    general,
		overwrite:  overwrite,
		appendTags: p.StringSet(ParamAppendList).Intersection(general).Difference(overwrite),
		separator:  p.String(ParamAppendSeparator),
	}
}

// inheritance computes the value a class ends up with for an inherited tag.
// Values are derived from a snapshot taken before any write, so the result
// does not depend on the order classes are visited in, and a class reached
// through several supertypes gets the same value every time.
type inheritance struct {
	model    *model.Model
	original map[string]model.TaggedValues
	memo     map[string]map[string][]string
	visiting sets.Set[string]
	cfg      inheritanceConfig
}

func inherit(m *model.Model, cfg inheritanceConfig, sink *mgerrors.Sink) {
	if cfg.general.Len() == 0 {
		return
	}
	in := &inheritance{
		model:    m,
		cfg:      cfg,
		original: make(map[string]model.TaggedValues),
		memo:     make(map[string]map[string][]string),
		visiting: sets.New[string](),
	}
	for _, c := range m.Classes() {
		in.original[c.ID] = c.TaggedValues.Clone()
	}

	targets := sets.New[string]()
	for _, top := range m.Classes() {
		if len(m.Supertypes(top)) > 0 || len(m.Subtypes(top)) == 0 {
			continue
		}
		for _, sub := range m.AllSubtypes(top) {
			targets.Insert(sub.ID)
		}
	}

	tags := sets.List(cfg.general)
	scope := m.SelectedScope()
	for _, c := range m.Classes() {
		if !targets.Has(c.ID) || !scope.Contains(c) {
			continue
		}
		for _, tag := range tags {
			values, ok := in.effective(c, tag)
			if !ok || c.TaggedValues.Has(tag) && slices.Equal(values, c.TaggedValues.Values(tag)) {
				continue
			}
			c.TaggedValues.Set(tag, values...)
			sink.Debugf(mgerrors.ErrTransformation, c.Name, "tagged value %s inherited as %q", tag, strings.Join(values, ", "))
		}
	}
}

func (in *inheritance) effective(c *model.Class, tag string) ([]string, bool) {
	if byTag, ok := in.memo[c.ID]; ok {
		if v, ok := byTag[tag]; ok {
			return v, v != nil
		}
	}
	own, hasOwn := in.original[c.ID][tag]
	if in.visiting.Has(c.ID) {
		return own, hasOwn
	}
	in.visiting.Insert(c.ID)
	defer in.visiting.Delete(c.ID)

	var parent []string
	found := false
	for _, super := range in.model.Supertypes(c) {
		if v, ok := in.effective(super, tag); ok {
			parent, found = v, true
			break
		}
	}

	var result []string
	ok := true
	switch {
	case !found:
		result, ok = own, hasOwn
	case !hasOwn, in.cfg.overwrite.Has(tag):
		result = parent
	case in.cfg.appendTags.Has(tag):
		result = appendValues(parent, own, in.cfg.separator)
	default:
		result = own
	}
	if result == nil && ok {
		result = []string{}
	}
	if in.memo[c.ID] == nil {
		in.memo[c.ID] = make(map[string][]string)
	}
	if ok {
		in.memo[c.ID][tag] = result
	} else {
		in.memo[c.ID][tag] = nil
	}
	return result, ok
}

// appendValues joins the supertype value and the subtype value. A subtype
// value that already starts with the supertype value is kept as is, which
// makes repeated runs stable.
func appendValues(parent, own []string, sep string) []string {
	p := strings.Join(parent, sep)
	o := strings.Join(own, sep)
	switch {
	case p == "":
		return own
	case o == "":
		return parent
	case o == p || strings.HasPrefix(o, p+sep):
		return own
	default:
		return []string{p + sep + o}
	}
}
