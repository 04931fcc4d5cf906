package parser

import (
	"strings"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
	"github.com/jacoelho/modelgraph/pkg/xmlstream"
)

// leafHandler captures the character data of a single-valued field.
type leafHandler struct {
	name string
	buf  strings.Builder
}

func newLeaf(ev *xmlstream.Event) *leafHandler {
	return &leafHandler{name: ev.Name.Local}
}

func (h *leafHandler) open(b *Builder, ev *xmlstream.Event) error {
	b.skip(ev, "field "+h.name)
	return nil
}

func (h *leafHandler) text(s string) {
	h.buf.WriteString(s)
}

func (h *leafHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *leafHandler) childDone(*Builder, handler) error { return nil }

func (h *leafHandler) value() string {
	return strings.TrimSpace(h.buf.String())
}

// stringListHandler captures an ordered list of strings, one per child
// element. Every open increments depth and starts a capture, every close
// decrements it; the construct ends once depth goes negative. A list written
// as direct character data yields that text as its single value. Empty items
// are dropped unless keepEmpty is set.
type stringListHandler struct {
	name      string
	buf       strings.Builder
	direct    strings.Builder
	items     []string
	depth     int
	keepEmpty bool
}

func newStringList(ev *xmlstream.Event) *stringListHandler {
	return &stringListHandler{name: ev.Name.Local}
}

func (h *stringListHandler) open(*Builder, *xmlstream.Event) error {
	h.depth++
	if h.depth == 1 {
		h.buf.Reset()
	}
	return nil
}

func (h *stringListHandler) text(s string) {
	if h.depth == 0 {
		h.direct.WriteString(s)
		return
	}
	h.buf.WriteString(s)
}

func (h *stringListHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	h.depth--
	if h.depth == 0 {
		if v := strings.TrimSpace(h.buf.String()); v != "" || h.keepEmpty {
			h.items = append(h.items, v)
		}
	}
	return h.depth < 0, nil
}

func (h *stringListHandler) childDone(*Builder, handler) error { return nil }

func (h *stringListHandler) values() []string {
	if len(h.items) > 0 {
		return h.items
	}
	if v := strings.TrimSpace(h.direct.String()); v != "" {
		return []string{v}
	}
	return nil
}

// listHandler collects repeated item constructs of one element name.
type listHandler struct {
	newItem func(ev *xmlstream.Event) handler
	name    string
	item    string
	items   []handler
}

func newList(ev *xmlstream.Event, item string, newItem func(ev *xmlstream.Event) handler) *listHandler {
	return &listHandler{name: ev.Name.Local, item: item, newItem: newItem}
}

func (h *listHandler) open(b *Builder, ev *xmlstream.Event) error {
	if ev.Name.Local != h.item {
		b.skip(ev, h.name)
		return nil
	}
	b.push(h.newItem(ev))
	return nil
}

func (h *listHandler) text(string) {}

func (h *listHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *listHandler) childDone(_ *Builder, child handler) error {
	if _, skipped := child.(*skipHandler); !skipped {
		h.items = append(h.items, child)
	}
	return nil
}

// fieldsHandler captures a flat record of known leaf fields.
type fieldsHandler struct {
	name   string
	known  []string
	values map[string]string
}

func newFields(known ...string) func(ev *xmlstream.Event) handler {
	return func(ev *xmlstream.Event) handler {
		return &fieldsHandler{name: ev.Name.Local, known: known, values: make(map[string]string)}
	}
}

func (h *fieldsHandler) open(b *Builder, ev *xmlstream.Event) error {
	for _, k := range h.known {
		if k == ev.Name.Local {
			b.push(newLeaf(ev))
			return nil
		}
	}
	b.skip(ev, h.name)
	return nil
}

func (h *fieldsHandler) text(string) {}

func (h *fieldsHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *fieldsHandler) childDone(_ *Builder, child handler) error {
	if leaf, ok := child.(*leafHandler); ok {
		h.values[leaf.name] = leaf.value()
	}
	return nil
}

// descriptorsHandler captures the descriptor block of an entity.
type descriptorsHandler struct {
	desc model.Descriptors
}

func (h *descriptorsHandler) open(b *Builder, ev *xmlstream.Event) error {
	switch ev.Name.Local {
	case "example", "dataCaptureStatement":
		b.push(newStringList(ev))
	default:
		if _, ok := model.DescriptorByName(ev.Name.Local); ok {
			b.push(newStringList(ev))
			return nil
		}
		b.skip(ev, "descriptors")
	}
	return nil
}

func (h *descriptorsHandler) text(string) {}

func (h *descriptorsHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *descriptorsHandler) childDone(_ *Builder, child handler) error {
	list, ok := child.(*stringListHandler)
	if !ok {
		return nil
	}
	values := list.values()
	switch list.name {
	case "example":
		h.desc.Examples = append(h.desc.Examples, values...)
	case "dataCaptureStatement":
		h.desc.DataCaptureStatements = append(h.desc.DataCaptureStatements, values...)
	default:
		if d, ok := model.DescriptorByName(list.name); ok && len(values) > 0 {
			h.desc.Set(d, values[0])
		}
	}
	return nil
}

// taggedValueHandler captures one TaggedValue: a name and its values.
type taggedValueHandler struct {
	name   string
	values []string
}

func newTaggedValue(ev *xmlstream.Event) handler {
	h := &taggedValueHandler{}
	h.name, _ = ev.Attr("name")
	return h
}

func (h *taggedValueHandler) open(b *Builder, ev *xmlstream.Event) error {
	switch ev.Name.Local {
	case "name", "value":
		b.push(newLeaf(ev))
	case "values":
		l := newStringList(ev)
		l.keepEmpty = true
		b.push(l)
	default:
		b.skip(ev, "TaggedValue")
	}
	return nil
}

func (h *taggedValueHandler) text(string) {}

func (h *taggedValueHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *taggedValueHandler) childDone(_ *Builder, child handler) error {
	switch c := child.(type) {
	case *leafHandler:
		if c.name == "name" {
			h.name = c.value()
		} else {
			h.values = append(h.values, c.value())
		}
	case *stringListHandler:
		h.values = append(h.values, c.values()...)
	}
	return nil
}

// profileHandler captures one Profile assignment with its parameters.
type profileHandler struct {
	profile model.Profile
}

func newProfile(ev *xmlstream.Event) handler {
	h := &profileHandler{}
	h.profile.Name, _ = ev.Attr("name")
	return h
}

func (h *profileHandler) open(b *Builder, ev *xmlstream.Event) error {
	switch ev.Name.Local {
	case "name":
		b.push(newLeaf(ev))
	case "parameters":
		b.push(newList(ev, "Parameter", newFields("name", "value")))
	default:
		b.skip(ev, "Profile")
	}
	return nil
}

func (h *profileHandler) text(string) {}

func (h *profileHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *profileHandler) childDone(_ *Builder, child handler) error {
	switch c := child.(type) {
	case *leafHandler:
		h.profile.Name = c.value()
	case *listHandler:
		for _, item := range c.items {
			f := item.(*fieldsHandler)
			if f.values["name"] == "" {
				continue
			}
			if h.profile.Params == nil {
				h.profile.Params = make(map[string]string)
			}
			h.profile.Params[f.values["name"]] = f.values["value"]
		}
	}
	return nil
}

// entityFields handles the children shared by every entity kind. Concrete
// handlers delegate to it before looking at their own fields.
type entityFields struct {
	model.Entity
	sawProfiles bool
	registered  bool
}

func (e *entityFields) open(b *Builder, ev *xmlstream.Event) bool {
	switch ev.Name.Local {
	case "id", "name":
		b.push(newLeaf(ev))
	case "stereotypes":
		b.push(newStringList(ev))
	case "descriptors":
		b.push(&descriptorsHandler{})
	case "taggedValues":
		b.push(newList(ev, "TaggedValue", newTaggedValue))
	case "profiles":
		b.push(newList(ev, "Profile", newProfile))
	case "diagrams":
		b.push(newList(ev, "ImageMetadata", newFields("id", "name", "relPathToFile", "width", "height")))
	default:
		return false
	}
	return true
}

func (e *entityFields) childDone(b *Builder, child handler) bool {
	switch c := child.(type) {
	case *leafHandler:
		switch c.name {
		case "id":
			e.ID = c.value()
		case "name":
			e.Name = c.value()
		default:
			return false
		}
	case *stringListHandler:
		if c.name != "stereotypes" {
			return false
		}
		for _, s := range c.values() {
			if norm, known := model.NormalizeStereotype(s); !known && norm != "" {
				b.report(mgerrors.ErrUnknownStereotype, mgerrors.SeverityDebug, s,
					"stereotype %q is not in the well-known vocabulary", s)
			}
			e.Stereotypes.Add(s)
		}
	case *descriptorsHandler:
		e.Descriptors = c.desc
	case *listHandler:
		switch c.name {
		case "taggedValues":
			for _, item := range c.items {
				tv := item.(*taggedValueHandler)
				if tv.name == "" {
					continue
				}
				for _, v := range tv.values {
					e.TaggedValues.Add(tv.name, v)
				}
				if len(tv.values) == 0 {
					e.TaggedValues.Set(tv.name, "")
				}
			}
		case "profiles":
			e.sawProfiles = true
			for _, item := range c.items {
				if p := item.(*profileHandler).profile; p.Name != "" {
					e.Profiles.Set(p)
				}
			}
		case "diagrams":
			for _, item := range c.items {
				f := item.(*fieldsHandler).values
				e.Diagrams = append(e.Diagrams, model.ImageRef{
					ID:     f["id"],
					Name:   f["name"],
					Path:   f["relPathToFile"],
					Width:  b.intValue(f["id"], "width", f["width"]),
					Height: b.intValue(f["id"], "height", f["height"]),
				})
			}
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// finish returns the completed entity. Profiles given only through the
// profiles tagged value are parsed into the profile assignment.
func (e *entityFields) finish(b *Builder) model.Entity {
	if !e.sawProfiles && e.TaggedValues.Has(model.ProfilesTag) {
		ps, err := model.ParseProfiles(e.TaggedValues.Get(model.ProfilesTag))
		if err != nil {
			b.report(mgerrors.ErrInvalidValue, mgerrors.SeverityWarning, e.label(),
				"tagged value %s: %v", model.ProfilesTag, err)
		} else {
			e.Profiles = ps
			e.TaggedValues.Delete(model.ProfilesTag)
		}
	}
	return e.Entity
}

func (e *entityFields) label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}
