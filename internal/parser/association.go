package parser

import (
	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
	"github.com/jacoelho/modelgraph/pkg/xmlstream"
)

// associationHandler builds one Association from its two ends.
type associationHandler struct {
	entityFields
	assocClassID string
	ends         [2]*endHandler
}

func newAssociationHandler(*xmlstream.Event) handler {
	return &associationHandler{}
}

func (h *associationHandler) open(b *Builder, ev *xmlstream.Event) error {
	if h.entityFields.open(b, ev) {
		return nil
	}
	switch ev.Name.Local {
	case "assocClassId":
		b.push(newLeaf(ev))
	case "end1", "end2":
		b.push(newEndHandler(ev))
	default:
		b.skip(ev, "Association")
	}
	return nil
}

func (h *associationHandler) text(string) {}

func (h *associationHandler) childDone(b *Builder, child handler) error {
	if h.entityFields.childDone(b, child) {
		return nil
	}
	switch c := child.(type) {
	case *leafHandler:
		h.assocClassID = c.value()
	case *endHandler:
		if c.name == "end1" {
			h.ends[0] = c
		} else {
			h.ends[1] = c
		}
	}
	return nil
}

func (h *associationHandler) close(b *Builder, _ *xmlstream.Event) (bool, error) {
	a := &model.Association{
		Entity:     h.finish(b),
		AssocClass: model.Ref{ID: h.assocClassID},
	}
	for i, end := range h.ends {
		if end == nil {
			b.report(mgerrors.ErrInvalidValue, mgerrors.SeverityWarning, h.label(), "association has no end%d", i+1)
			continue
		}
		ref := end.ref(b)
		if i == 0 {
			a.End1 = ref
		} else {
			a.End2 = ref
		}
		if end.property != nil {
			end.property.Association = model.Ref{ID: a.ID}
			b.pendingEnds = append(b.pendingEnds, end.property)
		}
	}
	if err := b.model.AddAssociation(a); err != nil {
		b.registrationFailed(model.KindAssociation, h.label(), err)
		return true, nil
	}
	h.registered = true
	return true, nil
}

// endHandler captures one association end: the referenced property and an
// optional nested copy of it.
type endHandler struct {
	name     string
	refID    string
	nested   *propertyHandler
	property *model.Property
}

func newEndHandler(ev *xmlstream.Event) *endHandler {
	h := &endHandler{name: ev.Name.Local}
	h.refID, _ = ev.Attr("ref")
	return h
}

func (h *endHandler) open(b *Builder, ev *xmlstream.Event) error {
	if ev.Name.Local == "Property" && h.nested == nil {
		h.nested = &propertyHandler{fields: make(map[string]string)}
		b.push(h.nested)
		return nil
	}
	b.skip(ev, h.name)
	return nil
}

func (h *endHandler) text(string) {}

func (h *endHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *endHandler) childDone(*Builder, handler) error { return nil }

func (h *endHandler) ref(b *Builder) model.Ref {
	if h.nested != nil {
		h.property = h.nested.build(b)
	}
	id := h.refID
	var name string
	if h.property != nil {
		if id == "" {
			id = h.property.ID
		}
		if h.property.ID == "" {
			h.property.ID = id
		}
		name = h.property.Name
	}
	return model.Ref{ID: id, Name: name}
}
