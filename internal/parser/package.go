package parser

import (
	"github.com/jacoelho/modelgraph/pkg/model"
	"github.com/jacoelho/modelgraph/pkg/xmlstream"
)

// modelHandler handles the Model root: packages and associations.
type modelHandler struct{}

func (h *modelHandler) open(b *Builder, ev *xmlstream.Event) error {
	switch ev.Name.Local {
	case "packages":
		b.push(newList(ev, "Package", func(*xmlstream.Event) handler { return newPackageHandler() }))
	case "associations":
		b.push(newList(ev, "Association", newAssociationHandler))
	case "version":
		b.push(newLeaf(ev))
	default:
		b.skip(ev, "Model")
	}
	return nil
}

func (h *modelHandler) text(string) {}

func (h *modelHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *modelHandler) childDone(b *Builder, child handler) error {
	if leaf, ok := child.(*leafHandler); ok && leaf.name == "version" {
		b.model.Version = leaf.value()
	}
	return nil
}

// packageHandler builds one Package. Nested packages and classes register
// themselves first; the package adopts the ones that were registered.
type packageHandler struct {
	entityFields
	fields   map[string]string
	packages []string
	classes  []string
}

func newPackageHandler() *packageHandler {
	return &packageHandler{fields: make(map[string]string)}
}

func (h *packageHandler) open(b *Builder, ev *xmlstream.Event) error {
	if h.entityFields.open(b, ev) {
		return nil
	}
	switch ev.Name.Local {
	case "targetNamespace", "xmlns", "xsdDocument", "version", "isSchema":
		b.push(newLeaf(ev))
	case "packages":
		b.push(newList(ev, "Package", func(*xmlstream.Event) handler { return newPackageHandler() }))
	case "classes":
		b.push(newList(ev, "Class", newClassHandler))
	default:
		b.skip(ev, "Package")
	}
	return nil
}

func (h *packageHandler) text(string) {}

func (h *packageHandler) childDone(b *Builder, child handler) error {
	if h.entityFields.childDone(b, child) {
		return nil
	}
	switch c := child.(type) {
	case *leafHandler:
		h.fields[c.name] = c.value()
	case *listHandler:
		for _, item := range c.items {
			switch it := item.(type) {
			case *packageHandler:
				if it.registered {
					h.packages = append(h.packages, it.ID)
				}
			case *classHandler:
				if it.registered {
					h.classes = append(h.classes, it.ID)
				}
			}
		}
	}
	return nil
}

func (h *packageHandler) close(b *Builder, _ *xmlstream.Event) (bool, error) {
	p := &model.Package{
		Entity:          h.finish(b),
		TargetNamespace: h.fields["targetNamespace"],
		XMLNS:           h.fields["xmlns"],
		XSDDocument:     h.fields["xsdDocument"],
		Version:         h.fields["version"],
	}
	p.IsSchema = b.boolValue(h.label(), "isSchema", h.fields["isSchema"], false)
	for _, id := range h.packages {
		p.AddPackageID(id)
	}
	for _, id := range h.classes {
		p.AddClassID(id)
	}
	if err := b.model.AddPackage(p); err != nil {
		b.registrationFailed(model.KindPackage, h.label(), err)
		return true, nil
	}
	h.registered = true
	return true, nil
}
