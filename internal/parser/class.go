package parser

import (
	"errors"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
	"github.com/jacoelho/modelgraph/pkg/xmlstream"
)

// classHandler builds one Class together with its properties and
// constraints.
type classHandler struct {
	entityFields
	fields      map[string]string
	supertypes  []string
	subtypes    []string
	properties  []*propertyHandler
	constraints []*model.Constraint
}

func newClassHandler(*xmlstream.Event) handler {
	return &classHandler{fields: make(map[string]string)}
}

func (h *classHandler) open(b *Builder, ev *xmlstream.Event) error {
	if h.entityFields.open(b, ev) {
		return nil
	}
	switch ev.Name.Local {
	case "isAbstract", "isLeaf", "associationId", "linkedDocument":
		b.push(newLeaf(ev))
	case "supertypes", "subtypes":
		b.push(newStringList(ev))
	case "properties":
		b.push(newList(ev, "Property", newPropertyHandler))
	case "constraints":
		b.push(&constraintListHandler{})
	default:
		b.skip(ev, "Class")
	}
	return nil
}

func (h *classHandler) text(string) {}

func (h *classHandler) childDone(b *Builder, child handler) error {
	if h.entityFields.childDone(b, child) {
		return nil
	}
	switch c := child.(type) {
	case *leafHandler:
		h.fields[c.name] = c.value()
	case *stringListHandler:
		if c.name == "supertypes" {
			h.supertypes = append(h.supertypes, c.values()...)
		} else {
			h.subtypes = append(h.subtypes, c.values()...)
		}
	case *listHandler:
		for _, item := range c.items {
			h.properties = append(h.properties, item.(*propertyHandler))
		}
	case *constraintListHandler:
		h.constraints = append(h.constraints, c.items...)
	}
	return nil
}

func (h *classHandler) close(b *Builder, _ *xmlstream.Event) (bool, error) {
	assocID := h.fields["associationId"]
	c := &model.Class{
		Entity:         h.finish(b),
		LinkedDocument: h.fields["linkedDocument"],
		Supertypes:     idRefs(h.supertypes),
		Subtypes:       idRefs(h.subtypes),
		Association:    model.Ref{ID: assocID},
	}
	c.Abstract = b.boolValue(h.label(), "isAbstract", h.fields["isAbstract"], false)
	c.Leaf = b.boolValue(h.label(), "isLeaf", h.fields["isLeaf"], false)
	c.Category = model.CategoryFromStereotypes(c.Stereotypes, assocID != "")
	if err := b.model.AddClass(c); err != nil {
		b.registrationFailed(model.KindClass, h.label(), err)
		return true, nil
	}
	h.registered = true
	h.registerProperties(b, c)
	for _, con := range h.constraints {
		if err := b.model.AddConstraint(c, con); err != nil {
			b.registrationFailed(model.KindConstraint, c.Name+"::"+con.Name, err)
		}
	}
	return true, nil
}

// registerProperties registers the navigable properties of c. Properties
// with an explicit sequence key go first so that unkeyed ones are appended
// after the highest key in document order. A colliding key is replaced by a
// key derived from the sibling that holds it.
func (h *classHandler) registerProperties(b *Builder, c *model.Class) {
	var keyed, unkeyed []*model.Property
	for _, ph := range h.properties {
		p := ph.build(b)
		if !p.Navigable {
			b.report(mgerrors.ErrNonNavigableIgnored, mgerrors.SeverityDebug, c.Name+"::"+p.Name,
				"non-navigable property ignored")
			continue
		}
		if p.Sequence().IsZero() {
			unkeyed = append(unkeyed, p)
		} else {
			keyed = append(keyed, p)
		}
	}
	for _, p := range append(keyed, unkeyed...) {
		err := b.model.AddProperty(c, p)
		if errors.Is(err, model.ErrDuplicateSequence) {
			holder := siblingWithKey(b.model, c, p)
			b.report(mgerrors.ErrDuplicateSequenceKey, mgerrors.SeverityWarning, c.Name+"::"+p.Name,
				"sequence key %s already used by %s, re-keyed", p.Sequence(), holder.Name)
			err = b.model.InsertPropertyAfter(c, p, holder)
		}
		if err != nil {
			b.registrationFailed(model.KindProperty, c.Name+"::"+p.Name, err)
		}
	}
}

func siblingWithKey(m *model.Model, c *model.Class, p *model.Property) *model.Property {
	for _, s := range m.PropertiesOf(c) {
		if s.Sequence().Equal(p.Sequence()) {
			return s
		}
	}
	return nil
}

func idRefs(ids []string) []model.Ref {
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Ref{ID: id})
	}
	return out
}

// propertyHandler collects the fields of one Property. The property is
// built by its owner: a class registers it, an association end keeps it
// for detached registration.
type propertyHandler struct {
	entityFields
	fields map[string]string
}

func newPropertyHandler(*xmlstream.Event) handler {
	return &propertyHandler{fields: make(map[string]string)}
}

var propertyLeaves = map[string]bool{
	"typeId": true, "typeName": true, "cardinality": true,
	"isNavigable": true, "isAttribute": true, "isDerived": true,
	"isReadOnly": true, "isOrdered": true, "isUnique": true,
	"isComposition": true, "isAggregation": true, "initialValue": true,
	"inClassId": true, "reversePropertyId": true, "associationId": true,
	"sequenceNumber": true,
}

func (h *propertyHandler) open(b *Builder, ev *xmlstream.Event) error {
	if h.entityFields.open(b, ev) {
		return nil
	}
	if propertyLeaves[ev.Name.Local] {
		b.push(newLeaf(ev))
		return nil
	}
	b.skip(ev, "Property")
	return nil
}

func (h *propertyHandler) text(string) {}

func (h *propertyHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *propertyHandler) childDone(b *Builder, child handler) error {
	if h.entityFields.childDone(b, child) {
		return nil
	}
	if leaf, ok := child.(*leafHandler); ok {
		h.fields[leaf.name] = leaf.value()
	}
	return nil
}

func (h *propertyHandler) build(b *Builder) *model.Property {
	subject := h.label()
	p := model.NewProperty(h.ID, h.Name)
	p.Entity = h.finish(b)
	p.Class = h.fields["inClassId"]
	p.InitialValue = h.fields["initialValue"]
	p.Type = model.Ref{ID: h.fields["typeId"], Name: h.fields["typeName"]}
	p.Reverse = model.Ref{ID: h.fields["reversePropertyId"]}
	p.Association = model.Ref{ID: h.fields["associationId"]}
	p.Multiplicity = b.multiplicityValue(subject, h.fields["cardinality"])
	p.Navigable = b.boolValue(subject, "isNavigable", h.fields["isNavigable"], true)
	p.Attribute = b.boolValue(subject, "isAttribute", h.fields["isAttribute"], true)
	p.Derived = b.boolValue(subject, "isDerived", h.fields["isDerived"], false)
	p.ReadOnly = b.boolValue(subject, "isReadOnly", h.fields["isReadOnly"], false)
	p.Ordered = b.boolValue(subject, "isOrdered", h.fields["isOrdered"], false)
	p.Unique = b.boolValue(subject, "isUnique", h.fields["isUnique"], true)
	p.Composition = b.boolValue(subject, "isComposition", h.fields["isComposition"], false)
	p.Aggregation = b.boolValue(subject, "isAggregation", h.fields["isAggregation"], false)
	p.SetSequence(b.sequenceValue(subject, h.fields["sequenceNumber"]))
	return p
}

// constraintListHandler collects the constraint variants of a class.
type constraintListHandler struct {
	items []*model.Constraint
}

func (h *constraintListHandler) open(b *Builder, ev *xmlstream.Event) error {
	var variant model.ConstraintKind
	switch ev.Name.Local {
	case "FolConstraint":
		variant = model.ConstraintFOL
	case "OclConstraint":
		variant = model.ConstraintOCL
	case "TextConstraint":
		variant = model.ConstraintText
	default:
		b.skip(ev, "constraints")
		return nil
	}
	b.push(&constraintHandler{con: &model.Constraint{Variant: variant}})
	return nil
}

func (h *constraintListHandler) text(string) {}

func (h *constraintListHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *constraintListHandler) childDone(_ *Builder, child handler) error {
	if c, ok := child.(*constraintHandler); ok {
		h.items = append(h.items, c.con)
	}
	return nil
}

// constraintHandler captures one constraint. sourceType is kept only for
// the OCL and FOL variants.
type constraintHandler struct {
	con *model.Constraint
}

func (h *constraintHandler) open(b *Builder, ev *xmlstream.Event) error {
	switch ev.Name.Local {
	case "id", "name", "status", "text", "type", "sourceType", "description":
		b.push(newLeaf(ev))
	default:
		b.skip(ev, h.con.Variant.String())
	}
	return nil
}

func (h *constraintHandler) text(string) {}

func (h *constraintHandler) close(*Builder, *xmlstream.Event) (bool, error) {
	return true, nil
}

func (h *constraintHandler) childDone(_ *Builder, child handler) error {
	leaf, ok := child.(*leafHandler)
	if !ok {
		return nil
	}
	v := leaf.value()
	switch leaf.name {
	case "id":
		h.con.ID = v
	case "name":
		h.con.Name = v
	case "status":
		h.con.Status = v
	case "text":
		h.con.Text = v
	case "type":
		h.con.Type = v
	case "sourceType":
		if h.con.Variant != model.ConstraintText {
			h.con.SourceType = v
		}
	case "description":
		if v != "" {
			h.con.Comments = append(h.con.Comments, v)
		}
	}
	return nil
}
