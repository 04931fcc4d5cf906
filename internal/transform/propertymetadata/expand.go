package propertymetadata

import (
	"strings"
	"unicode"
	"unicode/utf8"

	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/pkg/model"
)

type expander struct {
	model     *model.Model
	sink      *mgerrors.Sink
	defaults  Template
	templates []Template
}

type target struct {
	class *model.Class
	prop  *model.Property
}

func (e *expander) run() {
	var targets []target
	scope := e.model.SelectedScope()
	for _, c := range e.model.Classes() {
		if !scope.Contains(c) {
			continue
		}
		for _, p := range e.model.PropertiesOf(c) {
			if p.Stereotypes.Has(model.StereotypePropertyMetadata) {
				targets = append(targets, target{class: c, prop: p})
			}
		}
	}
	for _, t := range targets {
		e.expand(t.class, t.prop)
	}
}

// template returns the effective settings for typeName: the first template
// naming it, with unset fields taken from the parameters.
func (e *expander) template(typeName string) Template {
	out := e.defaults
	out.TypeName = typeName
	for _, t := range e.templates {
		if t.TypeName != typeName {
			continue
		}
		if t.Mode != "" {
			out.Mode = t.Mode
		}
		if t.NameSuffix != "" {
			out.NameSuffix = t.NameSuffix
		}
		if t.Cardinality != "" {
			out.Cardinality = t.Cardinality
		}
		break
	}
	return out
}

func (e *expander) expand(c *model.Class, p *model.Property) {
	subject := c.Name + "::" + p.Name
	typeName := strings.TrimSpace(p.TaggedValues.Get(TagMetadataType))
	if typeName == "" {
		typeName = e.defaults.TypeName
	}
	if typeName == "" {
		e.sink.Warnf(mgerrors.ErrInvalidConfiguration, subject, "no metadata type configured; property left unchanged")
		return
	}
	tmpl := e.template(typeName)
	mode, err := parseMode(tmpl.Mode)
	if err != nil {
		e.sink.Warnf(mgerrors.ErrInvalidConfiguration, subject, "template for %s: %v", typeName, err)
		return
	}
	mult, err := model.ParseMultiplicity(tmpl.Cardinality)
	if err != nil {
		e.sink.Warnf(mgerrors.ErrInvalidConfiguration, subject, "template for %s: %v", typeName, err)
		return
	}
	metaType, found := e.metadataClass(c, typeName)
	if mode == ModeAssociation && !found {
		e.sink.Warnf(mgerrors.ErrUnresolvedReference, subject, "metadata type %s not found; property left unchanged", typeName)
		return
	}

	meta := model.NewProperty(model.NewID("prop-"), p.Name+tmpl.NameSuffix)
	meta.Multiplicity = mult
	meta.Type = model.Ref{Name: typeName}
	if found {
		meta.Type = model.RefTo(metaType.ID, metaType.Name)
	}
	if existing, ok := e.model.PropertyByName(c, meta.Name); ok {
		e.sink.Warnf(mgerrors.ErrDuplicateID, subject, "class already has property %s; property left unchanged", existing.Name)
		return
	}
	if err := e.model.InsertPropertyAfter(c, meta, p); err != nil {
		e.sink.Errorf(mgerrors.ErrTransformation, subject, "add metadata property: %v", err)
		return
	}
	if mode == ModeAssociation {
		e.associate(c, meta, metaType)
	}
	p.Stereotypes.Remove(model.StereotypePropertyMetadata)
	e.sink.Debugf(mgerrors.ErrTransformation, subject, "metadata %s %s of type %s added", mode, meta.Name, typeName)
}

func (e *expander) metadataClass(c *model.Class, typeName string) (*model.Class, bool) {
	if schema, ok := e.model.SchemaOf(c); ok {
		if mc, ok := e.model.ClassByName(schema, typeName); ok {
			return mc, true
		}
	}
	return e.model.FindClassByName(typeName)
}

// associate turns meta into the navigable end of a directed association
// from c to metaType. A referenceable metadata type gets a non-navigable
// reverse role.
func (e *expander) associate(c *model.Class, meta *model.Property, metaType *model.Class) {
	a := &model.Association{
		Entity: model.Entity{ID: model.NewID("assoc-"), Name: c.Name + "_" + meta.Name},
		End1:   model.RefTo(meta.ID, meta.Name),
	}
	meta.Attribute = false
	meta.Association = model.RefTo(a.ID, a.Name)

	if metaType.Category.IsReferenceable() {
		reverse := model.NewProperty(model.NewID("prop-"), lowerFirst(c.Name))
		reverse.Class = metaType.ID
		reverse.Navigable = false
		reverse.Attribute = false
		reverse.Multiplicity = model.Multiplicity{MinOccurs: 0, MaxOccurs: model.Unbounded}
		reverse.Type = model.RefTo(c.ID, c.Name)
		reverse.Association = meta.Association
		reverse.Reverse = model.RefTo(meta.ID, meta.Name)
		if err := e.model.AddDetachedProperty(reverse); err != nil {
			e.sink.Errorf(mgerrors.ErrTransformation, c.Name+"::"+meta.Name, "add reverse role: %v", err)
		} else {
			meta.Reverse = model.RefTo(reverse.ID, reverse.Name)
			a.End2 = model.RefTo(reverse.ID, reverse.Name)
		}
	}
	if err := e.model.AddAssociation(a); err != nil {
		e.sink.Errorf(mgerrors.ErrTransformation, c.Name+"::"+meta.Name, "add association: %v", err)
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
