package model

import (
	"slices"

	"github.com/google/uuid"
)

// Kind identifies the concrete type of an Element.
type Kind uint8

const (
	KindPackage Kind = iota + 1
	KindClass
	KindProperty
	KindAssociation
	KindConstraint
)

// String returns the document element name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "Package"
	case KindClass:
		return "Class"
	case KindProperty:
		return "Property"
	case KindAssociation:
		return "Association"
	case KindConstraint:
		return "Constraint"
	default:
		return "Unknown"
	}
}

// Element is any entity registered in a Model.
type Element interface {
	ElementID() string
	ElementName() string
	Kind() Kind
}

// ImageRef references a diagram or image associated with an entity.
type ImageRef struct {
	ID     string
	Name   string
	Path   string
	Width  int
	Height int
}

// Entity is the capability set shared by packages, classes, properties and
// associations.
type Entity struct {
	TaggedValues TaggedValues
	ID           string
	Name         string
	Stereotypes  Stereotypes
	Profiles     Profiles
	Diagrams     []ImageRef
	Descriptors  Descriptors
}

// ElementID returns the identifier.
func (e *Entity) ElementID() string {
	return e.ID
}

// ElementName returns the name.
func (e *Entity) ElementName() string {
	return e.Name
}

// Alias returns the alias descriptor.
func (e *Entity) Alias() string {
	return e.Descriptors.Alias
}

func (e Entity) clone() Entity {
	e.TaggedValues = e.TaggedValues.Clone()
	e.Stereotypes = slices.Clone(e.Stereotypes)
	e.Profiles = e.Profiles.Clone()
	e.Diagrams = slices.Clone(e.Diagrams)
	e.Descriptors = e.Descriptors.clone()
	return e
}

// NewID returns a fresh identifier for an entity created by a transformation.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}
