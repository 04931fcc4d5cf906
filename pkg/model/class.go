package model

import (
	"slices"
	"strings"
)

// Category classifies a class.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryFeature
	CategoryObject
	CategoryDataType
	CategoryUnion
	CategoryEnumeration
	CategoryCodeList
	CategoryAssociationClass
	CategoryMixin
	CategoryAIXMExtension
	CategoryBasicType
)

var categoryNames = map[Category]string{
	CategoryUnknown:          "unknown",
	CategoryFeature:          "feature",
	CategoryObject:           "object",
	CategoryDataType:         "datatype",
	CategoryUnion:            "union",
	CategoryEnumeration:      "enumeration",
	CategoryCodeList:         "codelist",
	CategoryAssociationClass: "association-class",
	CategoryMixin:            "mixin",
	CategoryAIXMExtension:    "aixm-extension",
	CategoryBasicType:        "basic-type",
}

// String returns the category name.
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParseCategory maps a category name back to a Category.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if name == s {
			return c, true
		}
	}
	return CategoryUnknown, false
}

// IsReferenceable reports whether instances of the category have identity
// and can be targets of associations.
func (c Category) IsReferenceable() bool {
	return c == CategoryFeature || c == CategoryObject
}

// CategoryFromStereotypes derives the category from normalized stereotypes.
func CategoryFromStereotypes(st Stereotypes, isAssociationClass bool) Category {
	switch {
	case slices.Contains(st, StereotypeFeatureType):
		return CategoryFeature
	case slices.Contains(st, StereotypeDataType):
		return CategoryDataType
	case slices.Contains(st, StereotypeUnion):
		return CategoryUnion
	case slices.Contains(st, StereotypeEnumeration):
		return CategoryEnumeration
	case slices.Contains(st, StereotypeCodeList):
		return CategoryCodeList
	case slices.Contains(st, StereotypeAIXMExtension):
		return CategoryAIXMExtension
	case slices.Contains(st, StereotypeMixin):
		return CategoryMixin
	case slices.Contains(st, StereotypeBasicType):
		return CategoryBasicType
	case isAssociationClass:
		return CategoryAssociationClass
	default:
		return CategoryObject
	}
}

// CategoryStereotype returns the stereotype that marks a category, if any.
func CategoryStereotype(c Category) string {
	switch c {
	case CategoryFeature:
		return StereotypeFeatureType
	case CategoryObject:
		return StereotypeType
	case CategoryDataType:
		return StereotypeDataType
	case CategoryUnion:
		return StereotypeUnion
	case CategoryEnumeration:
		return StereotypeEnumeration
	case CategoryCodeList:
		return StereotypeCodeList
	case CategoryAIXMExtension:
		return StereotypeAIXMExtension
	case CategoryMixin:
		return StereotypeMixin
	case CategoryBasicType:
		return StereotypeBasicType
	default:
		return ""
	}
}

// Class is a classifier of the model.
type Class struct {
	Entity
	Package        string
	LinkedDocument string
	Supertypes     []Ref
	Subtypes       []Ref
	Association    Ref
	properties     []string
	constraints    []string
	Category       Category
	Abstract       bool
	Leaf           bool
}

// Kind implements Element.
func (c *Class) Kind() Kind { return KindClass }

// PropertyIDs returns the identifiers of the owned properties in sequence key order.
func (c *Class) PropertyIDs() []string {
	return slices.Clone(c.properties)
}

// ConstraintIDs returns the identifiers of the directly declared constraints.
func (c *Class) ConstraintIDs() []string {
	return slices.Clone(c.constraints)
}

// HasSupertype reports whether id is listed as a supertype.
func (c *Class) HasSupertype(id string) bool {
	return indexOfRef(c.Supertypes, id) >= 0
}

// HasSubtype reports whether id is listed as a subtype.
func (c *Class) HasSubtype(id string) bool {
	return indexOfRef(c.Subtypes, id) >= 0
}

func (c *Class) clone() *Class {
	out := *c
	out.Entity = c.Entity.clone()
	out.Supertypes = slices.Clone(c.Supertypes)
	out.Subtypes = slices.Clone(c.Subtypes)
	out.properties = slices.Clone(c.properties)
	out.constraints = slices.Clone(c.constraints)
	return &out
}
