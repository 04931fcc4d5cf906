package model

import "slices"

// ConstraintKind selects the constraint variant.
type ConstraintKind uint8

const (
	ConstraintText ConstraintKind = iota + 1
	ConstraintOCL
	ConstraintFOL
)

// String returns the document element name of the variant.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintText:
		return "TextConstraint"
	case ConstraintOCL:
		return "OclConstraint"
	case ConstraintFOL:
		return "FolConstraint"
	default:
		return "Constraint"
	}
}

// Constraint is a FOL, OCL or free-text constraint declared on a class.
// SourceType is only meaningful for the OCL and FOL variants.
type Constraint struct {
	ID         string
	Owner      string
	Name       string
	Status     string
	Text       string
	Type       string
	SourceType string
	Comments   []string
	Variant    ConstraintKind
}

// ElementID implements Element.
func (c *Constraint) ElementID() string { return c.ID }

// ElementName implements Element.
func (c *Constraint) ElementName() string { return c.Name }

// Kind implements Element.
func (c *Constraint) Kind() Kind { return KindConstraint }

// SameDeclaration reports whether c and other declare the same constraint:
// same variant, name and body text.
func (c *Constraint) SameDeclaration(other *Constraint) bool {
	return c.Variant == other.Variant && c.Name == other.Name && c.Text == other.Text
}

func (c *Constraint) clone() *Constraint {
	out := *c
	out.Comments = slices.Clone(c.Comments)
	return &out
}
