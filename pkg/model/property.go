package model

import "github.com/jacoelho/modelgraph/pkg/seqkey"

// Property is an attribute or association role owned by a class.
type Property struct {
	Entity
	Class        string
	InitialValue string
	Type         Ref
	Reverse      Ref
	Association  Ref
	sequence     seqkey.Key
	Multiplicity Multiplicity
	Navigable    bool
	Attribute    bool
	Derived      bool
	ReadOnly     bool
	Ordered      bool
	Unique       bool
	Composition  bool
	Aggregation  bool
}

// NewProperty returns a navigable attribute with multiplicity 1 and unique values.
func NewProperty(id, name string) *Property {
	return &Property{
		Entity:       Entity{ID: id, Name: name},
		Multiplicity: One,
		Navigable:    true,
		Attribute:    true,
		Unique:       true,
	}
}

// Kind implements Element.
func (p *Property) Kind() Kind { return KindProperty }

// Sequence returns the structured sequence key ordering p among its siblings.
func (p *Property) Sequence() seqkey.Key {
	return p.sequence
}

// SetSequence assigns the key of a property not yet owned by a class.
// Use Model.Resequence for owned properties.
func (p *Property) SetSequence(k seqkey.Key) {
	p.sequence = k
}

// IsRole reports whether p is an association role.
func (p *Property) IsRole() bool {
	return !p.Attribute || !p.Association.IsZero()
}

func (p *Property) clone() *Property {
	out := *p
	out.Entity = p.Entity.clone()
	return &out
}
