package model

// Association joins two properties. Each end property is owned by its class
// and points back to the association.
type Association struct {
	Entity
	End1       Ref
	End2       Ref
	AssocClass Ref
}

// Kind implements Element.
func (a *Association) Kind() Kind { return KindAssociation }

// Ends returns both end references.
func (a *Association) Ends() [2]Ref {
	return [2]Ref{a.End1, a.End2}
}

func (a *Association) clone() *Association {
	out := *a
	out.Entity = a.Entity.clone()
	return &out
}
