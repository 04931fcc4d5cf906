package model

// Ref is a weak reference to another entity by identifier. Name is a
// best-effort label kept even when the target is absent.
type Ref struct {
	ID       string
	Name     string
	Resolved bool
}

// RefTo returns a resolved reference to an element.
func RefTo(id, name string) Ref {
	return Ref{ID: id, Name: name, Resolved: id != ""}
}

// IsZero reports whether r names nothing.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// Label returns Name, or ID when no name is known.
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Unresolved returns a copy of r marked unresolved.
func (r Ref) Unresolved() Ref {
	r.Resolved = false
	return r
}

func indexOfRef(refs []Ref, id string) int {
	for i, r := range refs {
		if r.ID == id {
			return i
		}
	}
	return -1
}
