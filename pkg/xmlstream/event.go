package xmlstream

// EventKind identifies the kind of an Event.
type EventKind uint8

const (
	EventStartElement EventKind = iota + 1
	EventEndElement
	EventCharData
)

// String returns a short name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventStartElement:
		return "start"
	case EventEndElement:
		return "end"
	case EventCharData:
		return "chardata"
	default:
		return "unknown"
	}
}

// QName is a namespace-qualified name.
type QName struct {
	Namespace string
	Local     string
}

// String returns the name in {namespace}local form, or local when unqualified.
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// Attr is one attribute of a start element. Namespace declarations are not
// reported as attributes.
type Attr struct {
	Name  QName
	Value string
}

// Event is one token of the stream. Depth is the element nesting depth of
// the event: 1 for the root start and end, 1 for character data directly
// inside the root, and so on.
type Event struct {
	Name   QName
	Text   string
	Attrs  []Attr
	Kind   EventKind
	Line   int
	Column int
	Depth  int
}

// Attr returns the value of the attribute with the given local name.
func (e *Event) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
