package diff

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Kind is the type of a difference record.
type Kind string

const (
	KindName             Kind = "NAME"
	KindDocumentation    Kind = "DOCUMENTATION"
	KindMultiplicity     Kind = "MULTIPLICITY"
	KindValueType        Kind = "VALUETYPE"
	KindClass            Kind = "CLASS"
	KindSupertype        Kind = "SUPERTYPE"
	KindSubpackage       Kind = "SUBPACKAGE"
	KindProperty         Kind = "PROPERTY"
	KindEnum             Kind = "ENUM"
	KindStereotype       Kind = "STEREOTYPE"
	KindTag              Kind = "TAG"
	KindAlias            Kind = "ALIAS"
	KindDefinition       Kind = "DEFINITION"
	KindDescription      Kind = "DESCRIPTION"
	KindPrimaryCode      Kind = "PRIMARYCODE"
	KindGlobalIdentifier Kind = "GLOBALIDENTIFIER"
	KindLegalBasis       Kind = "LEGALBASIS"
	KindProfile          Kind = "PROFILE"
	KindCategory         Kind = "CATEGORY"
	KindConstraint       Kind = "CONSTRAINT"
	KindAbstract         Kind = "ABSTRACT"

	// KindVersion records a schema version change. It is always compared
	// and survives every filter.
	KindVersion Kind = "VERSION"
)

// AllKinds lists every filterable kind.
var AllKinds = []Kind{
	KindName, KindDocumentation, KindMultiplicity, KindValueType, KindClass,
	KindSupertype, KindSubpackage, KindProperty, KindEnum, KindStereotype,
	KindTag, KindAlias, KindDefinition, KindDescription, KindPrimaryCode,
	KindGlobalIdentifier, KindLegalBasis, KindProfile, KindCategory,
	KindConstraint, KindAbstract,
}

// ErrUnknownKind is returned when a kind name is not recognized.
var ErrUnknownKind = errors.New("unknown difference kind")

// ParseKind maps a case-insensitive name to a Kind. Underscores and dashes
// are ignored, so "value_type" and "valueType" both select KindValueType.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToUpper(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(s)))
	if Kind(norm) == KindVersion {
		return KindVersion, nil
	}
	for _, k := range AllKinds {
		if Kind(norm) == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseKinds parses every name and joins the errors of unknown ones.
func ParseKinds(names []string) (sets.Set[Kind], error) {
	out := sets.New[Kind]()
	var errs []error
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Insert(k)
	}
	return out, errors.Join(errs...)
}

// Operation says how an element or value changed.
type Operation uint8

const (
	OpInsert Operation = iota + 1
	OpDelete
	OpChange
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpChange:
		return "change"
	default:
		return "unknown"
	}
}
