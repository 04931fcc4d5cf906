package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Unbounded is the MaxOccurs value of an unbounded multiplicity.
const Unbounded = -1

// Multiplicity is the min/max occurrence of a property.
type Multiplicity struct {
	MinOccurs int
	MaxOccurs int
}

// One is the default multiplicity 1..1.
var One = Multiplicity{MinOccurs: 1, MaxOccurs: 1}

// ParseMultiplicity parses "1", "0..1", "1..*", "*" and "n..m".
func ParseMultiplicity(s string) (Multiplicity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return One, nil
	}
	if s == "*" {
		return Multiplicity{MinOccurs: 0, MaxOccurs: Unbounded}, nil
	}
	lower, upper, ranged := strings.Cut(s, "..")
	minOccurs, err := strconv.Atoi(strings.TrimSpace(lower))
	if err != nil || minOccurs < 0 {
		return Multiplicity{}, fmt.Errorf("multiplicity %q: invalid lower bound", s)
	}
	if !ranged {
		return Multiplicity{MinOccurs: minOccurs, MaxOccurs: minOccurs}, nil
	}
	upper = strings.TrimSpace(upper)
	if upper == "*" || upper == "n" {
		return Multiplicity{MinOccurs: minOccurs, MaxOccurs: Unbounded}, nil
	}
	maxOccurs, err := strconv.Atoi(upper)
	if err != nil || maxOccurs < minOccurs {
		return Multiplicity{}, fmt.Errorf("multiplicity %q: invalid upper bound", s)
	}
	return Multiplicity{MinOccurs: minOccurs, MaxOccurs: maxOccurs}, nil
}

// IsUnbounded reports whether the upper bound is unbounded.
func (m Multiplicity) IsUnbounded() bool {
	return m.MaxOccurs == Unbounded
}

// IsMultiValued reports whether more than one value is allowed.
func (m Multiplicity) IsMultiValued() bool {
	return m.IsUnbounded() || m.MaxOccurs > 1
}

// String returns the UML notation.
func (m Multiplicity) String() string {
	upper := "*"
	if !m.IsUnbounded() {
		upper = strconv.Itoa(m.MaxOccurs)
	}
	if !m.IsUnbounded() && m.MinOccurs == m.MaxOccurs {
		return upper
	}
	return strconv.Itoa(m.MinOccurs) + ".." + upper
}
