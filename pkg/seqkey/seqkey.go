// Package seqkey implements structured sequence keys: dotted, hierarchical
// ordering keys such as "1.2.3" used to order sibling properties.
//
// Keys compare component-wise; a key that is a proper prefix of another
// sorts first. Suffixed derivation ("3" -> "3.1") inserts a sibling between
// "3" and "4" without renumbering either.
package seqkey

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Key is an immutable structured sequence key. The zero value is the empty key,
// which sorts before every non-empty key.
type Key struct {
	parts []int
}

// Parse parses a dotted key. Components must be non-negative integers.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("sequence key: empty")
	}
	fields := strings.Split(s, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return Key{}, fmt.Errorf("sequence key %q: invalid component %q", s, f)
		}
		parts = append(parts, n)
	}
	return Key{parts: parts}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// New builds a key from its components.
func New(parts ...int) Key {
	return Key{parts: slices.Clone(parts)}
}

// IsZero reports whether k is the empty key.
func (k Key) IsZero() bool {
	return len(k.parts) == 0
}

// Components returns a copy of the key components.
func (k Key) Components() []int {
	return slices.Clone(k.parts)
}

// Depth returns the number of components.
func (k Key) Depth() int {
	return len(k.parts)
}

// Compare returns -1, 0 or +1 comparing k to other component by component.
func (k Key) Compare(other Key) int {
	return slices.Compare(k.parts, other.parts)
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

// Equal reports whether k and other have identical components.
func (k Key) Equal(other Key) bool {
	return k.Compare(other) == 0
}

// WithSuffix derives a child key by appending n as a new last component.
func (k Key) WithSuffix(n int) Key {
	parts := make([]int, len(k.parts)+1)
	copy(parts, k.parts)
	parts[len(k.parts)] = n
	return Key{parts: parts}
}

// Next returns the sibling key following k at the same depth.
func (k Key) Next() Key {
	if k.IsZero() {
		return New(1)
	}
	parts := slices.Clone(k.parts)
	parts[len(parts)-1]++
	return Key{parts: parts}
}

// String returns the dotted form.
func (k Key) String() string {
	if k.IsZero() {
		return ""
	}
	var b strings.Builder
	for i, p := range k.parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(p))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// After derives a key that sorts after after and before the next key of
// taken, without colliding with any key of taken. When no key fits strictly
// between after and its successor, the result is placed after the successor.
func After(after Key, taken []Key) Key {
	bound, ok := successor(after, taken)
	if !ok {
		if after.IsZero() {
			return New(1)
		}
		return after.Next()
	}
	p := after
	for {
		if !bound.hasPrefix(p) {
			return p.WithSuffix(1)
		}
		if bound.Depth() == p.Depth() {
			return After(bound, taken)
		}
		if b := bound.parts[p.Depth()]; b > 0 {
			return p.WithSuffix(b / 2)
		}
		p = p.WithSuffix(0)
	}
}

func successor(after Key, taken []Key) (Key, bool) {
	var bound Key
	found := false
	for _, t := range taken {
		if t.Compare(after) > 0 && (!found || t.Less(bound)) {
			bound = t
			found = true
		}
	}
	return bound, found
}

func (k Key) hasPrefix(p Key) bool {
	return len(k.parts) >= len(p.parts) && slices.Equal(k.parts[:len(p.parts)], p.parts)
}

// Last returns the greatest key of keys, or the zero key.
func Last(keys []Key) Key {
	var last Key
	for _, k := range keys {
		if last.Less(k) {
			last = k
		}
	}
	return last
}

// Sort sorts keys in ascending order.
func Sort(keys []Key) {
	slices.SortFunc(keys, Key.Compare)
}
