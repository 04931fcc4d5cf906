package model

import (
	"maps"
	"slices"
)

// TaggedValues maps a tag name to its ordered list of values.
type TaggedValues map[string][]string

// Has reports whether the tag is present, even with no values.
func (tv TaggedValues) Has(name string) bool {
	_, ok := tv[name]
	return ok
}

// Get returns the first value of a tag.
func (tv TaggedValues) Get(name string) string {
	if vals := tv[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Values returns a copy of all values of a tag.
func (tv TaggedValues) Values(name string) []string {
	return slices.Clone(tv[name])
}

// Set replaces the values of a tag.
func (tv *TaggedValues) Set(name string, values ...string) {
	if *tv == nil {
		*tv = make(TaggedValues)
	}
	(*tv)[name] = slices.Clone(values)
}

// Add appends a value to a tag.
func (tv *TaggedValues) Add(name, value string) {
	if *tv == nil {
		*tv = make(TaggedValues)
	}
	(*tv)[name] = append((*tv)[name], value)
}

// Delete removes a tag.
func (tv TaggedValues) Delete(name string) {
	delete(tv, name)
}

// Names returns the tag names in sorted order.
func (tv TaggedValues) Names() []string {
	return slices.Sorted(maps.Keys(tv))
}

// Clone returns a deep copy.
func (tv TaggedValues) Clone() TaggedValues {
	if tv == nil {
		return nil
	}
	out := make(TaggedValues, len(tv))
	for k, v := range tv {
		out[k] = slices.Clone(v)
	}
	return out
}
