package model

import (
	"slices"
	"strings"
)

// Well-known stereotypes in normalized form.
const (
	StereotypeFeatureType       = "featuretype"
	StereotypeType              = "type"
	StereotypeDataType          = "datatype"
	StereotypeUnion             = "union"
	StereotypeEnumeration       = "enumeration"
	StereotypeCodeList          = "codelist"
	StereotypeApplicationSchema = "application schema"
	StereotypeSchema            = "schema"
	StereotypeLeaf              = "leaf"
	StereotypeProperty          = "property"
	StereotypeVoidable          = "voidable"
	StereotypePropertyMetadata  = "propertymetadata"
	StereotypeAIXMExtension     = "aixmextension"
	StereotypeMixin             = "mixin"
	StereotypeBasicType         = "basictype"
	StereotypeADEElement        = "adeelement"
)

var stereotypeAliases = map[string]string{
	"featuretype":        StereotypeFeatureType,
	"feature":            StereotypeFeatureType,
	"type":               StereotypeType,
	"objecttype":         StereotypeType,
	"datatype":           StereotypeDataType,
	"union":              StereotypeUnion,
	"enumeration":        StereotypeEnumeration,
	"codelist":           StereotypeCodeList,
	"application schema": StereotypeApplicationSchema,
	"applicationschema":  StereotypeApplicationSchema,
	"schema":             StereotypeSchema,
	"leaf":               StereotypeLeaf,
	"property":           StereotypeProperty,
	"voidable":           StereotypeVoidable,
	"propertymetadata":   StereotypePropertyMetadata,
	"aixmextension":      StereotypeAIXMExtension,
	"extension":          StereotypeAIXMExtension,
	"mixin":              StereotypeMixin,
	"basictype":          StereotypeBasicType,
	"adeelement":         StereotypeADEElement,
}

// NormalizeStereotype maps a stereotype to its well-known form. Unknown
// stereotypes are lower-cased and trimmed, and ok is false.
func NormalizeStereotype(s string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if known, ok := stereotypeAliases[key]; ok {
		return known, true
	}
	return key, false
}

// Stereotypes is an ordered set of normalized stereotypes.
type Stereotypes []string

// Has reports whether the set contains the normalized form of s.
func (st Stereotypes) Has(s string) bool {
	norm, _ := NormalizeStereotype(s)
	return slices.Contains(st, norm)
}

// Add inserts the normalized form of s unless present.
func (st *Stereotypes) Add(s string) {
	norm, _ := NormalizeStereotype(s)
	if norm == "" || slices.Contains(*st, norm) {
		return
	}
	*st = append(*st, norm)
}

// Remove deletes the normalized form of s. It reports whether it was present.
func (st *Stereotypes) Remove(s string) bool {
	norm, _ := NormalizeStereotype(s)
	i := slices.Index(*st, norm)
	if i < 0 {
		return false
	}
	*st = slices.Delete(*st, i, i+1)
	if len(*st) == 0 {
		*st = nil
	}
	return true
}

// Replace swaps old for replacement, keeping its position.
func (st Stereotypes) Replace(old, replacement string) {
	oldNorm, _ := NormalizeStereotype(old)
	newNorm, _ := NormalizeStereotype(replacement)
	if i := slices.Index(st, oldNorm); i >= 0 {
		st[i] = newNorm
	}
}
