package model

import "slices"

// Package groups classes and sub-packages. A package with IsSchema set is
// the root of an application schema.
type Package struct {
	Entity
	Parent          string
	TargetNamespace string
	XMLNS           string
	XSDDocument     string
	Version         string
	packages        []string
	classes         []string
	IsSchema        bool
}

// Kind implements Element.
func (p *Package) Kind() Kind { return KindPackage }

// PackageIDs returns the direct sub-package identifiers.
func (p *Package) PackageIDs() []string {
	return slices.Clone(p.packages)
}

// ClassIDs returns the identifiers of the directly contained classes.
func (p *Package) ClassIDs() []string {
	return slices.Clone(p.classes)
}

// IsSchemaRoot reports whether the package roots an application schema,
// either by flag or by declaring a target namespace.
func (p *Package) IsSchemaRoot() bool {
	return p.IsSchema || p.TargetNamespace != "" || p.Stereotypes.Has(StereotypeApplicationSchema)
}

func (p *Package) clone() *Package {
	out := *p
	out.Entity = p.Entity.clone()
	out.packages = slices.Clone(p.packages)
	out.classes = slices.Clone(p.classes)
	return &out
}
