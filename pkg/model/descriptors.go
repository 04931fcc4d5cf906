package model

import "slices"

// Descriptor names one free-text descriptor of an entity.
type Descriptor uint8

const (
	DescriptorAlias Descriptor = iota + 1
	DescriptorDefinition
	DescriptorDescription
	DescriptorDocumentation
	DescriptorLegalBasis
	DescriptorPrimaryCode
	DescriptorGlobalIdentifier
	DescriptorLanguage
)

// String returns the element name of the descriptor.
func (d Descriptor) String() string {
	switch d {
	case DescriptorAlias:
		return "alias"
	case DescriptorDefinition:
		return "definition"
	case DescriptorDescription:
		return "description"
	case DescriptorDocumentation:
		return "documentation"
	case DescriptorLegalBasis:
		return "legalBasis"
	case DescriptorPrimaryCode:
		return "primaryCode"
	case DescriptorGlobalIdentifier:
		return "globalIdentifier"
	case DescriptorLanguage:
		return "language"
	default:
		return "unknown"
	}
}

// Descriptors carries the free-text descriptors of an entity.
type Descriptors struct {
	Alias                 string
	Definition            string
	Description           string
	Documentation         string
	LegalBasis            string
	PrimaryCode           string
	GlobalIdentifier      string
	Language              string
	Examples              []string
	DataCaptureStatements []string
}

// Get returns the value of a single-valued descriptor.
func (d *Descriptors) Get(which Descriptor) string {
	switch which {
	case DescriptorAlias:
		return d.Alias
	case DescriptorDefinition:
		return d.Definition
	case DescriptorDescription:
		return d.Description
	case DescriptorDocumentation:
		return d.Documentation
	case DescriptorLegalBasis:
		return d.LegalBasis
	case DescriptorPrimaryCode:
		return d.PrimaryCode
	case DescriptorGlobalIdentifier:
		return d.GlobalIdentifier
	case DescriptorLanguage:
		return d.Language
	default:
		return ""
	}
}

// Set assigns a single-valued descriptor. It reports false for an unknown descriptor.
func (d *Descriptors) Set(which Descriptor, value string) bool {
	switch which {
	case DescriptorAlias:
		d.Alias = value
	case DescriptorDefinition:
		d.Definition = value
	case DescriptorDescription:
		d.Description = value
	case DescriptorDocumentation:
		d.Documentation = value
	case DescriptorLegalBasis:
		d.LegalBasis = value
	case DescriptorPrimaryCode:
		d.PrimaryCode = value
	case DescriptorGlobalIdentifier:
		d.GlobalIdentifier = value
	case DescriptorLanguage:
		d.Language = value
	default:
		return false
	}
	return true
}

// DescriptorByName maps a document element name to a descriptor.
func DescriptorByName(name string) (Descriptor, bool) {
	switch name {
	case "alias":
		return DescriptorAlias, true
	case "definition":
		return DescriptorDefinition, true
	case "description":
		return DescriptorDescription, true
	case "documentation":
		return DescriptorDocumentation, true
	case "legalBasis":
		return DescriptorLegalBasis, true
	case "primaryCode":
		return DescriptorPrimaryCode, true
	case "globalIdentifier":
		return DescriptorGlobalIdentifier, true
	case "language":
		return DescriptorLanguage, true
	default:
		return 0, false
	}
}

func (d Descriptors) clone() Descriptors {
	d.Examples = slices.Clone(d.Examples)
	d.DataCaptureStatements = slices.Clone(d.DataCaptureStatements)
	return d
}
