// Package model holds the entity graph of an application-schema model: the
// Model registry maps identifiers to classes, properties, associations,
// packages and constraints, and records which schema packages are selected
// for processing.
//
// Cross-entity relationships are Ref values carrying the target identifier
// and a display name. Refs start unresolved; the resolution pass marks those
// whose target is registered. Navigation helpers only follow resolved refs.
//
// Entities are never deleted one by one. Transformations that drop entities
// build a consistent snapshot with Without and install it with ReplaceWith.
package model
