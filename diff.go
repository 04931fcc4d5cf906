package modelgraph

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jacoelho/modelgraph/internal/diff"
)

type (
	// DiffKind is the type of a difference record.
	DiffKind = diff.Kind
	// DiffResult holds the sorted differences of one schema.
	DiffResult = diff.Result
	// Difference is one typed difference of a schema, class or property.
	Difference = diff.Difference
	// DiffElement identifies the schema, class or property that differs.
	DiffElement = diff.Element
)

// ParseDiffKinds parses difference kind names such as "NAME" or
// "multiplicity".
func ParseDiffKinds(names ...string) ([]DiffKind, error) {
	kinds, err := diff.ParseKinds(names)
	if err != nil {
		return nil, err
	}
	return sets.List(kinds), nil
}

// Diff compares every selected schema of ref with the schema of the same
// name in d. With kinds given only differences of those kinds are returned,
// together with schema version changes.
func (d *Document) Diff(ref *Document, kinds ...DiffKind) []*DiffResult {
	results := diff.Models(ref.model, d.model)
	if len(kinds) == 0 {
		return results
	}
	filter := sets.New(kinds...)
	for i, r := range results {
		results[i] = r.Filter(filter)
	}
	return results
}
