// Package modelgraph loads conceptual UML models from their XML
// serialization into an identifier-indexed entity registry, resolves the
// references between entities, and runs rule-gated transformation
// pipelines over the result.
//
// Loading is strict about well-formedness and lenient about content:
// unknown elements, unresolved references and invalid values are recorded
// as diagnostics on the Document instead of failing the load.
package modelgraph
