// Package codegen turns a resolved WIT document into TypeScript source.
//
// Per interface it emits two parallel surfaces from a single fold over the
// type algebra: native type declarations, and a nested $cm namespace of
// canonical-ABI descriptor constructions. One fold producing both keeps the
// surfaces structurally aligned; a type either appears in both or fails.
//
// # Pipeline
//
//	Document → [walker] → per-interface scope + emitter → sequencer → render
//
//	Scope      - per-interface symbol table ($name vs src.$cm.$name)
//	emitter    - dual fold: (declaration, descriptor) per type node
//	sequencer  - stable reorder deferring function descriptors to the end
//	importSet  - aggregated file header (runtime, base aliases, foreign nss)
//
// Entry point:
//
//	src, err := codegen.Generate(doc, codegen.Options{})
//
// Emission order follows source declaration order except function
// descriptors, which may reference any type in their interface and are
// moved after all type descriptors. WIT forbids cyclic type definitions,
// so source order is otherwise reference-safe.
package codegen
