// Package wit holds the resolved semantic model of a WIT document.
//
// A Document owns flat slices of worlds, interfaces, types and packages;
// every cross-entity reference is a positional index into those slices or,
// for primitives, a builtin name. The type algebra is a sealed tagged union
// (TypeKind); the structural classification of raw JSON input happens once
// in DecodeDocument, and everywhere downstream the variants are handled by
// exhaustive type switches.
//
// Two ingestion paths produce a Document:
//
//	doc, err := wit.DecodeDocument(r)        // the JSON serialization
//	b := wit.NewDocumentBuilder()            // go.bytecodealliance.org types
//
// The model is immutable after load. WIT forbids cyclic type definitions,
// so the reference graph is acyclic and the loader does not re-validate
// referential integrity beyond bounds checks at access time.
package wit
