// Package errors provides structured error types for the wit-codegen toolchain.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, scope name, WIT type and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEmit, errors.KindSchema).
//		Scope("wasi:filesystem/types").
//		Path("descriptor-stat", "type").
//		Detail("unknown type kind").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnresolvedSymbol("types", "descriptor")
//	err := errors.Unsupported(errors.PhaseEmit, "bare import clause")
//
// All errors implement the standard error interface and support errors.Is/As.
// The generator performs no local recovery: every error unwinds to the caller
// and aborts the run.
package errors
