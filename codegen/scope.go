package codegen

import (
	"github.com/wippyai/wit-codegen/errors"
)

// symbol records how a name declared in the current scope is addressed when
// generated code references its descriptor.
type symbol struct {
	imported bool
	source   string // namespace of the declaring interface
	original string // name in the source interface, when renamed locally
}

// Scope is the per-interface symbol table. Each interface walk opens a
// fresh scope; names never leak across interfaces.
type Scope struct {
	name    string
	symbols map[string]symbol
}

// NewScope returns an empty symbol table for the named interface or world.
func NewScope(name string) *Scope {
	return &Scope{
		name:    name,
		symbols: make(map[string]symbol),
	}
}

// Name returns the scope's interface or world name.
func (s *Scope) Name() string {
	return s.name
}

// DeclareLocal registers a type defined in the current scope.
func (s *Scope) DeclareLocal(name string) {
	s.symbols[name] = symbol{}
}

// DeclareImported registers a name brought in via a use clause. original
// supports local renaming; empty means the name is unchanged.
func (s *Scope) DeclareImported(name, source, original string) {
	if original == "" {
		original = name
	}
	s.symbols[name] = symbol{imported: true, source: source, original: original}
}

// Resolve returns the expression generated code uses to reference the
// symbol's ABI descriptor: $<name> for locals, <source>.$cm.$<original>
// for imports. An unknown name is an unresolved-reference error.
func (s *Scope) Resolve(name string) (string, error) {
	sym, ok := s.symbols[name]
	if !ok {
		return "", errors.UnresolvedSymbol(s.name, name)
	}
	if sym.imported {
		return namespaceName(sym.source) + ".$cm.$" + tsName(sym.original), nil
	}
	return "$" + tsName(name), nil
}

// ResolveDecl returns the declaration-side type expression for the symbol:
// the bare local name, or the source-qualified name for imports.
func (s *Scope) ResolveDecl(name string) (string, error) {
	sym, ok := s.symbols[name]
	if !ok {
		return "", errors.UnresolvedSymbol(s.name, name)
	}
	if sym.imported {
		return namespaceName(sym.source) + "." + tsName(sym.original), nil
	}
	return tsName(name), nil
}
