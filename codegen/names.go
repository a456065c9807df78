package codegen

import (
	"strings"
	"unicode"

	"github.com/wippyai/wit-codegen/wit"
)

// tsName converts a kebab-case WIT identifier into a camelCase TypeScript
// identifier. WIT wire names keep their original spelling; only emitted
// identifiers are mangled.
func tsName(name string) string {
	var b strings.Builder
	upper := false
	for i, r := range name {
		switch {
		case r == '-' || r == '_' || r == ' ':
			upper = true
		case i == 0 && unicode.IsDigit(r):
			b.WriteByte('_')
			b.WriteRune(r)
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tsPascal is tsName with the first rune upper-cased, used for variant case
// types, constructors and guards.
func tsPascal(name string) string {
	s := tsName(name)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// namespaceName derives the TypeScript namespace for an interface or world.
// A versioned or package-qualified name keeps only its final segment.
func namespaceName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return tsName(name)
}

// primDecl maps a primitive to its declaration-side scalar. The second
// return reports whether the name is a base-type alias that must be
// imported once per file.
func primDecl(p wit.Prim) (string, bool) {
	switch p {
	case wit.PrimBool:
		return "boolean", false
	case wit.PrimString:
		return "string", false
	default:
		return p.String(), true
	}
}

// primDesc maps a primitive to its singleton descriptor constant.
func primDesc(p wit.Prim) string {
	return runtimeAlias + "." + p.String()
}

// numericArray maps a fixed-width numeric primitive to its specialized
// contiguous-buffer pair. Ten distinct variants, one per width, signedness
// and floatness.
func numericArray(p wit.Prim) (decl, desc string, ok bool) {
	var buf string
	switch p {
	case wit.PrimU8:
		buf = "Uint8Array"
	case wit.PrimU16:
		buf = "Uint16Array"
	case wit.PrimU32:
		buf = "Uint32Array"
	case wit.PrimU64:
		buf = "BigUint64Array"
	case wit.PrimS8:
		buf = "Int8Array"
	case wit.PrimS16:
		buf = "Int16Array"
	case wit.PrimS32:
		buf = "Int32Array"
	case wit.PrimS64:
		buf = "BigInt64Array"
	case wit.PrimF32:
		buf = "Float32Array"
	case wit.PrimF64:
		buf = "Float64Array"
	default:
		return "", "", false
	}
	return buf, runtimeAlias + "." + p.String() + "array", true
}
