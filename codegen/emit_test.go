package codegen

import (
	"strings"
	"testing"

	"github.com/wippyai/wit-codegen/errors"
	"github.com/wippyai/wit-codegen/wit"
)

func testEmitter(doc *wit.Document) *emitter {
	if doc == nil {
		doc = &wit.Document{}
	}
	return newEmitter(doc, NewScope("test"), newImportSet())
}

func TestEmitter_NumericListSpecialization(t *testing.T) {
	e := testEmitter(nil)

	f, err := e.kindExpr(wit.List{Elem: wit.Builtin(wit.PrimU8)}, nil)
	if err != nil {
		t.Fatalf("list<u8> failed: %v", err)
	}
	if f.decl != "Uint8Array" {
		t.Errorf("decl = %q, want Uint8Array", f.decl)
	}
	if f.desc != "$rt.u8array" {
		t.Errorf("desc = %q, want $rt.u8array", f.desc)
	}

	// Non-numeric elements keep the generic sequence form.
	f, err = e.kindExpr(wit.List{Elem: wit.Builtin(wit.PrimString)}, nil)
	if err != nil {
		t.Fatalf("list<string> failed: %v", err)
	}
	if f.decl != "string[]" {
		t.Errorf("decl = %q, want string[]", f.decl)
	}
	if f.desc != "$rt.list($rt.string)" {
		t.Errorf("desc = %q, want $rt.list($rt.string)", f.desc)
	}
}

func TestEmitter_ListOfNamedAliasStaysGeneric(t *testing.T) {
	// A named alias of u8 is not a direct numeric element; the list keeps
	// the generic form referencing the alias descriptor.
	doc := &wit.Document{
		Types: []*wit.TypeDef{{Name: "byte", Kind: wit.Base{Prim: wit.PrimU8}}},
	}
	e := testEmitter(doc)
	e.scope.DeclareLocal("byte")
	e.bind(0, "byte")

	f, err := e.kindExpr(wit.List{Elem: wit.Index(0)}, nil)
	if err != nil {
		t.Fatalf("list<byte> failed: %v", err)
	}
	if f.decl != "byte[]" {
		t.Errorf("decl = %q, want byte[]", f.decl)
	}
	if f.desc != "$rt.list($byte)" {
		t.Errorf("desc = %q, want $rt.list($byte)", f.desc)
	}
}

func TestEmitter_ListOfUnionElementParenthesized(t *testing.T) {
	// A union element must be grouped before the array suffix, or the
	// suffix binds to the last union arm only.
	doc := &wit.Document{
		Types: []*wit.TypeDef{{Kind: wit.Option{Elem: wit.Builtin(wit.PrimU32)}}},
	}
	e := testEmitter(doc)

	f, err := e.kindExpr(wit.List{Elem: wit.Index(0)}, nil)
	if err != nil {
		t.Fatalf("list<option<u32>> failed: %v", err)
	}
	if f.decl != "(u32 | undefined)[]" {
		t.Errorf("decl = %q, want (u32 | undefined)[]", f.decl)
	}
	if f.desc != "$rt.list($rt.option($rt.u32))" {
		t.Errorf("desc = %q", f.desc)
	}

	// Non-union elements stay unwrapped.
	f, err = e.kindExpr(wit.List{Elem: wit.Builtin(wit.PrimString)}, nil)
	if err != nil {
		t.Fatalf("list<string> failed: %v", err)
	}
	if f.decl != "string[]" {
		t.Errorf("decl = %q, want string[]", f.decl)
	}
}

func TestEmitter_OptionAndResultAbsence(t *testing.T) {
	e := testEmitter(nil)

	f, err := e.kindExpr(wit.Option{Elem: wit.Builtin(wit.PrimU32)}, nil)
	if err != nil {
		t.Fatalf("option failed: %v", err)
	}
	if f.decl != "u32 | undefined" {
		t.Errorf("option decl = %q", f.decl)
	}
	if f.desc != "$rt.option($rt.u32)" {
		t.Errorf("option desc = %q", f.desc)
	}

	f, err = e.kindExpr(wit.Result{Err: wit.Builtin(wit.PrimString)}, nil)
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	if f.decl != "result<void, string>" {
		t.Errorf("result decl = %q", f.decl)
	}
	if f.desc != "$rt.result($rt.unit, $rt.string)" {
		t.Errorf("result desc = %q", f.desc)
	}

	f, err = e.kindExpr(wit.Result{}, nil)
	if err != nil {
		t.Fatalf("unit result failed: %v", err)
	}
	if f.desc != "$rt.result($rt.unit, $rt.unit)" {
		t.Errorf("unit result desc = %q", f.desc)
	}
}

func TestEmitter_RecordRoundTrip(t *testing.T) {
	doc := &wit.Document{
		Types: []*wit.TypeDef{
			{Name: "file-type", Kind: wit.Enum{Cases: []wit.EnumCase{
				{Name: "unknown"}, {Name: "directory"}, {Name: "regular-file"},
			}}},
		},
	}
	e := testEmitter(doc)
	e.scope.DeclareLocal("file-type")
	e.bind(0, "file-type")

	rec := &wit.TypeDef{Name: "descriptor-stat", Kind: wit.Record{Fields: []wit.Field{
		{Name: "device", Type: wit.Builtin(wit.PrimU64)},
		{Name: "type", Type: wit.Index(0)},
		{Name: "size", Type: wit.Builtin(wit.PrimU64)},
	}}}

	decl, desc, err := e.emitType("descriptor-stat", rec)
	if err != nil {
		t.Fatalf("emitType failed: %v", err)
	}

	for _, want := range []string{
		"export interface descriptorStat {",
		"device: u64;",
		"type: fileType;",
		"size: u64;",
	} {
		if !strings.Contains(decl, want) {
			t.Errorf("decl missing %q:\n%s", want, decl)
		}
	}

	wantDesc := "export const $descriptorStat = $rt.record([['device', $rt.u64], ['type', $fileType], ['size', $rt.u64]]);"
	if desc != wantDesc {
		t.Errorf("desc = %q\nwant %q", desc, wantDesc)
	}
}

func TestEmitter_VariantOrdinalsAndCtor(t *testing.T) {
	e := testEmitter(nil)

	v := &wit.TypeDef{Name: "operation", Kind: wit.Variant{Cases: []wit.Case{
		{Name: "idle"},
		{Name: "write", Type: wit.Builtin(wit.PrimString)},
	}}}

	decl, desc, err := e.emitType("operation", v)
	if err != nil {
		t.Fatalf("emitType failed: %v", err)
	}

	for _, want := range []string{
		"export namespace operation {",
		"export const idle = 0 as const;",
		"export const write = 1 as const;",
		"export type _tt = typeof idle | typeof write;",
		"export type _vt = string | undefined;",
		"type _common = Omit<VariantImpl, 'tag' | 'value'>;",
		"export function _ctor(t: _tt, v: _vt): operation {",
		"export function Idle(): Idle {",
		"export function Write(value: string): Write {",
		"export function isIdle(v: operation): v is Idle {",
		"export type operation = operation.Idle | operation.Write;",
	} {
		if !strings.Contains(decl, want) {
			t.Errorf("decl missing %q:\n%s", want, decl)
		}
	}

	wantDesc := "export const $operation = $rt.variant([undefined, $rt.string], operation._ctor);"
	if desc != wantDesc {
		t.Errorf("desc = %q\nwant %q", desc, wantDesc)
	}
}

func TestEmitter_EnumOrdinalStability(t *testing.T) {
	e := testEmitter(nil)

	en := &wit.TypeDef{Name: "status", Kind: wit.Enum{Cases: []wit.EnumCase{
		{Name: "active"}, {Name: "paused"}, {Name: "stopped"},
	}}}

	decl, desc, err := e.emitType("status", en)
	if err != nil {
		t.Fatalf("emitType failed: %v", err)
	}

	// Ordinals follow declaration order, zero-based.
	for _, want := range []string{
		"export const active = 0 as const;",
		"export const paused = 1 as const;",
		"export const stopped = 2 as const;",
	} {
		if !strings.Contains(decl, want) {
			t.Errorf("decl missing %q:\n%s", want, decl)
		}
	}
	if desc != "export const $status = $rt.enumeration(3);" {
		t.Errorf("desc = %q", desc)
	}
}

func TestEmitter_Flags(t *testing.T) {
	e := testEmitter(nil)

	fl := &wit.TypeDef{Name: "open-flags", Kind: wit.Flags{Flags: []wit.Flag{
		{Name: "create"}, {Name: "exclusive"}, {Name: "truncate"},
	}}}

	decl, desc, err := e.emitType("open-flags", fl)
	if err != nil {
		t.Fatalf("emitType failed: %v", err)
	}
	for _, want := range []string{
		"export interface openFlags {",
		"create: boolean;",
		"exclusive: boolean;",
		"truncate: boolean;",
	} {
		if !strings.Contains(decl, want) {
			t.Errorf("decl missing %q:\n%s", want, decl)
		}
	}
	if desc != "export const $openFlags = $rt.flags(['create', 'exclusive', 'truncate']);" {
		t.Errorf("desc = %q", desc)
	}
}

func TestEmitter_Func(t *testing.T) {
	e := testEmitter(nil)

	fn := &wit.Func{
		Name: "get-stat",
		Kind: wit.FuncFreestanding,
		Params: []wit.Param{
			{Name: "fd", Type: wit.Builtin(wit.PrimU32)},
		},
		Results: []wit.Ref{wit.Builtin(wit.PrimU64)},
	}

	decl, desc, err := e.emitFunc(fn)
	if err != nil {
		t.Fatalf("emitFunc failed: %v", err)
	}
	if decl != "export type getStat = (fd: u32) => u64;" {
		t.Errorf("decl = %q", decl)
	}
	// The descriptor keeps the wire-form name.
	if desc != "export const $getStat = $rt.func('get-stat', [['fd', $rt.u32]], $rt.u64);" {
		t.Errorf("desc = %q", desc)
	}
}

func TestEmitter_FuncMultipleResults(t *testing.T) {
	e := testEmitter(nil)

	fn := &wit.Func{
		Name:    "split",
		Kind:    wit.FuncFreestanding,
		Results: []wit.Ref{wit.Builtin(wit.PrimU32), wit.Builtin(wit.PrimString)},
	}

	decl, desc, err := e.emitFunc(fn)
	if err != nil {
		t.Fatalf("emitFunc failed: %v", err)
	}
	if !strings.Contains(decl, "=> [u32, string];") {
		t.Errorf("decl = %q", decl)
	}
	if !strings.Contains(desc, "$rt.tuple([$rt.u32, $rt.string])") {
		t.Errorf("desc = %q", desc)
	}
}

func TestEmitter_DualParity(t *testing.T) {
	// The single fold must yield both surfaces for every accepted kind.
	e := testEmitter(nil)

	kinds := []wit.TypeKind{
		wit.Base{Prim: wit.PrimChar},
		wit.List{Elem: wit.Builtin(wit.PrimString)},
		wit.Option{Elem: wit.Builtin(wit.PrimBool)},
		wit.Result{OK: wit.Builtin(wit.PrimU32)},
		wit.Tuple{Types: []wit.Ref{wit.Builtin(wit.PrimU8), wit.Builtin(wit.PrimU16)}},
		wit.Handle{},
	}
	for _, k := range kinds {
		f, err := e.kindExpr(k, nil)
		if err != nil {
			t.Fatalf("%s: kindExpr failed: %v", wit.KindName(k), err)
		}
		if f.decl == "" || f.desc == "" {
			t.Errorf("%s: partial fragment decl=%q desc=%q", wit.KindName(k), f.decl, f.desc)
		}
	}
}

func TestEmitter_AnonymousNamedStructureRejected(t *testing.T) {
	e := testEmitter(nil)

	_, err := e.kindExpr(wit.Record{Fields: []wit.Field{{Name: "x", Type: wit.Builtin(wit.PrimU8)}}}, []string{"inline"})
	if err == nil {
		t.Fatal("anonymous record must be rejected")
	}
	serr, ok := err.(*errors.Error)
	if !ok || serr.Kind != errors.KindUnsupported {
		t.Errorf("error = %v, want KindUnsupported", err)
	}
}

func TestEmitter_NoScopeIsInternalError(t *testing.T) {
	e := &emitter{doc: &wit.Document{}, names: map[wit.Index]string{}, imports: newImportSet()}

	_, err := e.typeRef(wit.Builtin(wit.PrimU32), []string{"loose"})
	if err == nil {
		t.Fatal("expected internal error outside any scope")
	}
	serr, ok := err.(*errors.Error)
	if !ok || serr.Kind != errors.KindInternal {
		t.Errorf("error = %v, want KindInternal", err)
	}
}

func TestEmitter_UnresolvedReferenceFails(t *testing.T) {
	doc := &wit.Document{
		Types: []*wit.TypeDef{{Name: "phantom", Kind: wit.Base{Prim: wit.PrimU8}}},
	}
	e := testEmitter(doc)
	// Index 0 is named but never declared in the scope.

	_, err := e.typeRef(wit.Index(0), []string{"field"})
	if err == nil {
		t.Fatal("expected unresolved-symbol error")
	}
	serr, ok := err.(*errors.Error)
	if !ok || serr.Kind != errors.KindUnresolvedSymbol {
		t.Errorf("error = %v, want KindUnresolvedSymbol", err)
	}
}
