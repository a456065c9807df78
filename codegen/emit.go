package codegen

import (
	"strconv"
	"strings"

	"github.com/wippyai/wit-codegen/errors"
	"github.com/wippyai/wit-codegen/wit"
)

// runtimeAlias is the namespace generated code resolves descriptor
// constructors from. It is distinct from the nested $cm namespace each
// interface exports so the two can never shadow each other.
const runtimeAlias = "$rt"

// fragment is the paired output of the dual emitter for one type node: the
// declaration-side type expression and the descriptor-side construction
// expression. Producing both from a single fold keeps the two outputs
// structurally parallel: a node either yields both or rejects both.
type fragment struct {
	decl string
	desc string
}

// emitter walks type nodes for one interface scope.
type emitter struct {
	doc     *wit.Document
	scope   *Scope
	names   map[wit.Index]string // document index -> name in this scope
	imports *importSet
}

func newEmitter(doc *wit.Document, scope *Scope, imports *importSet) *emitter {
	return &emitter{
		doc:     doc,
		scope:   scope,
		names:   make(map[wit.Index]string),
		imports: imports,
	}
}

// bind associates a document type index with its name in this scope. Both
// local declarations and use-clause imports are bound before any member is
// emitted, so forward references inside the interface resolve.
func (e *emitter) bind(idx wit.Index, name string) {
	e.names[idx] = name
}

func (e *emitter) primFragment(p wit.Prim) fragment {
	decl, needsImport := primDecl(p)
	if needsImport {
		e.imports.addBase(decl)
	}
	e.imports.markRuntime()
	return fragment{decl: decl, desc: primDesc(p)}
}

// typeRef folds a reference appearing in a use position: a builtin, a named
// type resolved through the symbol table, or an inline anonymous type.
func (e *emitter) typeRef(r wit.Ref, path []string) (fragment, error) {
	if e.scope == nil {
		return fragment{}, errors.Internal("type reference visited outside interface scope at %s", strings.Join(path, "."))
	}

	switch v := r.(type) {
	case wit.Builtin:
		return e.primFragment(wit.Prim(v)), nil
	case wit.Index:
		if name, ok := e.names[v]; ok {
			decl, err := e.scope.ResolveDecl(name)
			if err != nil {
				return fragment{}, err
			}
			desc, err := e.scope.Resolve(name)
			if err != nil {
				return fragment{}, err
			}
			return fragment{decl: decl, desc: desc}, nil
		}

		td, err := e.doc.TypeAt(int(v))
		if err != nil {
			return fragment{}, err
		}
		if td.Name != "" {
			// Named but not bound in this scope: the symbol table decides
			// whether it is importable or genuinely missing.
			decl, err := e.scope.ResolveDecl(td.Name)
			if err != nil {
				return fragment{}, err
			}
			desc, err := e.scope.Resolve(td.Name)
			if err != nil {
				return fragment{}, err
			}
			return fragment{decl: decl, desc: desc}, nil
		}
		return e.kindExpr(td.Kind, path)
	default:
		return fragment{}, errors.New(errors.PhaseEmit, errors.KindSchema).
			Scope(e.scope.Name()).
			Path(path...).
			Detail("unknown reference variant %T", r).
			Build()
	}
}

// kindExpr folds a type kind in an inline position. Only kinds WIT allows
// anonymously can appear here; named-structure kinds must carry a name.
func (e *emitter) kindExpr(k wit.TypeKind, path []string) (fragment, error) {
	switch kind := k.(type) {
	case wit.Base:
		return e.primFragment(kind.Prim), nil

	case wit.Reference:
		return e.typeRef(kind.Target, path)

	case wit.List:
		if p, ok := directPrim(e.doc, kind.Elem); ok && p.IsNumeric() {
			decl, desc, _ := numericArray(p)
			e.imports.markRuntime()
			return fragment{decl: decl, desc: desc}, nil
		}
		elem, err := e.typeRef(kind.Elem, append(path, "list"))
		if err != nil {
			return fragment{}, err
		}
		// Union elements bind looser than the [] suffix and must be
		// parenthesized: (u32 | undefined)[], not u32 | undefined[].
		elemDecl := elem.decl
		if strings.Contains(elemDecl, "|") {
			elemDecl = "(" + elemDecl + ")"
		}
		return fragment{
			decl: elemDecl + "[]",
			desc: runtimeAlias + ".list(" + elem.desc + ")",
		}, nil

	case wit.Option:
		elem, err := e.typeRef(kind.Elem, append(path, "option"))
		if err != nil {
			return fragment{}, err
		}
		return fragment{
			decl: elem.decl + " | undefined",
			desc: runtimeAlias + ".option(" + elem.desc + ")",
		}, nil

	case wit.Result:
		okDecl, okDesc := "void", runtimeAlias+".unit"
		if kind.OK != nil {
			f, err := e.typeRef(kind.OK, append(path, "ok"))
			if err != nil {
				return fragment{}, err
			}
			okDecl, okDesc = f.decl, f.desc
		}
		errDecl, errDesc := "void", runtimeAlias+".unit"
		if kind.Err != nil {
			f, err := e.typeRef(kind.Err, append(path, "err"))
			if err != nil {
				return fragment{}, err
			}
			errDecl, errDesc = f.decl, f.desc
		}
		e.imports.addBase("result")
		e.imports.markRuntime()
		return fragment{
			decl: "result<" + okDecl + ", " + errDecl + ">",
			desc: runtimeAlias + ".result(" + okDesc + ", " + errDesc + ")",
		}, nil

	case wit.Tuple:
		decls := make([]string, 0, len(kind.Types))
		descs := make([]string, 0, len(kind.Types))
		for i, t := range kind.Types {
			f, err := e.typeRef(t, append(path, strconv.Itoa(i)))
			if err != nil {
				return fragment{}, err
			}
			decls = append(decls, f.decl)
			descs = append(descs, f.desc)
		}
		e.imports.markRuntime()
		return fragment{
			decl: "[" + strings.Join(decls, ", ") + "]",
			desc: runtimeAlias + ".tuple([" + strings.Join(descs, ", ") + "])",
		}, nil

	case wit.Handle:
		// Handles are opaque u32 values; no lifecycle descriptor exists.
		e.imports.addBase("u32")
		e.imports.markRuntime()
		return fragment{decl: "u32", desc: runtimeAlias + ".u32"}, nil

	case wit.Record, wit.Variant, wit.Enum, wit.Flags:
		return fragment{}, errors.Unsupported(errors.PhaseEmit,
			"anonymous "+wit.KindName(k)+" at "+strings.Join(path, "."))

	default:
		return fragment{}, errors.New(errors.PhaseEmit, errors.KindSchema).
			Scope(e.scope.Name()).
			Path(path...).
			Detail("type kind matches no known variant: %T", k).
			Build()
	}
}

// directPrim reports the primitive a reference names, following anonymous
// base nodes but not named aliases. List specialization keys off this.
func directPrim(doc *wit.Document, r wit.Ref) (wit.Prim, bool) {
	switch v := r.(type) {
	case wit.Builtin:
		return wit.Prim(v), true
	case wit.Index:
		td, err := doc.TypeAt(int(v))
		if err != nil || td.Name != "" {
			return 0, false
		}
		if base, ok := td.Kind.(wit.Base); ok {
			return base.Prim, true
		}
	}
	return 0, false
}

// emitType produces the declaration block and descriptor line for one named
// type member of the current interface.
func (e *emitter) emitType(localName string, td *wit.TypeDef) (decl string, desc string, err error) {
	if e.scope == nil {
		return "", "", errors.Internal("type %q visited outside interface scope", localName)
	}

	name := tsName(localName)
	path := []string{e.scope.Name(), localName}

	switch kind := td.Kind.(type) {
	case wit.Record:
		return e.emitRecord(name, td, kind, path)
	case wit.Variant:
		return e.emitVariant(name, td, kind, path)
	case wit.Enum:
		return e.emitEnum(name, td, kind, path)
	case wit.Flags:
		return e.emitFlags(name, td, kind, path)
	default:
		f, err := e.kindExpr(td.Kind, path)
		if err != nil {
			return "", "", err
		}
		decl = docComment(td.Docs) + "export type " + name + " = " + f.decl + ";"
		desc = "export const $" + name + " = " + f.desc + ";"
		return decl, desc, nil
	}
}

func (e *emitter) emitRecord(name string, td *wit.TypeDef, rec wit.Record, path []string) (string, string, error) {
	var b strings.Builder
	b.WriteString(docComment(td.Docs))
	b.WriteString("export interface " + name + " {\n")

	pairs := make([]string, 0, len(rec.Fields))
	for _, field := range rec.Fields {
		f, err := e.typeRef(field.Type, append(path, field.Name))
		if err != nil {
			return "", "", err
		}
		if field.Docs != "" {
			b.WriteString(indent(docComment(field.Docs), 1))
		}
		b.WriteString("\t" + tsName(field.Name) + ": " + f.decl + ";\n")
		pairs = append(pairs, "['"+field.Name+"', "+f.desc+"]")
	}
	b.WriteString("}")

	e.imports.markRuntime()
	desc := "export const $" + name + " = " + runtimeAlias + ".record([" + strings.Join(pairs, ", ") + "]);"
	return b.String(), desc, nil
}

func (e *emitter) emitVariant(name string, td *wit.TypeDef, v wit.Variant, path []string) (string, string, error) {
	type caseInfo struct {
		tag     string // tag constant identifier
		ctor    string // case type / constructor identifier
		payload *fragment
		docs    string
	}

	cases := make([]caseInfo, 0, len(v.Cases))
	hasUnit := false
	for _, c := range v.Cases {
		info := caseInfo{tag: tsName(c.Name), ctor: tsPascal(c.Name), docs: c.Docs}
		if c.Type != nil {
			f, err := e.typeRef(c.Type, append(path, c.Name))
			if err != nil {
				return "", "", err
			}
			info.payload = &f
		} else {
			hasUnit = true
		}
		cases = append(cases, info)
	}

	var b strings.Builder
	b.WriteString(docComment(td.Docs))
	b.WriteString("export namespace " + name + " {\n")

	// Tag constants; the discriminant is the case's ordinal position.
	for i, c := range cases {
		b.WriteString("\texport const " + c.tag + " = " + strconv.Itoa(i) + " as const;\n")
	}

	tags := make([]string, len(cases))
	for i, c := range cases {
		tags[i] = "typeof " + c.tag
	}
	b.WriteString("\n\texport type _tt = " + strings.Join(tags, " | ") + ";\n")

	// The value union covers every payload type; an absent marker joins it
	// when at least one case carries no payload.
	var values []string
	for _, c := range cases {
		if c.payload != nil {
			values = append(values, c.payload.decl)
		}
	}
	if hasUnit || len(values) == 0 {
		values = append(values, "undefined")
	}
	b.WriteString("\texport type _vt = " + strings.Join(values, " | ") + ";\n\n")

	b.WriteString("\tclass VariantImpl {\n")
	b.WriteString("\t\tprivate readonly __tag: _tt;\n")
	b.WriteString("\t\tprivate readonly __value: _vt;\n")
	b.WriteString("\t\tconstructor(t: _tt, v: _vt) {\n")
	b.WriteString("\t\t\tthis.__tag = t;\n")
	b.WriteString("\t\t\tthis.__value = v;\n")
	b.WriteString("\t\t}\n")
	b.WriteString("\t\tget tag(): _tt {\n\t\t\treturn this.__tag;\n\t\t}\n")
	b.WriteString("\t\tget value(): _vt {\n\t\t\treturn this.__value;\n\t\t}\n")
	b.WriteString("\t}\n\n")
	b.WriteString("\ttype _common = Omit<VariantImpl, 'tag' | 'value'>;\n\n")
	b.WriteString("\texport function _ctor(t: _tt, v: _vt): " + name + " {\n")
	b.WriteString("\t\treturn new VariantImpl(t, v) as " + name + ";\n")
	b.WriteString("\t}\n")

	for _, c := range cases {
		b.WriteString("\n")
		if c.docs != "" {
			b.WriteString(indent(docComment(c.docs), 1))
		}
		if c.payload != nil {
			b.WriteString("\texport type " + c.ctor + " = { readonly tag: typeof " + c.tag + "; readonly value: " + c.payload.decl + " } & _common;\n")
			b.WriteString("\texport function " + c.ctor + "(value: " + c.payload.decl + "): " + c.ctor + " {\n")
			b.WriteString("\t\treturn new VariantImpl(" + c.tag + ", value) as " + c.ctor + ";\n")
			b.WriteString("\t}\n")
		} else {
			b.WriteString("\texport type " + c.ctor + " = { readonly tag: typeof " + c.tag + " } & _common;\n")
			b.WriteString("\texport function " + c.ctor + "(): " + c.ctor + " {\n")
			b.WriteString("\t\treturn new VariantImpl(" + c.tag + ", undefined) as " + c.ctor + ";\n")
			b.WriteString("\t}\n")
		}
		b.WriteString("\texport function is" + c.ctor + "(v: " + name + "): v is " + c.ctor + " {\n")
		b.WriteString("\t\treturn v.tag === " + c.tag + ";\n")
		b.WriteString("\t}\n")
	}
	b.WriteString("}\n")

	union := make([]string, len(cases))
	for i, c := range cases {
		union[i] = name + "." + c.ctor
	}
	b.WriteString("export type " + name + " = " + strings.Join(union, " | ") + ";")

	// Descriptor: per-case element descriptors in declaration order, with
	// the absent marker for payload-less cases, plus the case constructor.
	descs := make([]string, len(cases))
	for i, c := range cases {
		if c.payload != nil {
			descs[i] = c.payload.desc
		} else {
			descs[i] = "undefined"
		}
	}
	e.imports.markRuntime()
	desc := "export const $" + name + " = " + runtimeAlias + ".variant([" + strings.Join(descs, ", ") + "], " + name + "._ctor);"
	return b.String(), desc, nil
}

func (e *emitter) emitEnum(name string, td *wit.TypeDef, en wit.Enum, path []string) (string, string, error) {
	var b strings.Builder
	b.WriteString(docComment(td.Docs))
	b.WriteString("export namespace " + name + " {\n")

	union := make([]string, len(en.Cases))
	for i, c := range en.Cases {
		if c.Docs != "" {
			b.WriteString(indent(docComment(c.Docs), 1))
		}
		ident := tsName(c.Name)
		b.WriteString("\texport const " + ident + " = " + strconv.Itoa(i) + " as const;\n")
		union[i] = "typeof " + name + "." + ident
	}
	b.WriteString("}\n")
	b.WriteString("export type " + name + " = " + strings.Join(union, " | ") + ";")

	e.imports.markRuntime()
	desc := "export const $" + name + " = " + runtimeAlias + ".enumeration(" + strconv.Itoa(len(en.Cases)) + ");"
	return b.String(), desc, nil
}

func (e *emitter) emitFlags(name string, td *wit.TypeDef, fl wit.Flags, path []string) (string, string, error) {
	var b strings.Builder
	b.WriteString(docComment(td.Docs))
	b.WriteString("export interface " + name + " {\n")

	wires := make([]string, len(fl.Flags))
	for i, f := range fl.Flags {
		if f.Docs != "" {
			b.WriteString(indent(docComment(f.Docs), 1))
		}
		b.WriteString("\t" + tsName(f.Name) + ": boolean;\n")
		wires[i] = "'" + f.Name + "'"
	}
	b.WriteString("}")

	// Bit order is declaration order; only the descriptor carries it.
	e.imports.markRuntime()
	desc := "export const $" + name + " = " + runtimeAlias + ".flags([" + strings.Join(wires, ", ") + "]);"
	return b.String(), desc, nil
}

// emitFunc produces the signature type alias and the deferred descriptor
// line for a freestanding function.
func (e *emitter) emitFunc(fn *wit.Func) (decl string, desc string, err error) {
	if e.scope == nil {
		return "", "", errors.Internal("function %q visited outside interface scope", fn.Name)
	}
	if fn.Kind != wit.FuncFreestanding {
		return "", "", errors.Unsupported(errors.PhaseEmit, "function kind "+strconv.Quote(fn.Kind))
	}

	name := tsName(fn.Name)
	path := []string{e.scope.Name(), fn.Name}

	params := make([]string, 0, len(fn.Params))
	paramDescs := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		f, err := e.typeRef(p.Type, append(path, p.Name))
		if err != nil {
			return "", "", err
		}
		params = append(params, tsName(p.Name)+": "+f.decl)
		paramDescs = append(paramDescs, "['"+p.Name+"', "+f.desc+"]")
	}

	retDecl, retDesc := "void", runtimeAlias+".unit"
	switch len(fn.Results) {
	case 0:
	case 1:
		f, err := e.typeRef(fn.Results[0], append(path, "result"))
		if err != nil {
			return "", "", err
		}
		retDecl, retDesc = f.decl, f.desc
	default:
		decls := make([]string, 0, len(fn.Results))
		descs := make([]string, 0, len(fn.Results))
		for i, r := range fn.Results {
			f, err := e.typeRef(r, append(path, "result", strconv.Itoa(i)))
			if err != nil {
				return "", "", err
			}
			decls = append(decls, f.decl)
			descs = append(descs, f.desc)
		}
		retDecl = "[" + strings.Join(decls, ", ") + "]"
		retDesc = runtimeAlias + ".tuple([" + strings.Join(descs, ", ") + "])"
	}

	e.imports.markRuntime()
	decl = docComment(fn.Docs) + "export type " + name + " = (" + strings.Join(params, ", ") + ") => " + retDecl + ";"
	desc = "export const $" + name + " = " + runtimeAlias + ".func('" + fn.Name + "', [" + strings.Join(paramDescs, ", ") + "], " + retDesc + ");"
	return decl, desc, nil
}

// docComment renders a docstring as a block comment ending with a newline,
// or nothing when the docstring is empty.
func docComment(docs string) string {
	docs = strings.TrimSpace(docs)
	if docs == "" {
		return ""
	}
	lines := strings.Split(docs, "\n")
	if len(lines) == 1 {
		return "/** " + lines[0] + " */\n"
	}
	var b strings.Builder
	b.WriteString("/**\n")
	for _, line := range lines {
		b.WriteString(" * " + strings.TrimRight(line, " \t") + "\n")
	}
	b.WriteString(" */\n")
	return b.String()
}

// indent prefixes every line of text with n tabs, keeping the trailing
// newline handling of the input.
func indent(text string, n int) string {
	if text == "" {
		return ""
	}
	prefix := strings.Repeat("\t", n)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
