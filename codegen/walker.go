package codegen

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wit-codegen/errors"
	"github.com/wippyai/wit-codegen/wit"
)

// DefaultRuntimeModule is the module generated code imports descriptor
// constructors and base-type aliases from.
const DefaultRuntimeModule = "@wippy/component-model"

// Options configures generation.
type Options struct {
	// RuntimeModule overrides the runtime import specifier.
	RuntimeModule string
}

// Generate compiles a resolved document into one TypeScript source file.
// Interfaces owned by the document's packages are emitted as namespace
// blocks; interfaces present in the document but owned by no package are
// treated as external and referenced through header imports.
func Generate(doc *wit.Document, opts Options) (string, error) {
	if opts.RuntimeModule == "" {
		opts.RuntimeModule = DefaultRuntimeModule
	}

	w := &walker{
		doc:     doc,
		imports: newImportSet(),
		emitted: make(map[int]bool),
		runtime: opts.RuntimeModule,
	}
	return w.run()
}

// walker drives the document traversal: packages, then each package's
// interfaces and worlds in declaration order.
type walker struct {
	doc     *wit.Document
	imports *importSet
	emitted map[int]bool // interface indices rendered into this file
	blocks  []string
	runtime string
}

func (w *walker) run() (string, error) {
	// Membership is decided before any block is emitted so forward
	// references between sibling interfaces resolve in-file.
	for _, pkg := range w.doc.Packages {
		for _, ni := range pkg.Interfaces {
			w.emitted[ni.Index] = true
		}
	}

	for _, pkg := range w.doc.Packages {
		Logger().Debug("walking package",
			zap.String("package", pkg.Name),
			zap.Int("interfaces", len(pkg.Interfaces)),
			zap.Int("worlds", len(pkg.Worlds)))

		for _, ni := range pkg.Interfaces {
			if err := w.emitInterface(ni.Index, ni.Name); err != nil {
				return "", err
			}
		}
		for _, ni := range pkg.Worlds {
			if err := w.emitWorld(ni.Index, ni.Name); err != nil {
				return "", err
			}
		}
	}

	var out strings.Builder
	if header := w.imports.render(w.runtime); len(header) > 0 {
		out.WriteString(strings.Join(header, "\n"))
		out.WriteString("\n\n")
	}
	out.WriteString(strings.Join(w.blocks, "\n\n"))
	if len(w.blocks) > 0 {
		out.WriteString("\n")
	}
	return out.String(), nil
}

// emitInterface renders one interface as a namespace block: declarations
// in source order, a nested $cm namespace of descriptors, and a public
// surface type when the interface exports functions.
func (w *walker) emitInterface(idx int, declaredName string) error {
	iface, err := w.doc.InterfaceAt(idx)
	if err != nil {
		return err
	}
	name := iface.Name
	if name == "" {
		name = declaredName
	}
	if name == "" {
		return errors.Unsupported(errors.PhaseResolve, "emitting an unnamed interface")
	}

	Logger().Debug("emitting interface",
		zap.String("interface", name),
		zap.Int("types", len(iface.Types)),
		zap.Int("functions", len(iface.Functions)))

	scope := NewScope(name)
	em := newEmitter(w.doc, scope, w.imports)

	// First pass declares every member name so type bodies and function
	// signatures can reference members declared later in source order.
	type member struct {
		name     string
		td       *wit.TypeDef
		imported bool
		source   string
		original string
	}
	members := make([]member, 0, len(iface.Types))
	for _, ni := range iface.Types {
		td, err := w.doc.TypeAt(ni.Index)
		if err != nil {
			return err
		}
		m := member{name: ni.Name, td: td}

		owner, ok := td.Owner.(wit.InterfaceOwner)
		if !ok || int(owner) == idx {
			scope.DeclareLocal(ni.Name)
		} else {
			source, err := w.doc.OwnerScope(td.Owner)
			if err != nil {
				return err
			}
			if source == "" {
				return errors.New(errors.PhaseResolve, errors.KindUnsupported).
					Scope(name).
					Path(ni.Name).
					Detail("use of a type from an unnamed interface").
					Build()
			}
			scope.DeclareImported(ni.Name, source, td.Name)
			if !w.emitted[int(owner)] {
				w.imports.addForeign(source)
			}
			m.imported = true
			m.source = source
			m.original = td.Name
		}
		em.bind(wit.Index(ni.Index), ni.Name)
		members = append(members, m)
	}

	var decls, descs sequencer
	for _, m := range members {
		if m.imported {
			ns := namespaceName(m.source)
			decls.push("export type " + tsName(m.name) + " = " + ns + "." + tsName(m.original) + ";")
			continue
		}
		decl, desc, err := em.emitType(m.name, m.td)
		if err != nil {
			return err
		}
		decls.push(decl)
		descs.push(desc)
	}

	for _, fn := range iface.Functions {
		decl, desc, err := em.emitFunc(fn)
		if err != nil {
			return err
		}
		decls.push(decl)
		descs.pushDeferred(desc)
	}

	w.blocks = append(w.blocks, renderNamespace(namespaceName(name), iface.Docs, &decls, &descs, iface.Functions))
	return nil
}

// emitWorld renders a world's inline type and function items as a namespace
// block. Interface items are structural: the referenced interfaces are
// already rendered from their packages, or imported from outside the file.
func (w *walker) emitWorld(idx int, declaredName string) error {
	world, err := w.doc.WorldAt(idx)
	if err != nil {
		return err
	}
	name := world.Name
	if name == "" {
		name = declaredName
	}
	if name == "" {
		return errors.Unsupported(errors.PhaseResolve, "emitting an unnamed world")
	}

	Logger().Debug("emitting world",
		zap.String("world", name),
		zap.Int("imports", len(world.Imports)),
		zap.Int("exports", len(world.Exports)))

	scope := NewScope(name)
	em := newEmitter(w.doc, scope, w.imports)

	items := make([]wit.WorldItem, 0, len(world.Imports)+len(world.Exports))
	items = append(items, world.Imports...)
	items = append(items, world.Exports...)

	// Declaration pass over inline type items.
	for _, item := range items {
		t, ok := item.Kind.(wit.TypeObject)
		if !ok {
			continue
		}
		scope.DeclareLocal(item.Name)
		if ti, ok := t.Type.(wit.Index); ok {
			em.bind(ti, item.Name)
		}
	}

	var decls, descs sequencer
	var funcs []*wit.Func
	for _, item := range items {
		switch kind := item.Kind.(type) {
		case wit.InterfaceObject:
			if !w.emitted[kind.Interface] {
				iface, err := w.doc.InterfaceAt(kind.Interface)
				if err != nil {
					return err
				}
				if iface.Name != "" {
					w.imports.addForeign(iface.Name)
				}
			}
		case wit.TypeObject:
			td, _, err := w.doc.Resolve(kind.Type)
			if err != nil {
				return err
			}
			if td == nil {
				// A bare primitive world item is an alias declaration.
				td = &wit.TypeDef{Name: item.Name, Kind: wit.Base{Prim: builtinPrim(kind.Type)}}
			}
			decl, desc, err := em.emitType(item.Name, td)
			if err != nil {
				return err
			}
			decls.push(decl)
			descs.push(desc)
		case wit.FuncObject:
			decl, desc, err := em.emitFunc(kind.Func)
			if err != nil {
				return err
			}
			decls.push(decl)
			descs.pushDeferred(desc)
			funcs = append(funcs, kind.Func)
		default:
			return errors.New(errors.PhaseResolve, errors.KindSchema).
				Scope(name).
				Path(item.Name).
				Detail("world item matches no known variant: %T", item.Kind).
				Build()
		}
	}

	if decls.empty() && descs.empty() {
		return nil
	}
	w.blocks = append(w.blocks, renderNamespace(namespaceName(name), world.Docs, &decls, &descs, funcs))
	return nil
}

func builtinPrim(r wit.Ref) wit.Prim {
	if b, ok := r.(wit.Builtin); ok {
		return wit.Prim(b)
	}
	return 0
}

// renderNamespace assembles one namespace block: declarations, the nested
// descriptor namespace, and the function surface type.
func renderNamespace(ns, docs string, decls, descs *sequencer, funcs []*wit.Func) string {
	var b strings.Builder
	b.WriteString(docComment(docs))
	b.WriteString("export namespace " + ns + " {\n")

	for i, text := range decls.ordered() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(indent(text, 1))
	}

	if !descs.empty() {
		b.WriteString("\n")
		b.WriteString("\texport namespace $cm {\n")
		for _, text := range descs.ordered() {
			b.WriteString(indent(text, 2))
		}
		b.WriteString("\t}\n")
	}

	// The surface type closes the block: declarations, descriptors, then
	// the restricted function surface.
	if len(funcs) > 0 {
		b.WriteString("\n")
		b.WriteString("\texport type $functions = {\n")
		for _, fn := range funcs {
			n := tsName(fn.Name)
			b.WriteString("\t\t" + n + ": " + n + ";\n")
		}
		b.WriteString("\t};\n")
	}

	b.WriteString("}")
	return b.String()
}
