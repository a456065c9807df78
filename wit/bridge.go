package wit

import (
	bca "go.bytecodealliance.org/wit"

	"github.com/wippyai/wit-codegen/errors"
)

// DocumentBuilder assembles a Document from resolved types produced by the
// go.bytecodealliance.org toolchain. Nested compound types are allocated as
// anonymous document entries, named typedefs are deduplicated by pointer.
type DocumentBuilder struct {
	doc  *Document
	seen map[*bca.TypeDef]Index
}

// NewDocumentBuilder returns an empty builder.
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{
		doc:  &Document{},
		seen: make(map[*bca.TypeDef]Index),
	}
}

// Document returns the assembled document.
func (b *DocumentBuilder) Document() *Document {
	return b.doc
}

// AddInterface appends an interface and returns its index.
func (b *DocumentBuilder) AddInterface(name string) int {
	b.doc.Interfaces = append(b.doc.Interfaces, &Interface{Name: name})
	return len(b.doc.Interfaces) - 1
}

// AddPackage appends a package and returns its index.
func (b *DocumentBuilder) AddPackage(name string) int {
	b.doc.Packages = append(b.doc.Packages, &Package{Name: name})
	return len(b.doc.Packages) - 1
}

// DeclareType converts a resolved type into the document under the given
// interface, registering it as a named member of that interface.
func (b *DocumentBuilder) DeclareType(iface int, name string, t bca.Type) (Ref, error) {
	if iface < 0 || iface >= len(b.doc.Interfaces) {
		return nil, errors.InvalidReference(errors.PhaseLoad, "interface", iface, len(b.doc.Interfaces))
	}

	ref, err := b.AddType(t, InterfaceOwner(iface))
	if err != nil {
		return nil, err
	}

	// Primitive members still need a document entry to carry the name.
	if builtin, ok := ref.(Builtin); ok {
		b.doc.Types = append(b.doc.Types, &TypeDef{
			Name:  name,
			Kind:  Base{Prim: Prim(builtin)},
			Owner: InterfaceOwner(iface),
		})
		ref = Index(len(b.doc.Types) - 1)
	} else if idx, ok := ref.(Index); ok {
		td := b.doc.Types[idx]
		if td.Name == "" {
			td.Name = name
			td.Owner = InterfaceOwner(iface)
		}
	}

	idx := ref.(Index)
	b.doc.Interfaces[iface].Types = append(b.doc.Interfaces[iface].Types, NamedIndex{Name: name, Index: int(idx)})
	return ref, nil
}

// DeclareFunc registers a freestanding function on an interface. Parameter
// and result types are converted like any other type reference.
func (b *DocumentBuilder) DeclareFunc(iface int, name string, params []bca.Type, paramNames []string, results []bca.Type) error {
	if iface < 0 || iface >= len(b.doc.Interfaces) {
		return errors.InvalidReference(errors.PhaseLoad, "interface", iface, len(b.doc.Interfaces))
	}

	fn := &Func{Name: name, Kind: FuncFreestanding}
	for i, p := range params {
		ref, err := b.AddType(p, nil)
		if err != nil {
			return err
		}
		pname := ""
		if i < len(paramNames) {
			pname = paramNames[i]
		}
		fn.Params = append(fn.Params, Param{Name: pname, Type: ref})
	}
	for _, r := range results {
		ref, err := b.AddType(r, nil)
		if err != nil {
			return err
		}
		fn.Results = append(fn.Results, ref)
	}

	b.doc.Interfaces[iface].Functions = append(b.doc.Interfaces[iface].Functions, fn)
	return nil
}

// AddType converts a resolved type tree into the document and returns a
// reference to it. Primitives become builtin references; typedefs become
// document entries.
func (b *DocumentBuilder) AddType(t bca.Type, owner Owner) (Ref, error) {
	switch v := t.(type) {
	case bca.Bool:
		return Builtin(PrimBool), nil
	case bca.U8:
		return Builtin(PrimU8), nil
	case bca.S8:
		return Builtin(PrimS8), nil
	case bca.U16:
		return Builtin(PrimU16), nil
	case bca.S16:
		return Builtin(PrimS16), nil
	case bca.U32:
		return Builtin(PrimU32), nil
	case bca.S32:
		return Builtin(PrimS32), nil
	case bca.U64:
		return Builtin(PrimU64), nil
	case bca.S64:
		return Builtin(PrimS64), nil
	case bca.F32:
		return Builtin(PrimF32), nil
	case bca.F64:
		return Builtin(PrimF64), nil
	case bca.Char:
		return Builtin(PrimChar), nil
	case bca.String:
		return Builtin(PrimString), nil
	case *bca.TypeDef:
		return b.addTypeDef(v, owner)
	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindSchema).
			Detail("unsupported resolved type: %T", t).
			Build()
	}
}

func (b *DocumentBuilder) addTypeDef(td *bca.TypeDef, owner Owner) (Ref, error) {
	if idx, ok := b.seen[td]; ok {
		return idx, nil
	}

	entry := &TypeDef{Owner: owner}
	if td.Name != nil {
		entry.Name = *td.Name
	}

	// Reserve the slot before descending so shared subtrees observe it.
	b.doc.Types = append(b.doc.Types, entry)
	idx := Index(len(b.doc.Types) - 1)
	b.seen[td] = idx

	kind, err := b.kindOf(td.Kind)
	if err != nil {
		return nil, err
	}
	entry.Kind = kind
	return idx, nil
}

func (b *DocumentBuilder) kindOf(k bca.TypeDefKind) (TypeKind, error) {
	switch kind := k.(type) {
	case *bca.Record:
		rec := Record{Fields: make([]Field, 0, len(kind.Fields))}
		for _, f := range kind.Fields {
			ref, err := b.AddType(f.Type, nil)
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, Field{Name: f.Name, Type: ref})
		}
		return rec, nil
	case *bca.Variant:
		v := Variant{Cases: make([]Case, 0, len(kind.Cases))}
		for _, c := range kind.Cases {
			mc := Case{Name: c.Name}
			if c.Type != nil {
				ref, err := b.AddType(c.Type, nil)
				if err != nil {
					return nil, err
				}
				mc.Type = ref
			}
			v.Cases = append(v.Cases, mc)
		}
		return v, nil
	case *bca.Enum:
		e := Enum{Cases: make([]EnumCase, 0, len(kind.Cases))}
		for _, c := range kind.Cases {
			e.Cases = append(e.Cases, EnumCase{Name: c.Name})
		}
		return e, nil
	case *bca.Flags:
		f := Flags{Flags: make([]Flag, 0, len(kind.Flags))}
		for _, fl := range kind.Flags {
			f.Flags = append(f.Flags, Flag{Name: fl.Name})
		}
		return f, nil
	case *bca.Tuple:
		t := Tuple{Types: make([]Ref, 0, len(kind.Types))}
		for _, elem := range kind.Types {
			ref, err := b.AddType(elem, nil)
			if err != nil {
				return nil, err
			}
			t.Types = append(t.Types, ref)
		}
		return t, nil
	case *bca.List:
		ref, err := b.AddType(kind.Type, nil)
		if err != nil {
			return nil, err
		}
		return List{Elem: ref}, nil
	case *bca.Option:
		ref, err := b.AddType(kind.Type, nil)
		if err != nil {
			return nil, err
		}
		return Option{Elem: ref}, nil
	case *bca.Result:
		var res Result
		if kind.OK != nil {
			ref, err := b.AddType(kind.OK, nil)
			if err != nil {
				return nil, err
			}
			res.OK = ref
		}
		if kind.Err != nil {
			ref, err := b.AddType(kind.Err, nil)
			if err != nil {
				return nil, err
			}
			res.Err = ref
		}
		return res, nil
	case *bca.Own:
		return Handle{}, nil
	case *bca.Borrow:
		return Handle{}, nil
	case bca.Type:
		// A typedef whose kind is itself a type is an alias.
		ref, err := b.AddType(kind, nil)
		if err != nil {
			return nil, err
		}
		return Reference{Target: ref}, nil
	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindSchema).
			Detail("unsupported typedef kind: %T", k).
			Build()
	}
}
