package wit

import (
	"github.com/wippyai/wit-codegen/errors"
)

// Document is the root compilation unit. All cross-entity references are
// positional indices into these slices, or builtin names for primitives.
// The model is fixed after load; WIT forbids cycles among type definitions,
// so the reference graph is assumed acyclic.
type Document struct {
	Worlds     []*World
	Interfaces []*Interface
	Types      []*TypeDef
	Packages   []*Package
}

// NamedIndex pairs a member name with a positional index, preserving the
// source declaration order that Go maps would lose.
type NamedIndex struct {
	Name  string
	Index int
}

// Package is a named grouping of interfaces and worlds.
type Package struct {
	Name       string
	Interfaces []NamedIndex
	Worlds     []NamedIndex
	Docs       string
}

// World is a named collection of imported and exported capabilities.
type World struct {
	Name    string
	Imports []WorldItem
	Exports []WorldItem
	Package int
	Docs    string
}

// WorldItem maps a name to an ObjectKind within a world.
type WorldItem struct {
	Name string
	Kind ObjectKind
}

// ObjectKind is the closed set of things a world can import or export.
type ObjectKind interface {
	isObjectKind()
}

// TypeObject references a type.
type TypeObject struct {
	Type Ref
}

// FuncObject carries an inline function declaration.
type FuncObject struct {
	Func *Func
}

// InterfaceObject references an interface by document index.
type InterfaceObject struct {
	Interface int
}

func (TypeObject) isObjectKind()      {}
func (FuncObject) isObjectKind()      {}
func (InterfaceObject) isObjectKind() {}

// Interface is a named collection of types and functions. Types and
// Functions keep source order; emission order is normative.
type Interface struct {
	Name      string
	Types     []NamedIndex
	Functions []*Func
	Package   int
	Docs      string
}

// Owner identifies the world or interface that declared a type.
type Owner interface {
	isOwner()
}

// WorldOwner is a world index.
type WorldOwner int

// InterfaceOwner is an interface index.
type InterfaceOwner int

func (WorldOwner) isOwner()     {}
func (InterfaceOwner) isOwner() {}

// TypeDef is a named or anonymous type entity. Anonymous types (inline
// tuples, lists, options, results) have an empty name and are referenced
// exactly once.
type TypeDef struct {
	Name  string
	Kind  TypeKind
	Owner Owner
	Docs  string
}

// Ref is a reference to a type: positional (Index) or builtin (Builtin).
type Ref interface {
	isRef()
}

// Index is a positional reference into Document.Types.
type Index int

// Builtin is a reference to a primitive type by name.
type Builtin Prim

func (Index) isRef()   {}
func (Builtin) isRef() {}

// TypeKind is the closed type algebra. The structural classification of raw
// input happens once, in the loader; everywhere else the variants are
// discriminated by exhaustive type switches.
type TypeKind interface {
	isTypeKind()
}

// Base is a builtin primitive.
type Base struct {
	Prim Prim
}

// Reference is an alias to another type.
type Reference struct {
	Target Ref
}

// Record is an ordered sequence of named fields.
type Record struct {
	Fields []Field
}

// Field is a record member.
type Field struct {
	Name string
	Type Ref
	Docs string
}

// Variant is an ordered sequence of discriminated cases. The discriminant
// is the case's ordinal position.
type Variant struct {
	Cases []Case
}

// Case is a variant member; Type is nil for payload-less cases.
type Case struct {
	Name string
	Type Ref
	Docs string
}

// Enum is an ordered sequence of payload-less cases; ordinal position is
// the wire value.
type Enum struct {
	Cases []EnumCase
}

// EnumCase is an enum member.
type EnumCase struct {
	Name string
	Docs string
}

// Flags is an ordered sequence of boolean bit positions.
type Flags struct {
	Flags []Flag
}

// Flag is a flags member; its bit position is its declaration order.
type Flag struct {
	Name string
	Docs string
}

// Tuple is an ordered sequence of positional types.
type Tuple struct {
	Types []Ref
}

// List is a homogeneous sequence.
type List struct {
	Elem Ref
}

// Option is a nullable wrapper.
type Option struct {
	Elem Ref
}

// Result has an ok and an err arm; either may be nil for the unit type.
type Result struct {
	OK  Ref
	Err Ref
}

// Handle is an opaque resource handle, lowered as a plain u32. No
// own/borrow lifecycle is modeled.
type Handle struct{}

func (Base) isTypeKind()      {}
func (Reference) isTypeKind() {}
func (Record) isTypeKind()    {}
func (Variant) isTypeKind()   {}
func (Enum) isTypeKind()      {}
func (Flags) isTypeKind()     {}
func (Tuple) isTypeKind()     {}
func (List) isTypeKind()      {}
func (Option) isTypeKind()    {}
func (Result) isTypeKind()    {}
func (Handle) isTypeKind()    {}

// KindName returns the algebra variant name, for error messages.
func KindName(k TypeKind) string {
	switch k.(type) {
	case Base:
		return "base"
	case Reference:
		return "reference"
	case Record:
		return "record"
	case Variant:
		return "variant"
	case Enum:
		return "enum"
	case Flags:
		return "flags"
	case Tuple:
		return "tuple"
	case List:
		return "list"
	case Option:
		return "option"
	case Result:
		return "result"
	case Handle:
		return "handle"
	default:
		return "unknown"
	}
}

// FuncFreestanding is the only calling convention currently modeled.
const FuncFreestanding = "freestanding"

// Func is a function declaration.
type Func struct {
	Name    string
	Kind    string
	Params  []Param
	Results []Ref
	Docs    string
}

// Param is a named function parameter.
type Param struct {
	Name string
	Type Ref
}

// TypeAt returns the type definition at index i.
func (d *Document) TypeAt(i int) (*TypeDef, error) {
	if i < 0 || i >= len(d.Types) {
		return nil, errors.InvalidReference(errors.PhaseResolve, "type", i, len(d.Types))
	}
	return d.Types[i], nil
}

// InterfaceAt returns the interface at index i.
func (d *Document) InterfaceAt(i int) (*Interface, error) {
	if i < 0 || i >= len(d.Interfaces) {
		return nil, errors.InvalidReference(errors.PhaseResolve, "interface", i, len(d.Interfaces))
	}
	return d.Interfaces[i], nil
}

// WorldAt returns the world at index i.
func (d *Document) WorldAt(i int) (*World, error) {
	if i < 0 || i >= len(d.Worlds) {
		return nil, errors.InvalidReference(errors.PhaseResolve, "world", i, len(d.Worlds))
	}
	return d.Worlds[i], nil
}

// PackageAt returns the package at index i.
func (d *Document) PackageAt(i int) (*Package, error) {
	if i < 0 || i >= len(d.Packages) {
		return nil, errors.InvalidReference(errors.PhaseResolve, "package", i, len(d.Packages))
	}
	return d.Packages[i], nil
}

// Resolve follows a reference to its type definition. Builtin references
// have no definition and resolve to nil with the primitive.
func (d *Document) Resolve(r Ref) (*TypeDef, Prim, error) {
	switch v := r.(type) {
	case Index:
		td, err := d.TypeAt(int(v))
		if err != nil {
			return nil, 0, err
		}
		return td, 0, nil
	case Builtin:
		return nil, Prim(v), nil
	default:
		return nil, 0, errors.New(errors.PhaseResolve, errors.KindSchema).
			Detail("unknown reference variant %T", r).
			Build()
	}
}

// OwnerScope returns the name of the world or interface that declared a
// type. An empty name means the owner scope itself is anonymous.
func (d *Document) OwnerScope(o Owner) (string, error) {
	switch v := o.(type) {
	case InterfaceOwner:
		iface, err := d.InterfaceAt(int(v))
		if err != nil {
			return "", err
		}
		return iface.Name, nil
	case WorldOwner:
		w, err := d.WorldAt(int(v))
		if err != nil {
			return "", err
		}
		return w.Name, nil
	case nil:
		return "", nil
	default:
		return "", errors.New(errors.PhaseResolve, errors.KindSchema).
			Detail("unknown owner variant %T", o).
			Build()
	}
}
