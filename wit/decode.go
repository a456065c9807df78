package wit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/wippyai/wit-codegen/errors"
)

// DecodeDocument reads a resolved WIT document in its JSON serialization.
//
// The JSON form discriminates type kinds structurally, by which member key
// is present. Classification must run in a fixed priority order because the
// permissive single-field shapes overlap: list and option carry the same
// shape as a bare type reference and are distinguished only by field name,
// so they are probed before the ambiguous "type" member. The mandated order
// is record, variant, enum, flags, tuple, list, option, result, handle,
// then type reference / base type. A node matching none of the variants is
// a fatal schema error.
//
// The decoded model is a tagged union; no structural probing happens after
// this point.
func DecodeDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindSchema, err, "read document")
	}

	var root struct {
		Worlds     []json.RawMessage `json:"worlds"`
		Interfaces []json.RawMessage `json:"interfaces"`
		Types      []json.RawMessage `json:"types"`
		Packages   []json.RawMessage `json:"packages"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindSchema, err, "decode document")
	}

	doc := &Document{
		Worlds:     make([]*World, 0, len(root.Worlds)),
		Interfaces: make([]*Interface, 0, len(root.Interfaces)),
		Types:      make([]*TypeDef, 0, len(root.Types)),
		Packages:   make([]*Package, 0, len(root.Packages)),
	}

	for i, raw := range root.Worlds {
		w, err := decodeWorld(raw, []string{"worlds", strconv.Itoa(i)})
		if err != nil {
			return nil, err
		}
		doc.Worlds = append(doc.Worlds, w)
	}
	for i, raw := range root.Interfaces {
		iface, err := decodeInterface(raw, []string{"interfaces", strconv.Itoa(i)})
		if err != nil {
			return nil, err
		}
		doc.Interfaces = append(doc.Interfaces, iface)
	}
	for i, raw := range root.Types {
		td, err := decodeTypeDef(raw, []string{"types", strconv.Itoa(i)})
		if err != nil {
			return nil, err
		}
		doc.Types = append(doc.Types, td)
	}
	for i, raw := range root.Packages {
		pkg, err := decodePackage(raw, []string{"packages", strconv.Itoa(i)})
		if err != nil {
			return nil, err
		}
		doc.Packages = append(doc.Packages, pkg)
	}

	return doc, nil
}

// childPath copies before extending. Error values keep the slice they were
// built with, and plain append off a shared base could overwrite one
// sibling's tail with another's once the base has spare capacity.
func childPath(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}

type rawEntry struct {
	key string
	val json.RawMessage
}

// orderedObject iterates an object's members in source order. JSON objects
// carry declaration order and emission order is normative, so plain map
// decoding is not an option here.
func orderedObject(raw json.RawMessage, path []string) ([]rawEntry, error) {
	if isNull(raw) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindSchema, err, pathString(path))
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
	}

	var entries []rawEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindSchema, err, pathString(path))
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindSchema, err, pathString(childPath(path, key)))
		}
		entries = append(entries, rawEntry{key: key, val: val})
	}
	return entries, nil
}

func rawObject(raw json.RawMessage, path []string) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindSchema, err, pathString(path))
	}
	return m, nil
}

func decodePackage(raw json.RawMessage, path []string) (*Package, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		Name: optionalString(m["name"]),
		Docs: decodeDocs(m["docs"]),
	}
	if pkg.Interfaces, err = decodeNamedIndices(m["interfaces"], childPath(path, "interfaces")); err != nil {
		return nil, err
	}
	if pkg.Worlds, err = decodeNamedIndices(m["worlds"], childPath(path, "worlds")); err != nil {
		return nil, err
	}
	return pkg, nil
}

func decodeNamedIndices(raw json.RawMessage, path []string) ([]NamedIndex, error) {
	entries, err := orderedObject(raw, path)
	if err != nil {
		return nil, err
	}
	out := make([]NamedIndex, 0, len(entries))
	for _, e := range entries {
		var idx int
		if err := json.Unmarshal(e.val, &idx); err != nil {
			return nil, errors.SchemaViolation(errors.PhaseLoad, childPath(path, e.key), shapeOf(e.val))
		}
		out = append(out, NamedIndex{Name: e.key, Index: idx})
	}
	return out, nil
}

func decodeInterface(raw json.RawMessage, path []string) (*Interface, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	iface := &Interface{
		Name:    optionalString(m["name"]),
		Package: optionalIndex(m["package"]),
		Docs:    decodeDocs(m["docs"]),
	}
	if iface.Types, err = decodeNamedIndices(m["types"], childPath(path, "types")); err != nil {
		return nil, err
	}

	fns, err := orderedObject(m["functions"], childPath(path, "functions"))
	if err != nil {
		return nil, err
	}
	for _, e := range fns {
		fn, err := decodeFunc(e.val, childPath(path, "functions", e.key))
		if err != nil {
			return nil, err
		}
		if fn.Name == "" {
			fn.Name = e.key
		}
		iface.Functions = append(iface.Functions, fn)
	}
	return iface, nil
}

func decodeFunc(raw json.RawMessage, path []string) (*Func, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	fn := &Func{
		Name: optionalString(m["name"]),
		Kind: FuncFreestanding,
		Docs: decodeDocs(m["docs"]),
	}

	if rawKind, ok := m["kind"]; ok && !isNull(rawKind) {
		var kind string
		if err := json.Unmarshal(rawKind, &kind); err != nil || kind != FuncFreestanding {
			return nil, errors.Unsupported(errors.PhaseLoad,
				fmt.Sprintf("function kind %s at %s", shapeOf(rawKind), pathString(path)))
		}
	}

	if rawParams, ok := m["params"]; ok && !isNull(rawParams) {
		var params []json.RawMessage
		if err := json.Unmarshal(rawParams, &params); err != nil {
			return nil, errors.SchemaViolation(errors.PhaseLoad, childPath(path, "params"), shapeOf(rawParams))
		}
		for i, rawParam := range params {
			pm, err := rawObject(rawParam, childPath(path, "params", strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			ref, err := decodeRef(pm["type"], childPath(path, "params", strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, Param{Name: optionalString(pm["name"]), Type: ref})
		}
	}

	// "results" is the serialized array form; a bare "result" member carries
	// a single return type.
	if rawResults, ok := m["results"]; ok && !isNull(rawResults) {
		var results []json.RawMessage
		if err := json.Unmarshal(rawResults, &results); err != nil {
			return nil, errors.SchemaViolation(errors.PhaseLoad, childPath(path, "results"), shapeOf(rawResults))
		}
		for i, rawResult := range results {
			ref, err := decodeRef(rawResult, childPath(path, "results", strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			fn.Results = append(fn.Results, ref)
		}
	} else if rawResult, ok := m["result"]; ok && !isNull(rawResult) {
		ref, err := decodeRef(rawResult, childPath(path, "result"))
		if err != nil {
			return nil, err
		}
		fn.Results = append(fn.Results, ref)
	}

	return fn, nil
}

func decodeWorld(raw json.RawMessage, path []string) (*World, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	w := &World{
		Name:    optionalString(m["name"]),
		Package: optionalIndex(m["package"]),
		Docs:    decodeDocs(m["docs"]),
	}
	if w.Imports, err = decodeWorldItems(m["imports"], childPath(path, "imports")); err != nil {
		return nil, err
	}
	if w.Exports, err = decodeWorldItems(m["exports"], childPath(path, "exports")); err != nil {
		return nil, err
	}
	return w, nil
}

func decodeWorldItems(raw json.RawMessage, path []string) ([]WorldItem, error) {
	entries, err := orderedObject(raw, path)
	if err != nil {
		return nil, err
	}
	items := make([]WorldItem, 0, len(entries))
	for _, e := range entries {
		kind, err := decodeObjectKind(e.val, childPath(path, e.key))
		if err != nil {
			return nil, err
		}
		items = append(items, WorldItem{Name: e.key, Kind: kind})
	}
	return items, nil
}

func decodeObjectKind(raw json.RawMessage, path []string) (ObjectKind, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	if rawIface, ok := m["interface"]; ok {
		idx, err := decodeIndexRef(rawIface, path)
		if err != nil {
			return nil, err
		}
		return InterfaceObject{Interface: idx}, nil
	}
	if rawFn, ok := m["function"]; ok {
		fn, err := decodeFunc(rawFn, path)
		if err != nil {
			return nil, err
		}
		return FuncObject{Func: fn}, nil
	}
	if rawType, ok := m["type"]; ok {
		ref, err := decodeRef(rawType, path)
		if err != nil {
			return nil, err
		}
		return TypeObject{Type: ref}, nil
	}
	return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
}

// decodeIndexRef accepts both the bare index and the {"id": n} wrapper.
func decodeIndexRef(raw json.RawMessage, path []string) (int, error) {
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		return idx, nil
	}
	var wrapped struct {
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.ID != nil {
		return *wrapped.ID, nil
	}
	return 0, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
}

func decodeTypeDef(raw json.RawMessage, path []string) (*TypeDef, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	td := &TypeDef{
		Name: optionalString(m["name"]),
		Docs: decodeDocs(m["docs"]),
	}

	if td.Owner, err = decodeOwner(m["owner"], childPath(path, "owner")); err != nil {
		return nil, err
	}

	kindRaw := m["kind"]
	if kindRaw == nil {
		// Kind members may sit directly on the type node.
		kindRaw = raw
	}
	if td.Kind, err = classifyKind(kindRaw, childPath(path, "kind")); err != nil {
		return nil, err
	}
	return td, nil
}

func decodeOwner(raw json.RawMessage, path []string) (Owner, error) {
	if raw == nil || isNull(raw) {
		return nil, nil
	}
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}
	if rawIface, ok := m["interface"]; ok {
		idx, err := decodeIndexRef(rawIface, path)
		if err != nil {
			return nil, err
		}
		return InterfaceOwner(idx), nil
	}
	if rawWorld, ok := m["world"]; ok {
		idx, err := decodeIndexRef(rawWorld, path)
		if err != nil {
			return nil, err
		}
		return WorldOwner(idx), nil
	}
	return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
}

// classifyKind discriminates a raw kind node. Exactly one variant matches;
// probes run in the mandated priority order.
func classifyKind(raw json.RawMessage, path []string) (TypeKind, error) {
	// A bare string is a primitive kind ("u32"), a bare number an alias.
	var prim string
	if err := json.Unmarshal(raw, &prim); err == nil {
		return kindFromName(prim, path)
	}
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		return Reference{Target: Index(idx)}, nil
	}

	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	if rec, ok := m["record"]; ok {
		return decodeRecord(rec, childPath(path, "record"))
	}
	if v, ok := m["variant"]; ok {
		return decodeVariant(v, childPath(path, "variant"))
	}
	if e, ok := m["enum"]; ok {
		return decodeEnum(e, childPath(path, "enum"))
	}
	if f, ok := m["flags"]; ok {
		return decodeFlags(f, childPath(path, "flags"))
	}
	if t, ok := m["tuple"]; ok {
		return decodeTuple(t, childPath(path, "tuple"))
	}
	if l, ok := m["list"]; ok {
		elem, err := decodeRef(l, childPath(path, "list"))
		if err != nil {
			return nil, err
		}
		return List{Elem: elem}, nil
	}
	if o, ok := m["option"]; ok {
		elem, err := decodeRef(o, childPath(path, "option"))
		if err != nil {
			return nil, err
		}
		return Option{Elem: elem}, nil
	}
	if r, ok := m["result"]; ok {
		return decodeResult(r, childPath(path, "result"))
	}
	if h, ok := m["handle"]; ok {
		return decodeHandle(h, childPath(path, "handle"))
	}
	if t, ok := m["type"]; ok {
		ref, err := decodeRef(t, childPath(path, "type"))
		if err != nil {
			return nil, err
		}
		switch v := ref.(type) {
		case Index:
			return Reference{Target: v}, nil
		case Builtin:
			return Base{Prim: Prim(v)}, nil
		}
	}

	return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
}

func kindFromName(name string, path []string) (TypeKind, error) {
	if p, ok := ParsePrim(name); ok {
		return Base{Prim: p}, nil
	}
	return nil, errors.SchemaViolation(errors.PhaseLoad, path, strconv.Quote(name))
}

func decodeRecord(raw json.RawMessage, path []string) (TypeKind, error) {
	var node struct {
		Fields []json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
	}

	rec := Record{Fields: make([]Field, 0, len(node.Fields))}
	for i, rawField := range node.Fields {
		fieldPath := childPath(path, "fields", strconv.Itoa(i))
		fm, err := rawObject(rawField, fieldPath)
		if err != nil {
			return nil, err
		}
		ref, err := decodeRef(fm["type"], fieldPath)
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, Field{
			Name: optionalString(fm["name"]),
			Type: ref,
			Docs: decodeDocs(fm["docs"]),
		})
	}
	return rec, nil
}

func decodeVariant(raw json.RawMessage, path []string) (TypeKind, error) {
	var node struct {
		Cases []json.RawMessage `json:"cases"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
	}

	v := Variant{Cases: make([]Case, 0, len(node.Cases))}
	for i, rawCase := range node.Cases {
		casePath := childPath(path, "cases", strconv.Itoa(i))
		cm, err := rawObject(rawCase, casePath)
		if err != nil {
			return nil, err
		}
		c := Case{Name: optionalString(cm["name"]), Docs: decodeDocs(cm["docs"])}
		if rawType, ok := cm["type"]; ok && !isNull(rawType) {
			if c.Type, err = decodeRef(rawType, casePath); err != nil {
				return nil, err
			}
		}
		v.Cases = append(v.Cases, c)
	}
	return v, nil
}

func decodeEnum(raw json.RawMessage, path []string) (TypeKind, error) {
	var node struct {
		Cases []json.RawMessage `json:"cases"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
	}

	e := Enum{Cases: make([]EnumCase, 0, len(node.Cases))}
	for i, rawCase := range node.Cases {
		cm, err := rawObject(rawCase, childPath(path, "cases", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		e.Cases = append(e.Cases, EnumCase{
			Name: optionalString(cm["name"]),
			Docs: decodeDocs(cm["docs"]),
		})
	}
	return e, nil
}

func decodeFlags(raw json.RawMessage, path []string) (TypeKind, error) {
	var node struct {
		Flags []json.RawMessage `json:"flags"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
	}

	f := Flags{Flags: make([]Flag, 0, len(node.Flags))}
	for i, rawFlag := range node.Flags {
		fm, err := rawObject(rawFlag, childPath(path, "flags", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		f.Flags = append(f.Flags, Flag{
			Name: optionalString(fm["name"]),
			Docs: decodeDocs(fm["docs"]),
		})
	}
	return f, nil
}

func decodeTuple(raw json.RawMessage, path []string) (TypeKind, error) {
	var node struct {
		Types []json.RawMessage `json:"types"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
	}

	t := Tuple{Types: make([]Ref, 0, len(node.Types))}
	for i, rawType := range node.Types {
		ref, err := decodeRef(rawType, childPath(path, "types", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		t.Types = append(t.Types, ref)
	}
	return t, nil
}

func decodeResult(raw json.RawMessage, path []string) (TypeKind, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}

	var res Result
	if rawOK, ok := m["ok"]; ok && !isNull(rawOK) {
		if res.OK, err = decodeRef(rawOK, childPath(path, "ok")); err != nil {
			return nil, err
		}
	}
	if rawErr, ok := m["err"]; ok && !isNull(rawErr) {
		if res.Err, err = decodeRef(rawErr, childPath(path, "err")); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// decodeHandle accepts {"own": n} and {"borrow": n}. Both collapse to the
// opaque handle node; no lifecycle is modeled.
func decodeHandle(raw json.RawMessage, path []string) (TypeKind, error) {
	m, err := rawObject(raw, path)
	if err != nil {
		return nil, err
	}
	if _, ok := m["own"]; ok {
		return Handle{}, nil
	}
	if _, ok := m["borrow"]; ok {
		return Handle{}, nil
	}
	return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
}

// decodeRef reads a type reference: a number is a positional index, a
// string a builtin primitive name.
func decodeRef(raw json.RawMessage, path []string) (Ref, error) {
	if raw == nil || isNull(raw) {
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, "null")
	}

	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		return Index(idx), nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if p, ok := ParsePrim(name); ok {
			return Builtin(p), nil
		}
		return nil, errors.SchemaViolation(errors.PhaseLoad, path, strconv.Quote(name))
	}

	return nil, errors.SchemaViolation(errors.PhaseLoad, path, shapeOf(raw))
}

// decodeDocs accepts a bare string and the {"contents": ...} wrapper.
func decodeDocs(raw json.RawMessage) string {
	if raw == nil || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var wrapped struct {
		Contents *string `json:"contents"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Contents != nil {
		return *wrapped.Contents
	}
	return ""
}

func optionalString(raw json.RawMessage) string {
	if raw == nil || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func optionalIndex(raw json.RawMessage) int {
	if raw == nil || isNull(raw) {
		return 0
	}
	var i int
	if err := json.Unmarshal(raw, &i); err != nil {
		return 0
	}
	return i
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 4 && string(bytes.TrimSpace(raw)) == "null"
}

// shapeOf renders a raw node for schema error messages, truncated so a
// pathological document cannot flood the output.
func shapeOf(raw json.RawMessage) string {
	const maxShape = 120
	s := string(bytes.TrimSpace(raw))
	if len(s) > maxShape {
		s = s[:maxShape] + "..."
	}
	if s == "" {
		s = "<empty>"
	}
	return s
}

func pathString(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
